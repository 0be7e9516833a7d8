package shared

// Asynq task types
const (
	TypeColorizeImage = "image:colorize"
	TypeFailStaleJobs = "image:fail_stale"
)

// Asynq queue names
const (
	QueueColorize    = "colorize"
	QueueMaintenance = "maintenance"
)

// ColorizeImagePayload is the payload for a colorization task.
// The worker loads everything else (bytes, mime type) from the record.
type ColorizeImagePayload struct {
	ImageID int `json:"image_id"`
}

// FailStaleJobsPayload is the payload for the stale-record sweeper.
type FailStaleJobsPayload struct{}
