package deoldify

import "time"

// Config holds the connection settings for the external DeOldify
// colorization service.
type Config struct {
	APIURL  string        // service base URL, e.g. http://localhost:8000
	Timeout time.Duration // deadline per colorize call
}

const DefaultTimeout = 60 * time.Second

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
