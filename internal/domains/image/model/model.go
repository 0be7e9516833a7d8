package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Image statuses. Completed and failed are terminal.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Image is one colorization job: the uploaded original, the colorized
// result once the background job finishes, and the status in between.
// API responses use the dto views, never this struct directly, so the
// json tags only shape the cached representation.
//
// Invariants: ColorizedURL is set iff status is completed, ErrorMessage is
// set iff status is failed, CreatedAt never changes after creation.
type Image struct {
	ID           int       `json:"id"`
	SessionID    string    `json:"sessionId"`
	OriginalURL  string    `json:"originalUrl"`
	ColorizedURL *string   `json:"colorizedUrl"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"errorMessage"`
	PublicToken  string    `json:"publicToken"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsTerminal reports whether the record can no longer change.
func (i *Image) IsTerminal() bool {
	return i.Status == StatusCompleted || i.Status == StatusFailed
}

// NewPublicToken generates an unguessable share token.
// 32 random bytes, hex encoded.
func NewPublicToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate public token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
