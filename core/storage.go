package core

import (
	"context"
	"time"
)

// PresignedURL is a time-limited URL granting direct access to an object in
// the file store.
type PresignedURL struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"` // UTC
}

// FileStorage abstracts the object store holding uploaded document bytes.
// Implementations live in services/storage.
type FileStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (PresignedURL, error)
	PresignDownload(ctx context.Context, key string) (PresignedURL, error)
	Delete(ctx context.Context, key string) error
}
