package port

import (
	"context"
	"io"
)

// UploadInput describes one archived report object. Filename, when set, is
// the download name served to whoever follows a presigned link.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Filename    string
	Size        int64
}

// UploadOutput locates a stored object.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage is the report archive. Delete is used to drop an object that
// was uploaded but could not be shared.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
