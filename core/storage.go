package core

import "context"

// FileStorage hands out presigned URLs so clients upload and download files without
// streaming them through the API.
type FileStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	// PublicURL is the stable URL stored on profiles once the upload is done.
	PublicURL(key string) string
}
