package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/session"
)

const (
	KindAvatar            = "avatar"
	KindHealthCertificate = "health_certificate"
)

var (
	ErrInvalidKind        = errors.New("kind must be avatar or health_certificate")
	ErrInvalidContentType = errors.New("content type not allowed")
	ErrStudentsOnly       = errors.New("health certificates are for students only")
)

// extensions of the accepted content types, per kind
var allowed = map[string]map[string]string{
	KindAvatar: {
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	},
	KindHealthCertificate: {
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"application/pdf": ".pdf",
	},
}

type Request struct {
	Kind        string `json:"kind"`
	ContentType string `json:"content_type"`
}

// Ticket tells the client where to PUT its file and which URL to store afterwards.
type Ticket struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
	URL       string `json:"url"`
}

type (
	Service interface {
		Presign(ctx context.Context, sess session.Session, req Request) (Ticket, error)
	}

	service struct {
		storage core.FileStorage
	}
)

var _ Service = (*service)(nil)

func NewService(storage core.FileStorage) Service {
	return &service{storage: storage}
}

func (svc *service) Presign(ctx context.Context, sess session.Session, req Request) (Ticket, error) {
	req.Kind = core.CleanString(req.Kind, true /* lower */)
	req.ContentType = core.CleanString(req.ContentType, true /* lower */)

	types, ok := allowed[req.Kind]
	if !ok {
		return Ticket{}, core.NewFieldError("kind", ErrInvalidKind.Error())
	}
	if req.Kind == KindHealthCertificate && !sess.IsStudent() {
		return Ticket{}, ErrStudentsOnly
	}
	ext, ok := types[req.ContentType]
	if !ok {
		return Ticket{}, core.NewFieldError("content_type", ErrInvalidContentType.Error())
	}

	key := Key(req.Kind, sess.UserID(), uuid.NewString(), ext)
	uploadURL, err := svc.storage.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		return Ticket{}, err
	}
	return Ticket{Key: key, UploadURL: uploadURL, URL: svc.storage.PublicURL(key)}, nil
}

// Key is the object key of an upload: <kind>/<user_id>/<id><ext>.
func Key(kind, userID, id, ext string) string {
	return fmt.Sprintf("%s/%s/%s%s", kind, userID, id, ext)
}
