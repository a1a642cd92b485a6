package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// UploadOptions carries object metadata for a single upload.
type UploadOptions struct {
	ContentType string
	Filename    string
}

// ObjectStore is the durable blob store. Upload must make the object visible
// to readers only once it is complete.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, opts UploadOptions) error
	SignedURL(ctx context.Context, key string, expiresAt time.Time) (string, error)
}

// SignedLink is the retrieval link returned to the caller.
type SignedLink struct {
	URL    string
	Expiry time.Time
}

// Publisher uploads finished documents and issues read links for them.
type Publisher struct {
	store  ObjectStore
	expiry time.Time
	logger *zap.Logger
}

func NewPublisher(store ObjectStore, expiry time.Time, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{store: store, expiry: expiry, logger: logger}
}

// Publish uploads doc to its destination path, then signs a link for that same path.
// There is no retry; the first failure is returned.
func (p *Publisher) Publish(ctx context.Context, doc Document) (SignedLink, error) {
	log := p.logger.With(zap.String("path", doc.Path))

	log.Debug("report stage", zap.String("stage", string(StageUploading)), zap.Int("bytes", doc.Size()))
	err := p.store.Upload(ctx, doc.Path, doc.Bytes(), UploadOptions{
		ContentType: ContentTypePDF,
		Filename:    doc.Filename,
	})
	if err != nil {
		return SignedLink{}, fail(KindUploadFailure, StageUploading, "report upload failed", fmt.Errorf("upload %s: %w", doc.Path, err))
	}

	log.Debug("report stage", zap.String("stage", string(StageIssuingLink)))
	url, err := p.store.SignedURL(ctx, doc.Path, p.expiry)
	if err == nil && url == "" {
		err = errors.New("store returned an empty url")
	}
	if err != nil {
		return SignedLink{}, fail(KindLinkFailure, StageIssuingLink, "report link issuance failed", fmt.Errorf("sign %s: %w", doc.Path, err))
	}

	return SignedLink{URL: url, Expiry: p.expiry}, nil
}
