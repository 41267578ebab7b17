package photostore

import (
	"context"
	"io"
)

// PhotoStore persists the uploaded fridge and grocery photos so history
// entries can show them later.
type PhotoStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}
