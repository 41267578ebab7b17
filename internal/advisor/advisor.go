package advisor

import (
	"context"

	"fridgetetris.app/internal/domain"
)

// Request carries one organize exchange to a transport: both photos as
// base64 PNG plus the mode preset. Both images must be present before a
// transport is called; validation happens upstream.
type Request struct {
	FridgeB64    string
	GroceriesB64 string
	Mode         domain.Mode
}

// Advisor is a vision-model transport. Implementations send the two images
// and the assembled prompt to their backend and return whatever text (and
// optionally image) the model produced.
type Advisor interface {
	Advise(ctx context.Context, req *Request) (*domain.Advice, error)
	// Name identifies the backend in logs and history rows.
	Name() string
}
