// Package source fetches exam offers from the upstream exam finder.
package source

import (
	"context"

	"github.com/rsilvagit/examwatch/internal/config"
	"github.com/rsilvagit/examwatch/internal/httpclient"
	"github.com/rsilvagit/examwatch/internal/model"
)

// Source defines the contract every offer source must satisfy.
type Source interface {
	// Name returns a human-readable identifier for this source.
	Name() string

	// Fetch returns the offers currently listed upstream.
	Fetch(ctx context.Context) ([]model.Offer, error)
}

// New returns the source selected by cfg: the mock source when ForceMock is
// set, otherwise the Goethe exam finder using client.
func New(cfg config.Config, client httpclient.Doer) Source {
	if cfg.ForceMock {
		return NewMock()
	}
	return NewGoethe(client, GoetheOptions{
		BaseURL:  cfg.ExamFinderURL,
		Category: cfg.Category,
		LangISO:  cfg.LangISO,
	})
}
