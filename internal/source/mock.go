package source

import (
	"context"

	"github.com/rsilvagit/examwatch/internal/log"
	"github.com/rsilvagit/examwatch/internal/model"
)

// Mock returns a single fixed bookable offer without touching the network.
// It backs TEST_FORCE_MOCK end-to-end runs.
type Mock struct{}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Name() string {
	return "mock"
}

func (m *Mock) Fetch(ctx context.Context) ([]model.Offer, error) {
	log.Info("[MOCK] Returning mocked offers (TEST_FORCE_MOCK=1)")
	return []model.Offer{
		{
			StartDate:        "2026/01/31",
			EndDate:          "2026/02/01",
			LocationName:     "Mock Location",
			Availability:     "1",
			AvailabilityText: "Mock availability",
			Price:            "100 JOD",
			ButtonLink:       "https://example.com/book",
			ModuleID:         "MOCK",
			LocationID:       "MOCK_LOC",
			OfferKey:         "MOCK_OFFER_1",
		},
	}, nil
}
