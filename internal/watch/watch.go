// Package watch runs one poll: load state, fetch, detect, notify, save.
package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/morikuni/failure/v2"
	"github.com/rsilvagit/examwatch/internal/detect"
	"github.com/rsilvagit/examwatch/internal/filter"
	"github.com/rsilvagit/examwatch/internal/log"
	"github.com/rsilvagit/examwatch/internal/output"
	"github.com/rsilvagit/examwatch/internal/source"
	"github.com/rsilvagit/examwatch/internal/state"
)

// Runner wires the components of a single run. Runs must not overlap:
// two concurrent runs read the same snapshot and may both notify.
type Runner struct {
	Source   source.Source
	Store    state.Store
	Notifier output.ResultWriter

	// Printer, when set, receives the announced offers on every run,
	// including an empty list when nothing is new.
	// Its failures are logged and do not stop the run.
	Printer output.ResultWriter

	// Filter narrows which newly bookable offers are announced. Offers it
	// drops are still recorded in the snapshot and are not announced later.
	Filter filter.Options

	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Run performs one poll. State is saved only after a successful
// notification, so an unsent email is detected again on the next run.
func (r *Runner) Run(ctx context.Context) error {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Logger
	}
	logger = logger.With("run_id", uuid.NewString(), "source", r.Source.Name())

	prev, err := r.Store.Load(ctx)
	if err != nil {
		return failure.Wrap(err)
	}

	logger.Info("Fetching offers")
	offers, err := r.Source.Fetch(ctx)
	if err != nil {
		return failure.Wrap(err)
	}
	logger.Info("Fetched offers", "count", len(offers))

	res := detect.ComputeTransitions(offers, prev, now().UTC())
	announce := filter.Apply(res.NewlyBookable, r.Filter)
	if skipped := len(res.NewlyBookable) - len(announce); skipped > 0 {
		logger.Info("Filtered out newly bookable offers", "count", skipped)
	}

	if r.Printer != nil {
		if err := r.Printer.WriteOffers(ctx, announce); err != nil {
			logger.Warn("Could not print offers", "error", err)
		}
	}

	if len(announce) > 0 {
		logger.Info("Found newly bookable offers, sending email", "count", len(announce))
		if err := r.Notifier.WriteOffers(ctx, announce); err != nil {
			return failure.Wrap(err)
		}
		logger.Info("Email sent")
	} else {
		logger.Info("No new bookable offers detected")
	}

	if err := r.Store.Save(ctx, res.Next); err != nil {
		return failure.Wrap(err)
	}
	logger.Info("State saved", "entries", len(res.Next))
	return nil
}
