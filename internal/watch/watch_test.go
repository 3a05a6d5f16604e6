package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/morikuni/failure/v2"
	"github.com/rsilvagit/examwatch/internal/errs"
	"github.com/rsilvagit/examwatch/internal/filter"
	"github.com/rsilvagit/examwatch/internal/model"
	"github.com/rsilvagit/examwatch/internal/output"
	"github.com/rsilvagit/examwatch/internal/source"
	"github.com/rsilvagit/examwatch/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

type fakeSource struct {
	offers []model.Offer
	err    error
	calls  int
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Fetch(context.Context) ([]model.Offer, error) {
	s.calls++
	return s.offers, s.err
}

type memStore struct {
	snap    state.Snapshot
	saveErr error
	saves   int
}

func (m *memStore) Load(context.Context) (state.Snapshot, error) {
	if m.snap == nil {
		return state.Snapshot{}, nil
	}
	return m.snap, nil
}

func (m *memStore) Save(_ context.Context, snap state.Snapshot) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = snap
	return nil
}

type fakeNotifier struct {
	err  error
	sent [][]model.NormalizedOffer
}

func (n *fakeNotifier) WriteOffers(_ context.Context, offers []model.NormalizedOffer) error {
	n.sent = append(n.sent, offers)
	return n.err
}

func newRunner(src source.Source, store state.Store, n output.ResultWriter) *Runner {
	return &Runner{
		Source:   src,
		Store:    store,
		Notifier: n,
		Now:      func() time.Time { return testNow },
		Logger:   slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	}
}

func bookable(key string) model.Offer {
	return model.Offer{OfferKey: key, ButtonLink: "https://x/" + key}
}

func TestRun_NotifiesOnceThenSaves(t *testing.T) {
	src := &fakeSource{offers: []model.Offer{bookable("A"), {OfferKey: "B"}}}
	store := &memStore{}
	n := &fakeNotifier{}
	r := newRunner(src, store, n)

	require.NoError(t, r.Run(context.Background()))
	require.Len(t, n.sent, 1)
	require.Len(t, n.sent[0], 1)
	assert.Equal(t, "A", n.sent[0][0].Key)
	assert.Equal(t, state.Snapshot{
		"A": {Bookable: true, LastSeen: testNow},
		"B": {Bookable: false, LastSeen: testNow},
	}, store.snap)

	require.NoError(t, r.Run(context.Background()))
	assert.Len(t, n.sent, 1, "second run must not notify again")
	assert.Equal(t, 2, store.saves)
}

func TestRun_NothingNew(t *testing.T) {
	src := &fakeSource{offers: []model.Offer{{OfferKey: "A"}}}
	store := &memStore{}
	n := &fakeNotifier{}

	var table bytes.Buffer
	r := newRunner(src, store, n)
	r.Printer = output.NewConsolePrinter(&table)

	require.NoError(t, r.Run(context.Background()))
	assert.Empty(t, n.sent)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, "No new bookable offers detected.\n", table.String())
}

func TestRun_Failures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("fetch failure skips notify and save", func(t *testing.T) {
		src := &fakeSource{err: failure.Translate(boom, errs.FetchError)}
		store := &memStore{}
		n := &fakeNotifier{}

		err := newRunner(src, store, n).Run(context.Background())
		require.Error(t, err)
		assert.True(t, failure.Is(err, errs.FetchError))
		assert.Empty(t, n.sent)
		assert.Zero(t, store.saves)
	})

	t.Run("notify failure leaves state untouched", func(t *testing.T) {
		prev := state.Snapshot{"A": {Bookable: false, LastSeen: testNow.Add(-time.Hour)}}
		src := &fakeSource{offers: []model.Offer{bookable("A")}}
		store := &memStore{snap: prev}
		n := &fakeNotifier{err: failure.Translate(boom, errs.NotifyError)}
		r := newRunner(src, store, n)

		err := r.Run(context.Background())
		require.Error(t, err)
		assert.True(t, failure.Is(err, errs.NotifyError))
		assert.Zero(t, store.saves)
		assert.False(t, store.snap["A"].Bookable)

		// the next run sees the same transition again
		n.err = nil
		require.NoError(t, r.Run(context.Background()))
		require.Len(t, n.sent, 2)
		assert.Equal(t, "A", n.sent[1][0].Key)
	})

	t.Run("save failure is reported after notify", func(t *testing.T) {
		src := &fakeSource{offers: []model.Offer{bookable("A")}}
		store := &memStore{saveErr: failure.Translate(boom, errs.StateSaveError)}
		n := &fakeNotifier{}

		err := newRunner(src, store, n).Run(context.Background())
		require.Error(t, err)
		assert.True(t, failure.Is(err, errs.StateSaveError))
		assert.Len(t, n.sent, 1)
	})
}

type failingPrinter struct{}

func (failingPrinter) WriteOffers(context.Context, []model.NormalizedOffer) error {
	return errors.New("stdout closed")
}

func TestRun_PrinterFailureIsNotFatal(t *testing.T) {
	src := &fakeSource{offers: []model.Offer{bookable("A")}}
	store := &memStore{}
	n := &fakeNotifier{}
	r := newRunner(src, store, n)
	r.Printer = failingPrinter{}

	require.NoError(t, r.Run(context.Background()))
	assert.Len(t, n.sent, 1)
	assert.Equal(t, 1, store.saves)
}

// TestRun_MockEndToEnd runs the mock source against a file store and a fake
// email API, twice.
func TestRun_MockEndToEnd(t *testing.T) {
	var payloads []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p map[string]any
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		payloads = append(payloads, p)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "data", "state.json")
	store := state.NewFileStore(path, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	email := output.NewEmailWriter(srv.Client(), output.EmailOptions{
		APIKey:     "re_test",
		From:       "alerts@example.com",
		Recipients: "a@x.com,b@y.com",
		Subject:    "Goethe exam slot available",
		Endpoint:   srv.URL,
	})
	var table bytes.Buffer
	r := newRunner(source.NewMock(), store, email)
	r.Printer = output.NewConsolePrinter(&table)

	require.NoError(t, r.Run(context.Background()))
	require.Len(t, payloads, 1)
	assert.Equal(t, []any{"a@x.com", "b@y.com"}, payloads[0]["to"])
	assert.Contains(t, payloads[0]["text"], "Mock Location")
	assert.Contains(t, table.String(), "MOCK_OFFER_1")

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, state.Snapshot{"MOCK_OFFER_1": {Bookable: true, LastSeen: testNow}}, snap)

	require.NoError(t, r.Run(context.Background()))
	assert.Len(t, payloads, 1)
}

func TestRun_FilterLimitsAnnouncements(t *testing.T) {
	src := &fakeSource{offers: []model.Offer{
		{OfferKey: "A", LocationName: "Amman", ButtonLink: "https://x/a"},
		{OfferKey: "B", LocationName: "Irbid", ButtonLink: "https://x/b"},
	}}
	store := &memStore{}
	n := &fakeNotifier{}
	r := newRunner(src, store, n)
	r.Filter = filter.Options{Locations: "irbid"}

	require.NoError(t, r.Run(context.Background()))
	require.Len(t, n.sent, 1)
	require.Len(t, n.sent[0], 1)
	assert.Equal(t, "B", n.sent[0][0].Key)
	assert.True(t, store.snap["A"].Bookable, "filtered offers are still recorded")
}
