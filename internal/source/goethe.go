package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/morikuni/failure/v2"
	"github.com/rsilvagit/examwatch/internal/errs"
	"github.com/rsilvagit/examwatch/internal/httpclient"
	"github.com/rsilvagit/examwatch/internal/log"
	"github.com/rsilvagit/examwatch/internal/model"
)

const (
	DefaultBaseURL = "https://www.goethe.de/rest/examfinder/exams/institute/O%2010000267"

	// dataField is the top-level field holding the offer array.
	dataField = "DATA"

	maxErrorBody = 64 << 10
)

type GoetheOptions struct {
	BaseURL  string
	Category string
	LangISO  string
}

// Goethe reads offers from the Goethe-Institut exam finder REST endpoint.
type Goethe struct {
	client   httpclient.Doer
	endpoint string
}

func NewGoethe(client httpclient.Doer, opts GoetheOptions) *Goethe {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Category == "" {
		opts.Category = "E006"
	}
	if opts.LangISO == "" {
		opts.LangISO = "ar"
	}

	q := url.Values{}
	q.Set("category", opts.Category)
	q.Set("type", "ER")
	q.Set("countryIsoCode", "")
	q.Set("locationName", "")
	q.Set("count", "10")
	q.Set("start", "1")
	q.Set("langId", "11")
	q.Set("timezone", "37")
	q.Set("isODP", "0")
	q.Set("sortField", "startDate")
	q.Set("sortOrder", "ASC")
	q.Set("dataMode", "0")
	q.Set("langIsoCodes", opts.LangISO)

	return &Goethe{
		client:   client,
		endpoint: opts.BaseURL + "?" + q.Encode(),
	}
}

func (g *Goethe) Name() string {
	return "goethe"
}

func (g *Goethe) Endpoint() string {
	return g.endpoint
}

func (g *Goethe) Fetch(ctx context.Context) ([]model.Offer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint, nil)
	if err != nil {
		return nil, failure.Translate(err, errs.FetchError,
			failure.Message("Could not build exam finder request"),
		)
	}
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, failure.Translate(err, errs.FetchError,
			failure.Message("Could not reach the exam finder"),
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, failure.New(errs.FetchError,
			failure.Messagef("Fetch failed %d: %s", resp.StatusCode, body),
			failure.Context{
				"status": strconv.Itoa(resp.StatusCode),
				"body":   string(body),
			},
		)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.Translate(err, errs.FetchError,
			failure.Message("Could not read exam finder response"),
		)
	}

	// Numbers stay json.Number so numeric identifiers keep their exact text.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, failure.Translate(err, errs.FetchError,
			failure.Message("Exam finder returned invalid JSON"),
		)
	}

	return decodeOffers(payload), nil
}

// decodeOffers extracts the offer array from a decoded payload.
// Any shape other than an object with a DATA array yields no offers.
func decodeOffers(payload any) []model.Offer {
	obj, ok := payload.(map[string]any)
	if !ok {
		log.Warn("Unexpected exam finder payload, treating as no offers", "type", fmt.Sprintf("%T", payload))
		return nil
	}
	items, ok := obj[dataField].([]any)
	if !ok {
		log.Warn("Exam finder payload has no offer array, treating as no offers", "field", dataField)
		return nil
	}

	offers := make([]model.Offer, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			log.Debug("Skipping non-object offer", "index", i)
			continue
		}
		o, err := decodeOffer(m)
		if err != nil {
			log.Warn("Skipping undecodable offer", "index", i, "error", err)
			continue
		}
		offers = append(offers, o)
	}
	return offers
}

// presenceFields are read as "set or not": a false or zero value counts
// as absent rather than as the text "0".
var presenceFields = []string{"offerKey", "oid", "moduleId", "locationId", "startDate", "buttonLink"}

func decodeOffer(m map[string]any) (model.Offer, error) {
	var o model.Offer
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncKind(blankComposite),
		Result:           &o,
	})
	if err != nil {
		return model.Offer{}, err
	}
	if err := dec.Decode(dropFalsy(m)); err != nil {
		return model.Offer{}, err
	}
	return o, nil
}

// blankComposite turns objects and arrays aimed at a string field into "",
// so one malformed field does not cost the whole offer.
func blankComposite(from, to reflect.Kind, data any) (any, error) {
	if to != reflect.String {
		return data, nil
	}
	switch from {
	case reflect.Map, reflect.Slice, reflect.Array:
		return "", nil
	}
	return data, nil
}

// dropFalsy returns a copy of m without presence fields holding false or a
// numeric zero.
func dropFalsy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range presenceFields {
		if isFalsy(out[k]) {
			delete(out, k)
		}
	}
	return out
}

func isFalsy(v any) bool {
	switch v := v.(type) {
	case bool:
		return !v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	case float64:
		return v == 0
	}
	return false
}
