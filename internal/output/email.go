package output

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/morikuni/failure/v2"
	"github.com/rsilvagit/examwatch/internal/errs"
	"github.com/rsilvagit/examwatch/internal/httpclient"
	"github.com/rsilvagit/examwatch/internal/model"
)

const DefaultResendURL = "https://api.resend.com/emails"

var validate = validator.New()

type EmailOptions struct {
	APIKey     string
	From       string
	Recipients string // comma-separated
	Subject    string
	Endpoint   string
}

// EmailWriter sends offers as one email through the Resend API.
type EmailWriter struct {
	client httpclient.Doer
	opts   EmailOptions
}

func NewEmailWriter(client httpclient.Doer, opts EmailOptions) *EmailWriter {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultResendURL
	}
	return &EmailWriter{client: client, opts: opts}
}

type emailPayload struct {
	From    string   `json:"from" validate:"required"`
	To      []string `json:"to" validate:"min=1,dive,required"`
	Subject string   `json:"subject" validate:"required"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

// WriteOffers sends a single email listing offers. It does nothing for an
// empty list. The request is sent once.
func (ew *EmailWriter) WriteOffers(ctx context.Context, offers []model.NormalizedOffer) error {
	if len(offers) == 0 {
		return nil
	}

	recipients := ParseRecipients(ew.opts.Recipients)
	if len(recipients) == 0 {
		return failure.New(errs.ConfigError,
			failure.Message("ALERT_RECIPIENTS yielded no recipients after parsing"),
		)
	}

	payload := emailPayload{
		From:    ew.opts.From,
		To:      recipients,
		Subject: ew.opts.Subject,
		Text:    FormatText(offers),
		HTML:    FormatHTML(offers),
	}
	if err := validate.Struct(payload); err != nil {
		return failure.Translate(err, errs.ConfigError,
			failure.Message("Invalid email settings"),
		)
	}

	return ew.send(ctx, payload)
}

func (ew *EmailWriter) send(ctx context.Context, payload emailPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return failure.Translate(err, errs.NotifyError,
			failure.Message("Could not encode email"),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ew.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return failure.Translate(err, errs.NotifyError,
			failure.Message("Could not build email request"),
		)
	}
	req.Header.Set("Authorization", "Bearer "+ew.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ew.client.Do(req)
	if err != nil {
		return failure.Translate(err, errs.NotifyError,
			failure.Message("Could not reach the email API"),
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return failure.New(errs.NotifyError,
			failure.Messagef("Resend error %d: %s", resp.StatusCode, errBody),
			failure.Context{
				"status": strconv.Itoa(resp.StatusCode),
				"body":   string(errBody),
			},
		)
	}

	return nil
}
