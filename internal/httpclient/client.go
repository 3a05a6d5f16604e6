package httpclient

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/rsilvagit/examwatch/internal/log"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
}

// Doer is the part of *http.Client the fetchers and writers rely on.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures the shared HTTP client.
type Options struct {
	ProxyURL string
	Timeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	return o
}

// Client wraps http.Client with browser-like defaults.
// Requests are sent once; there is no retry.
type Client struct {
	inner *http.Client
}

var _ Doer = (*Client)(nil)

// New creates a Client with the given options.
func New(opts Options) (*Client, error) {
	opts = opts.withDefaults()

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}

	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("httpclient: invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &Client{
		inner: &http.Client{
			Transport: log.Transport(transport),
			Timeout:   opts.Timeout,
		},
	}, nil
}

// Do executes the request once, filling in a User-Agent when the caller did not set one.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	}
	return c.inner.Do(req)
}
