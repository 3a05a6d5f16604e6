package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/morikuni/failure/v2"
	"github.com/rsilvagit/examwatch/internal/errs"
	"github.com/samber/lo"
)

// -----------------------------------------------------------------------------
// Required values have no default and are checked together by Validate, so a
// misconfigured run reports every missing variable at once.
// -----------------------------------------------------------------------------

type Config struct {
	ResendAPIKey    string `envconfig:"RESEND_API_KEY"`
	AlertFrom       string `envconfig:"ALERT_FROM"`
	AlertRecipients string `envconfig:"ALERT_RECIPIENTS"`
	AlertSubject    string `envconfig:"ALERT_SUBJECT" default:"Goethe exam slot available"`
	ResendURL       string `envconfig:"RESEND_URL" default:"https://api.resend.com/emails"`
	AlertLocations  string `envconfig:"ALERT_LOCATIONS"`

	ForceMock bool `envconfig:"TEST_FORCE_MOCK" default:"false"`

	ExamFinderURL string `envconfig:"EXAMFINDER_URL" default:"https://www.goethe.de/rest/examfinder/exams/institute/O%2010000267"`
	Category      string `envconfig:"EXAMFINDER_CATEGORY" default:"E006"`
	LangISO       string `envconfig:"EXAMFINDER_LANG_ISO" default:"ar"`

	ProxyURL string `envconfig:"EXAMWATCH_PROXY_URL"`

	StatePath     string `envconfig:"STATE_PATH"`
	StateRedisURL string `envconfig:"STATE_REDIS_URL"`
	StateRedisKey string `envconfig:"STATE_REDIS_KEY" default:"examwatch:state"`

	Debug bool `envconfig:"EXAMWATCH_DEBUG" default:"false"`
}

// Load reads the configuration from the environment.
// It does not check required values; call Validate for that.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, failure.Translate(err, errs.ConfigError,
			failure.Message("Invalid environment configuration"),
		)
	}
	return cfg, nil
}

// Validate fails with errs.ConfigError naming every missing required variable.
func (c Config) Validate() error {
	required := []lo.Tuple2[string, string]{
		lo.T2("RESEND_API_KEY", c.ResendAPIKey),
		lo.T2("ALERT_FROM", c.AlertFrom),
		lo.T2("ALERT_RECIPIENTS", c.AlertRecipients),
	}
	missing := lo.FilterMap(required, func(t lo.Tuple2[string, string], _ int) (string, bool) {
		return t.A, strings.TrimSpace(t.B) == ""
	})
	if len(missing) > 0 {
		return failure.New(errs.ConfigError,
			failure.Messagef("Missing required env vars: %s", strings.Join(missing, ", ")),
			failure.Context{"missing": strings.Join(missing, ",")},
		)
	}
	return nil
}

// ResolveStatePath returns StatePath, or state.json next to the executable when unset.
func (c Config) ResolveStatePath() (string, error) {
	if c.StatePath != "" {
		return c.StatePath, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", failure.Translate(err, errs.ConfigError,
			failure.Message("Cannot locate executable to place state file; set STATE_PATH"),
		)
	}
	return filepath.Join(filepath.Dir(exe), "state.json"), nil
}

// LoadDotEnv sets variables from a KEY=VALUE file. Variables already present
// in the environment win. A missing file is ignored.
func LoadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, val)
		}
	}
}

func NewTestConfig() Config {
	return Config{
		ResendAPIKey:    "re_test",
		AlertFrom:       "alerts@example.com",
		AlertRecipients: "a@example.com",
		AlertSubject:    "Goethe exam slot available",
		ResendURL:       "http://127.0.0.1:0/emails",
		ForceMock:       true,
		Category:        "E006",
		LangISO:         "ar",
		StateRedisKey:   "examwatch:state",
	}
}
