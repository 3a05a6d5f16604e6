package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/morikuni/failure/v2"
	"github.com/rsilvagit/examwatch/internal/config"
	"github.com/rsilvagit/examwatch/internal/filter"
	"github.com/rsilvagit/examwatch/internal/httpclient"
	"github.com/rsilvagit/examwatch/internal/log"
	"github.com/rsilvagit/examwatch/internal/output"
	"github.com/rsilvagit/examwatch/internal/source"
	"github.com/rsilvagit/examwatch/internal/state"
	"github.com/rsilvagit/examwatch/internal/watch"
	"github.com/spf13/cobra"
)

var (
	// Command line flags
	statePathFlag string
	mockFlag      bool
	debugFlag     bool
	timeoutFlag   time.Duration

	// Root command
	rootCmd = &cobra.Command{
		Use:           "examwatch",
		Short:         "Alert by email when Goethe exam slots become bookable",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `examwatch polls the Goethe-Institut exam finder once, compares the offers
with the state saved by the previous run and emails the offers that became
bookable since then.

Required environment: RESEND_API_KEY, ALERT_FROM, ALERT_RECIPIENTS.
Set TEST_FORCE_MOCK=1 (or --mock) to use a fixed offer instead of the network.`,
		Args: cobra.NoArgs,
		RunE: runRoot,
	}

	// Version information
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Version command
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "examwatch version %s\n", Version)
			fmt.Fprintf(out, "  commit: %s\n", Commit)
			fmt.Fprintf(out, "  built:  %s\n", Date)
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&statePathFlag, "state", "s", "", "State file path (default: state.json next to the binary, or STATE_PATH)")
	rootCmd.Flags().BoolVar(&mockFlag, "mock", false, "Use the mock offer source (same as TEST_FORCE_MOCK=1)")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "Debug logging, including HTTP traces")
	rootCmd.Flags().DurationVar(&timeoutFlag, "timeout", 60*time.Second, "Upper bound for the whole run")
	rootCmd.AddCommand(versionCmd)
}

// Run executes the command line with ctx as the parent context.
func Run(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if statePathFlag != "" {
		cfg.StatePath = statePathFlag
	}
	if mockFlag {
		cfg.ForceMock = true
	}
	if debugFlag {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.InitLogger(os.Stderr, cfg.Debug)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFlag)
	defer cancel()

	client, err := httpclient.New(httpclient.Options{ProxyURL: cfg.ProxyURL})
	if err != nil {
		return failure.Wrap(err)
	}

	store, closeStore, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	email := output.NewEmailWriter(client, output.EmailOptions{
		APIKey:     cfg.ResendAPIKey,
		From:       cfg.AlertFrom,
		Recipients: cfg.AlertRecipients,
		Subject:    cfg.AlertSubject,
		Endpoint:   cfg.ResendURL,
	})

	runner := &watch.Runner{
		Source:   source.New(cfg, client),
		Store:    store,
		Notifier: email,
		Printer:  output.NewConsolePrinter(cmd.OutOrStdout()),
		Filter:   filter.Options{Locations: cfg.AlertLocations},
		Logger:   log.Logger,
	}
	return runner.Run(ctx)
}

// newStore picks Redis when STATE_REDIS_URL is set, the state file otherwise.
func newStore(cfg config.Config) (state.Store, func(), error) {
	if cfg.StateRedisURL != "" {
		rs, err := state.NewRedisStore(cfg.StateRedisURL, cfg.StateRedisKey, log.Logger)
		if err != nil {
			return nil, nil, err
		}
		log.Debug("Using redis state store", "key", cfg.StateRedisKey)
		return rs, func() { rs.Close() }, nil
	}

	path, err := cfg.ResolveStatePath()
	if err != nil {
		return nil, nil, err
	}
	log.Debug("Using state file", "path", path)
	return state.NewFileStore(path, log.Logger), func() {}, nil
}
