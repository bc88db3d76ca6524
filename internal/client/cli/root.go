package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/medicnote/internal/client/config"
	"github.com/iudanet/medicnote/internal/client/iocli"
	"github.com/iudanet/medicnote/internal/logging"
)

// VersionInfo is set via ldflags during build
type VersionInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)
}

type rootOptions struct {
	configPath    string
	server        string
	dbPath        string
	logLevel      string
	timeout       time.Duration
	probeInterval time.Duration
}

// NewRootCommand builds the command tree. The client is opened before each
// command runs and closed after it returns.
func NewRootCommand(info VersionInfo) *cobra.Command {
	var (
		opts rootOptions
		app  *Cli
	)

	root := &cobra.Command{
		Use:   "medicnote",
		Short: "Offline-first clinical notes",
		Long: `medicnote keeps clinical notes and training records on this device and
synchronises them with the medicnote server whenever it is reachable.`,
		Version:       info.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &opts)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			app, err = Open(cmd.Context(), cfg, iocli.NewStdio(cmd.InOrStdin(), cmd.OutOrStdout()), logger)
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.server, "server", "", "server URL")
	flags.StringVar(&opts.dbPath, "db", "", "path to local database")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "timeout of a single server call")
	flags.DurationVar(&opts.probeInterval, "probe-interval", 0, "how often 'run' checks the server")

	get := func() *Cli { return app }
	root.AddCommand(
		newRegisterCmd(get),
		newLoginCmd(get),
		newLogoutCmd(get),
		newStatusCmd(get),
		newNoteCmd(get),
		newTrainingCmd(get),
		newSyncCmd(get),
		newQueueCmd(get),
		newRunCmd(get),
	)
	return root
}

// loadConfig applies flags the user set on top of file and environment
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server = opts.server
	}
	if flags.Changed("db") {
		cfg.DBPath = opts.dbPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("probe-interval") {
		cfg.ProbeInterval = opts.probeInterval
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runE adapts a command handler, closing the client after it returns
func runE(get func() *Cli, fn func(cmd *cobra.Command, c *Cli, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c := get()
		defer func() {
			_ = c.Close()
		}()
		return fn(cmd, c, args)
	}
}
