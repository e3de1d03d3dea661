package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/roomload/app"
	"github.com/kilianp07/roomload/config"
	"github.com/kilianp07/roomload/infra/logger"
)

var cfgPath string

var overrides struct {
	begin       string
	end         string
	output      string
	maxRooms    int
	concurrency int
	baseURL     string
	logLevel    string
}

var rootCmd = &cobra.Command{
	Use:   "roomload",
	Short: "Export per-room lesson occupancy from the university timetable",
	Long: `roomload fetches every room schedule between two dates and reports, for each
room and each of the 8 lesson slots, the share of workdays on which the slot
was occupied.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file (yaml or json)")
	pf.StringVar(&overrides.baseURL, "base-url", "", "timetable export endpoint")
	pf.StringVar(&overrides.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	f := rootCmd.Flags()
	f.StringVar(&overrides.begin, "begin", "", "first day of the range (dd.mm.yyyy)")
	f.StringVar(&overrides.end, "end", "", "last day of the range (dd.mm.yyyy)")
	f.StringVarP(&overrides.output, "output", "o", "", "spreadsheet path used when no sink is configured")
	f.IntVar(&overrides.maxRooms, "max-rooms", 0, "process at most this many rooms (0 = all)")
	f.IntVar(&overrides.concurrency, "concurrency", 0, "maximum concurrent schedule requests")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration file and applies command-line
// overrides. The default file is optional; an explicit --config is not.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgPath
	if !cmd.Flags().Changed("config") && !config.Exists(path) {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("begin") {
		cfg.Range.Begin = overrides.begin
	}
	if flags.Changed("end") {
		cfg.Range.End = overrides.end
	}
	if flags.Changed("output") {
		cfg.Output = overrides.output
	}
	if flags.Changed("max-rooms") {
		cfg.MaxRooms = overrides.maxRooms
	}
	if flags.Changed("concurrency") {
		cfg.Provider.MaxConcurrency = overrides.concurrency
	}
	if flags.Changed("base-url") {
		cfg.Provider.BaseURL = overrides.baseURL
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = overrides.logLevel
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}

// startFileLogging enables the rotating log file when one is configured.
// The returned function stops it.
func startFileLogging(cfg config.LoggingConfig) (func(), error) {
	if cfg.File == "" {
		return func() {}, nil
	}
	closer, err := logger.LogToFile(logger.FileOptions{
		Path:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	return func() { _ = closer.Close() }, nil
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	stopLog, err := startFileLogging(cfg.Logging)
	if err != nil {
		return err
	}
	defer stopLog()
	svc, err := app.New(ctx, cfg, app.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	if _, err := svc.Export(ctx); err != nil && !app.IsGracefulExit(err) {
		return err
	}
	return nil
}
