package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/roomload/config"
	"github.com/kilianp07/roomload/infra/logger"
	"github.com/kilianp07/roomload/infra/provider"
)

var mockCfg config.MockServerConfig

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Serve the timetable export interface from a fixture file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := logger.SetLevel(overrides.logLevel); err != nil {
			return err
		}
		fx := &provider.Fixture{}
		if mockCfg.Fixture != "" {
			var err error
			if fx, err = provider.LoadFixture(mockCfg.Fixture); err != nil {
				return err
			}
		}
		return provider.NewServerMock(mockCfg, fx).Start(ctx)
	},
}

func init() {
	f := mockServerCmd.Flags()
	f.StringVar(&mockCfg.Address, "addr", ":9090", "listen address")
	f.StringVar(&mockCfg.Fixture, "fixture", "", "fixture file with rooms and schedules")
	f.StringVar(&mockCfg.Encoding, "encoding", "WINDOWS-1251", "default response charset")
	f.BoolVar(&mockCfg.Gzip, "gzip", false, "gzip responses when accepted")
	f.StringSliceVar(&mockCfg.FailRooms, "fail-room", nil, "room id whose schedule requests fail (repeatable)")
	rootCmd.AddCommand(mockServerCmd)
}
