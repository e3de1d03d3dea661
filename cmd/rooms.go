package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kilianp07/roomload/infra/provider"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List the rooms known to the timetable service",
	RunE:  runRooms,
}

func init() {
	rootCmd.AddCommand(roomsCmd)
}

func runRooms(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	stopLog, err := startFileLogging(cfg.Logging)
	if err != nil {
		return err
	}
	defer stopLog()
	client, err := provider.NewClient(cfg.Provider)
	if err != nil {
		return err
	}
	rooms, err := client.FetchRooms(ctx)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"ID", "Name"})
	table.SetAutoFormatHeaders(false)
	for _, r := range rooms {
		table.Append([]string{r.ID, r.Name})
	}
	table.Render()
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d rooms\n", len(rooms))
	return err
}
