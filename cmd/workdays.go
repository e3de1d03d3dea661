package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/roomload/core/calendar"
)

var workdaysCmd = &cobra.Command{
	Use:   "workdays <begin> <end>",
	Short: "Print the workdays between two dd.mm.yyyy dates",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rng, err := calendar.ParseRange(args[0], args[1])
		if err != nil {
			return err
		}
		days := calendar.Workdays(rng)
		out := cmd.OutOrStdout()
		for _, d := range days {
			if _, err := fmt.Fprintf(out, "%s %s\n", calendar.Format(d), d.Weekday().String()[:3]); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(out, "%d workdays\n", len(days))
		return err
	},
}

func init() {
	rootCmd.AddCommand(workdaysCmd)
}
