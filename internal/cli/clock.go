package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Inspect or drive the server clock",
}

var clockAdvanceCmd = &cobra.Command{
	Use:   "advance <seconds>",
	Short: "Advance a manual server clock",
	Long: `Advance the server clock by the given number of seconds. The server must
run with clock.source = "manual" and server.admin enabled, and the request
must come from a loopback address.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seconds %q: %w", args[0], err)
		}
		now, err := newClient().ClockAdvance(cmd.Context(), seconds)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "clock_time: %d\n", now)
		return nil
	},
}

var clockNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Print the server clock reading",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := newClient().ServerInfo(cmd.Context())
		if err != nil {
			return err
		}
		clockTime, _ := info["clock_time"].(float64)
		fmt.Fprintf(cmd.OutOrStdout(), "clock_time: %d\n", int64(clockTime))
		fmt.Fprintf(cmd.OutOrStdout(), "manual:     %v\n", info["clock_manual"])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clockCmd)
	clockCmd.AddCommand(clockAdvanceCmd, clockNowCmd)
}
