package cmd

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/timewarp/warp"
)

var speedCmd = &cobra.Command{
	Use:   "speed [factor]",
	Short: "Show or set the speed of a running session.",
	Long: "`speed` prints the speed factor of a running session. With a " +
		"factor, it sets the speed first. Factors are clamped to " +
		"[0.1, 4.0] and rounded to two decimals by the session.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newControlClient(cmd)

		if len(args) == 0 {
			var rsp struct {
				Speed float64 `json:"speed"`
			}

			err := c.do(cmd.Context(), http.MethodGet, "/api/speed", &rsp)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%.2fx\n", rsp.Speed)

			return nil
		}

		f, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("speed factor %q: %w", args[0], err)
		}

		if f != warp.ClampSpeed(f) {
			logger.Warn().Float64("requested", f).
				Float64("applied", warp.ClampSpeed(f)).
				Msg("speed will be clamped and rounded")
		}

		var status warp.Status

		err = c.do(cmd.Context(), http.MethodPost,
			"/api/speed/"+strconv.FormatFloat(f, 'f', -1, 64), &status)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%.2fx\n", status.Speed)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(speedCmd)
	addURLFlag(speedCmd)
}
