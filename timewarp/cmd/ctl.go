package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/timewarp/warp"
)

const defaultURL = "http://localhost:8080"

var ctlActions = map[string]string{
	"pause":  "/api/pause",
	"resume": "/api/resume",
	"toggle": "/api/toggle",
	"faster": "/api/speed/faster",
	"slower": "/api/speed/slower",
	"reset":  "/api/speed/reset",
}

var ctlCmd = &cobra.Command{
	Use:   "ctl [status|pause|resume|toggle|faster|slower|reset]",
	Short: "Control a running session.",
	Long: "`ctl` sends a control action to the monitor of a running session " +
		"and prints the resulting status. Without an action it prints the " +
		"status.",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"status", "pause", "resume", "toggle", "faster", "slower", "reset"},
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newControlClient(cmd)

		action := "status"
		if len(args) > 0 {
			action = args[0]
		}

		var (
			status warp.Status
			err    error
		)

		if action == "status" {
			err = c.do(cmd.Context(), http.MethodGet, "/api/status", &status)
		} else {
			path, ok := ctlActions[action]
			if !ok {
				return fmt.Errorf("unknown action %q", action)
			}

			err = c.do(cmd.Context(), http.MethodPost, path, &status)
		}

		if err != nil {
			return err
		}

		printStatus(cmd.OutOrStdout(), status)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(ctlCmd)
	addURLFlag(ctlCmd)
}

func addURLFlag(cmd *cobra.Command) {
	cmd.Flags().String("url", defaultURL,
		"URL of the session monitor, env "+envURL)
	cmd.Flags().Duration("timeout", 5*time.Second, "Request timeout")
}

type controlClient struct {
	baseURL string
	client  *http.Client
}

func newControlClient(cmd *cobra.Command) *controlClient {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	return &controlClient{
		baseURL: strings.TrimRight(stringFlag(cmd, "url", envURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *controlClient) do(
	ctx context.Context,
	method, path string,
	out any,
) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	rsp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(rsp.Body, 1024))
		return fmt.Errorf("%s %s: %s: %s", method, path, rsp.Status,
			strings.TrimSpace(string(msg)))
	}

	err = json.NewDecoder(rsp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}

	return nil
}

func printStatus(w io.Writer, s warp.Status) {
	state := "running"
	if s.Paused {
		state = "paused"
	}

	if s.Restored {
		state = "restored"
	}

	fmt.Fprintf(w, "state:  %s\n", state)
	fmt.Fprintf(w, "speed:  %.2fx\n", s.Speed)
	fmt.Fprintf(w, "timers: %d (%d armed)\n", s.NumTimers, s.NumArmed)
}
