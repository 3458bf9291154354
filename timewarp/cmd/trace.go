package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/timewarp/datarecording"
	"github.com/sarchlab/timewarp/tracing"
)

var traceCmd = &cobra.Command{
	Use:   "trace FILE",
	Short: "Print a recorded timer trace.",
	Long: "`trace` reads a file written by `serve --record` and prints its " +
		"timers, oldest first. With --milestones it prints the fires, " +
		"failures and control actions instead.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		reader.MapTable(tracing.TaskTableName, tracing.TaskTableEntry{})
		reader.MapTable(tracing.MilestoneTableName,
			tracing.MilestoneTableEntry{})

		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")
		milestones, _ := cmd.Flags().GetBool("milestones")

		params := datarecording.QueryParams{Limit: limit}
		if kind != "" {
			params.Where = "Kind = ?"
			params.Args = []any{kind}
		}

		tableName := tracing.TaskTableName
		params.OrderBy = "StartTime"

		if milestones {
			tableName = tracing.MilestoneTableName
			params.OrderBy = "Time"
		}

		rows, total, err := reader.Query(cmd.Context(), tableName, params)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

		if milestones {
			printMilestones(w, rows)
		} else {
			printTasks(w, rows)
		}

		err = w.Flush()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d rows\n", len(rows), total)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)

	traceCmd.Flags().Int("limit", 0, "Print at most this many rows, 0 for all")
	traceCmd.Flags().String("kind", "",
		"Only rows of this kind (once, repeating; fire, failure, control)")
	traceCmd.Flags().Bool("milestones", false, "Print milestones")
}

func printTasks(w io.Writer, rows []any) {
	fmt.Fprintln(w, "ID\tKIND\tREQUESTED\tSTART\tDURATION\tEND")

	for _, row := range rows {
		t := row.(*tracing.TaskTableEntry)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Kind, t.What,
			formatUnixNano(t.StartTime),
			time.Duration(t.EndTime-t.StartTime),
			t.EndReason)
	}
}

func printMilestones(w io.Writer, rows []any) {
	fmt.Fprintln(w, "TIME\tKIND\tTIMER\tWHAT")

	for _, row := range rows {
		m := row.(*tracing.MilestoneTableEntry)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			formatUnixNano(m.Time), m.Kind, m.TaskID, m.What)
	}
}

func formatUnixNano(ns int64) string {
	return time.Unix(0, ns).Format("15:04:05.000")
}
