package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"studyroom/internal/studylog"
)

var totalPrinter = message.NewPrinter(language.English)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Show the recent study sessions and current streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.ctrl.Summary(cmd.Context(), a.cfg.UserID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summary.Logs) == 0 {
				fmt.Fprintln(out, "No study sessions yet")
				return nil
			}

			rows := make([][]string, 0, len(summary.Logs))
			total := 0
			for i := len(summary.Logs) - 1; i >= 0; i-- {
				l := summary.Logs[i]
				total += l.DurationSeconds
				rows = append(rows, []string{
					strconv.FormatInt(l.ID, 10),
					l.Date,
					l.CreatedAt.In(a.cfg.Location()).Format("15:04"),
					formatSeconds(l.DurationSeconds),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Date", "Saved", "Duration"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				[]string{"", "", "Total", formatTotal(total)},
			))
			fmt.Fprintf(out, "Recent window: %d of %d sessions\n", len(summary.Logs), a.ctrl.Engine().Window())
			fmt.Fprintf(out, "Streak: %d day(s)\n", summary.Streak)
			return nil
		},
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear archived study sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if clearAll {
				n, err := a.ctrl.ClearHistory(cmd.Context(), a.cfg.UserID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted %d archived session(s)\n", n)
				return nil
			}

			history, err := a.ctrl.History(cmd.Context(), a.cfg.UserID)
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Fprintln(out, "No archived sessions")
				return nil
			}

			rows := make([][]string, 0, len(history))
			total := 0
			for _, h := range history {
				total += h.DurationSeconds
				rows = append(rows, []string{
					h.Date,
					formatSeconds(h.DurationSeconds),
					humanize.Time(h.ArchivedAt),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Date", "Duration", "Archived"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
				[]string{"Total", formatTotal(total), ""},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "Permanently delete all archived sessions")
	return cmd
}

func newLogCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "log <duration>",
		Short: "Record a finished session (e.g. 25, 25m, 1h30m)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := studylog.ParseDuration(args[0])
			if err != nil {
				return err
			}

			a, err := ctx.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			receipt, err := a.ctrl.Record(cmd.Context(), a.cfg.UserID, int(d/time.Second))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged %s on %s\n", formatSeconds(receipt.Entry.DurationSeconds), receipt.Entry.Date)
			if receipt.Archived > 0 {
				fmt.Fprintf(out, "Moved %d older session(s) to history\n", receipt.Archived)
			}
			if receipt.Partial {
				fmt.Fprintln(out, "Older sessions will move to history on the next save")
			}
			return nil
		},
	}
}

func formatSeconds(seconds int) string {
	d := time.Duration(seconds) * time.Second
	if d < time.Minute {
		return fmt.Sprintf("%ds", seconds)
	}
	return strings.TrimSuffix(d.Truncate(time.Minute).String(), "0s")
}

func formatTotal(seconds int) string {
	return totalPrinter.Sprintf("%d min", seconds/60)
}
