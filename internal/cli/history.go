package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"multiping/internal/storage"
	"multiping/internal/storage/models"
	pkgerrors "multiping/pkg/errors"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		limit int
		host  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded monitoring sessions",
		Long: `List recorded monitoring sessions, newest first.

Every run is recorded unless started with --no-history or with
history: false in the config file.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.Storage()
			if err != nil {
				return err
			}
			sessions, err := store.ListSessions(cmd.Context(), storage.SessionFilter{Host: host, Limit: limit})
			if err != nil {
				return err
			}
			printSessions(cmd.OutOrStdout(), sessions, time.Now())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of sessions to show (0 for all)")
	cmd.Flags().StringVar(&host, "host", "", "only show sessions for this host")
	cmd.RegisterFlagCompletionFunc("host", completeHosts(opts))

	cmd.AddCommand(newHistoryShowCmd(opts))
	cmd.AddCommand(newHistoryPruneCmd(opts))
	return cmd
}

func newHistoryShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the outcome grid of one session",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return &pkgerrors.UsageError{Msg: fmt.Sprintf("invalid session id %q", args[0])}
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.Storage()
			if err != nil {
				return err
			}
			session, err := store.GetSession(cmd.Context(), id)
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), session, a.Config.RowWidth, time.Now())
			return nil
		},
	}
}

func newHistoryPruneCmd(opts *rootOptions) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest sessions",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return &pkgerrors.UsageError{Msg: fmt.Sprintf("--keep must not be negative, got %d", keep)}
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.Storage()
			if err != nil {
				return err
			}
			n, err := store.PruneSessions(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d session(s), kept the newest %d.\n", n, keep)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 50, "number of newest sessions to keep")
	return cmd
}

func printSessions(out io.Writer, sessions []*models.Session, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHOST\tSTARTED\tDURATION\tSENT\tRECEIVED\tLOSS\tSTATUS")
	fmt.Fprintln(w, "--\t----\t-------\t--------\t----\t--------\t----\t------")
	for _, s := range sessions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%.1f%%\t%s\n",
			s.ID, truncateHost(s.Host, 30),
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			s.Duration(now).Round(time.Second),
			s.Sent, s.Received, s.Loss()*100,
			sessionState(s))
	}
	w.Flush()
}

func printSession(out io.Writer, s *models.Session, rowWidth int, now time.Time) {
	fmt.Fprintf(out, "Session %d: %s every %s (%s)\n", s.ID, s.Host, s.Interval, sessionState(s))
	fmt.Fprintln(out, strings.Repeat("═", 50))
	fmt.Fprintf(out, "started   %s\n", s.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "duration  %s\n", s.Duration(now).Round(time.Second))
	fmt.Fprintf(out, "sent %d, received %d, loss %.1f%%\n\n", s.Sent, s.Received, s.Loss()*100)

	for _, line := range outcomeRows(s, rowWidth) {
		fmt.Fprintln(out, line)
	}
}

// outcomeRows splits the outcome string into rows of rowWidth, each
// labelled with the local time of its first attempt.
func outcomeRows(s *models.Session, rowWidth int) []string {
	if rowWidth < 1 {
		rowWidth = 1
	}
	var rows []string
	for lo := 0; lo < len(s.Outcomes); lo += rowWidth {
		hi := min(lo+rowWidth, len(s.Outcomes))
		at := s.StartedAt.Add(time.Duration(lo) * s.Interval).Local()
		rows = append(rows, at.Format("15:04:05")+" "+s.Outcomes[lo:hi])
	}
	return rows
}

func sessionState(s *models.Session) string {
	if s.EndedAt == nil {
		return "running"
	}
	return "finished"
}

func truncateHost(host string, maxLen int) string {
	if len(host) <= maxLen {
		return host
	}
	return host[:maxLen-3] + "..."
}
