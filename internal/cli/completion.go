package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"multiping/internal/storage"
)

// hostCompletionScan bounds how many recent sessions feed host completion.
const hostCompletionScan = 200

// completeHosts offers hosts from the session history, most recent first.
func completeHosts(opts *rootOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		a, err := newApp(cmd, opts)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer a.Close()

		store, err := a.Storage()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		sessions, err := store.ListSessions(cmd.Context(), storage.SessionFilter{Limit: hostCompletionScan})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		seen := make(map[string]bool)
		var completions []string
		for _, s := range sessions {
			if seen[s.Host] {
				continue
			}
			seen[s.Host] = true
			if strings.HasPrefix(strings.ToLower(s.Host), strings.ToLower(toComplete)) {
				completions = append(completions, s.Host)
			}
		}

		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}
