package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/connorhough/codegen/internal/config"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded completions",
		Long:  `List, show and clear completions recorded by 'codegen complete'.`,
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent completions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(config.ResolveHistoryConfig())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tENGINE\tMODE\tLANGUAGE\tCOMPLETION")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID[:min(8, len(e.ID))],
					e.CreatedAt.Local().Format(time.DateTime),
					e.Engine, e.Mode, e.Language,
					summarize(e.Completion, 40))
			}
			return w.Flush()
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show, 0 for all")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recorded completion",
		Long:  `Show the prompt and completion of a recorded entry. An id prefix is enough.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(config.ResolveHistoryConfig())
			if err != nil {
				return err
			}
			defer store.Close()

			e, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:       %s\n", e.ID)
			fmt.Fprintf(out, "time:     %s\n", e.CreatedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "engine:   %s\n", e.Engine)
			fmt.Fprintf(out, "mode:     %s\n", e.Mode)
			if e.Language != "" {
				fmt.Fprintf(out, "language: %s\n", e.Language)
			}
			fmt.Fprintf(out, "duration: %s\n", e.Duration)
			fmt.Fprintf(out, "\n--- prompt ---\n%s\n--- completion ---\n%s\n", e.Prompt, e.Completion)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded completions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(config.ResolveHistoryConfig())
			if err != nil {
				return err
			}
			defer store.Close()

			return store.Clear(cmd.Context())
		},
	}

	historyCmd.AddCommand(listCmd, showCmd, clearCmd)

	return historyCmd
}

// summarize returns s on one line, cut to n characters
func summarize(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
