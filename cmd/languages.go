package cmd

import (
	"fmt"
	"strings"

	"github.com/connorhough/codegen/internal/languages"
	"github.com/spf13/cobra"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages [id]",
		Short: "List known languages or show a language's stop words",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for _, id := range languages.Default.IDs() {
					fmt.Fprintf(out, "%s\t%s\n", id, languages.Get(id).Name)
				}
				return nil
			}

			lang := languages.Get(args[0])
			if lang == nil {
				return fmt.Errorf("unknown language %q", args[0])
			}
			quoted := make([]string, 0, len(lang.StopWords()))
			for _, w := range lang.StopWords() {
				quoted = append(quoted, fmt.Sprintf("%q", w))
			}
			fmt.Fprintf(out, "%s (%s)\n", lang.Name, strings.Join(lang.IDs, ", "))
			fmt.Fprintf(out, "stop words: %s\n", strings.Join(quoted, " "))
			return nil
		},
	}
}
