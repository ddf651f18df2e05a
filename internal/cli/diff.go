package cli

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"trackport/internal/projfile"
)

var diffCmd = &cobra.Command{
	Use:   "diff <A> <B>",
	Short: "Compare two project documents",
	Long: `Compares the canonical snapshots of two project documents and prints a
unified diff. Exits silently when the snapshots are identical.

Examples:
  trackport diff before.json after.json
  trackport diff 'library.db#v1' 'library.db#v2' --unified 5`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

var diffUnified int

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().IntVar(&diffUnified, "unified", 3, "Lines of unified context")
}

func runDiff(cmd *cobra.Command, args []string) error {
	snapA, err := projfile.LoadSnapshot(args[0])
	if err != nil {
		return err
	}
	snapB, err := projfile.LoadSnapshot(args[1])
	if err != nil {
		return err
	}

	prettyA, err := projfile.Pretty(snapA)
	if err != nil {
		return err
	}
	prettyB, err := projfile.Pretty(snapB)
	if err != nil {
		return err
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(prettyA)),
		B:        difflib.SplitLines(string(prettyB)),
		FromFile: args[0],
		ToFile:   args[1],
		Context:  diffUnified,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Errorf("failed to compute diff: %w", err)
	}
	if strings.TrimSpace(text) != "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
	}
	return nil
}
