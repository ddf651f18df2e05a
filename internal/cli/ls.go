package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trackport/internal/docstore/sqlitelib"
)

var lsCmd = &cobra.Command{
	Use:   "ls <library.db>",
	Short: "List projects stored in a library",
	Args:  cobra.ExactArgs(1),
	RunE:  runLs,
}

var lsJSON bool

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "Output as JSON")
}

func runLs(cmd *cobra.Command, args []string) error {
	lib, err := sqlitelib.Open(args[0])
	if err != nil {
		return err
	}
	defer lib.Close()

	entries, err := lib.List()
	if err != nil {
		return err
	}

	if lsJSON {
		type row struct {
			UUID      string `json:"uuid"`
			Name      string `json:"name"`
			CreatedAt string `json:"created_at"`
			UpdatedAt string `json:"updated_at"`
		}
		rows := make([]row, len(entries))
		for i, e := range entries {
			rows[i] = row{
				UUID:      e.UUID,
				Name:      e.Name,
				CreatedAt: e.CreatedAt.Format(time.RFC3339),
				UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
			}
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	}

	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.UpdatedAt.Format("2006-01-02 15:04"), e.Name)
	}
	return nil
}
