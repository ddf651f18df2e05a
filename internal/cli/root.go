package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trackport",
	Short: "Migrate project data between documents",
	Long: `trackport reads the full state of a source project document (tracks,
items, takes, markers, tempo map, project settings) and writes it into a
destination document, matching tracks by name with index fallback.

Project references are plain files or library entries:
  project.json          canonical JSON
  project.json.zst      zstd-compressed JSON
  library.db#name       named snapshot in a sqlite library`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides TRACKPORT_CONFIG)")
}
