package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"trackport/internal/config"
	"trackport/internal/migrate"
	"trackport/internal/projfile"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <source> <dest>",
	Short: "Migrate project data from one document to another",
	Long: `Reads the source document, matches its tracks against the destination,
and writes all enabled sections into the destination document.

Entities that cannot be resolved on the destination are skipped and
reported; the rest of the migration continues.

Examples:
  trackport migrate live.json mixdown.json
  trackport migrate 'library.db#session-12' out.json.zst --clear
  trackport migrate live.json mixdown.json --dry-run --json`,
	Args: cobra.ExactArgs(2),
	RunE: runMigrate,
}

var (
	migrateClear  bool
	migrateDryRun bool
	migrateJSON   bool
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&migrateClear, "clear", false, "Clear existing destination entities before writing")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Build the plan without mutating the destination")
	migrateCmd.Flags().BoolVar(&migrateJSON, "json", false, "Output the run result as JSON")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	src, err := projfile.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load source: %w", err)
	}
	dst, err := projfile.Load(args[1])
	if err != nil {
		return fmt.Errorf("failed to load destination: %w", err)
	}

	res, err := migrate.Run(src, dst, cfg, migrate.Options{
		ClearDestination: migrateClear,
		DryRun:           migrateDryRun,
	})
	if err != nil {
		return err
	}

	if !migrateDryRun {
		if err := projfile.Save(args[1], dst); err != nil {
			return fmt.Errorf("failed to save destination: %w", err)
		}
	}

	if migrateJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(res)
	}

	out := cmd.OutOrStdout()
	if migrateDryRun {
		fmt.Fprintf(out, "dry run: %d source tracks, %d matched, %d to create\n",
			len(res.Snapshot.Tracks), len(res.Plan.Mappings), len(res.Plan.ToCreate))
		for src, dst := range res.Plan.Mappings {
			fmt.Fprintf(out, "  track %d -> %d\n", src, dst)
		}
		return nil
	}

	fmt.Fprintf(out, "migrated %d entities into %s\n", res.Written(), args[1])
	skips := res.AllSkips()
	if len(skips) > 0 {
		fmt.Fprintf(out, "%d skipped:\n", len(skips))
		for _, s := range skips {
			fmt.Fprintf(out, "  %s: %s\n", s.Key, s.Reason)
		}
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		path := f.Value.String()
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
