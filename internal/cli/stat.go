package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"trackport/internal/domain"
	"trackport/internal/projfile"
)

var statCmd = &cobra.Command{
	Use:   "stat <project>...",
	Short: "Print entity counts for project documents",
	Long:  `Displays the entity statistics of one or more project documents.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStat,
}

var statJSON bool

func init() {
	rootCmd.AddCommand(statCmd)
	statCmd.Flags().BoolVar(&statJSON, "json", false, "Output as JSON")
}

func runStat(cmd *cobra.Command, args []string) error {
	type projectStat struct {
		Ref   string       `json:"ref"`
		Title string       `json:"title,omitempty"`
		Stats domain.Stats `json:"stats"`
	}

	var results []projectStat
	for _, ref := range args {
		snap, err := projfile.LoadSnapshot(ref)
		if err != nil {
			return err
		}
		results = append(results, projectStat{
			Ref:   ref,
			Title: snap.Info.Title,
			Stats: snap.Stats,
		})
	}

	if statJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "%s\n", r.Ref)
		if r.Title != "" {
			fmt.Fprintf(out, "  title: %s\n", r.Title)
		}
		s := r.Stats
		fmt.Fprintf(out, "  tracks: %d (%d fixed-lane, %d active lanes)\n", s.Tracks, s.FixedLaneTracks, s.ActiveLanes)
		fmt.Fprintf(out, "  items: %d\n", s.Items)
		fmt.Fprintf(out, "  takes: %d (%d midi notes)\n", s.Takes, s.MIDINotes)
		fmt.Fprintf(out, "  fx: %d\n", s.FX)
		fmt.Fprintf(out, "  markers: %d project, %d take, %d stretch\n", s.Markers, s.TakeMarkers, s.StretchMarkers)
		fmt.Fprintf(out, "  tempo markers: %d\n", s.TempoMarkers)
	}
	return nil
}
