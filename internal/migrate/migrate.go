// Package migrate orchestrates a full project-data migration: snapshot
// the source document, build the track merge plan, then run the section
// writers against the destination in dependency order.
package migrate

import (
	"fmt"

	"trackport/internal/config"
	"trackport/internal/docstore"
	"trackport/internal/domain"
	"trackport/internal/match"
	"trackport/internal/reader"
	"trackport/internal/writer"
)

// Options adjusts a single run without editing the config.
type Options struct {
	// ClearDestination forces clear_existing on for every section that
	// supports it, regardless of config.
	ClearDestination bool
	// DryRun stops after the snapshot and plan; the destination is never
	// mutated.
	DryRun bool
}

// Result is the outcome of one migration run.
type Result struct {
	Snapshot *domain.Snapshot `json:"-"`
	Stats    domain.Stats     `json:"stats"`
	Plan     *match.Plan      `json:"plan"`

	Tracks         *writer.Result `json:"tracks,omitempty"`
	Items          *writer.Result `json:"items,omitempty"`
	LanePlayback   *writer.Result `json:"lane_playback,omitempty"`
	Takes          *writer.Result `json:"takes,omitempty"`
	StretchMarkers *writer.Result `json:"stretch_markers,omitempty"`
	TakeMarkers    *writer.Result `json:"take_markers,omitempty"`
	Markers        *writer.Result `json:"markers,omitempty"`
	Tempo          *writer.Result `json:"tempo,omitempty"`
	ProjectInfo    *writer.Result `json:"project_info,omitempty"`
}

// Written sums the written counts of all sections.
func (r *Result) Written() int {
	total := 0
	for _, s := range r.sections() {
		if s != nil {
			total += s.Written
		}
	}
	return total
}

// AllSkips collects every section's skip records in write order.
func (r *Result) AllSkips() []writer.Skip {
	var skips []writer.Skip
	for _, s := range r.sections() {
		if s != nil {
			skips = append(skips, s.Skips...)
		}
	}
	return skips
}

func (r *Result) sections() []*writer.Result {
	return []*writer.Result{
		r.Tracks, r.Items, r.LanePlayback, r.Takes,
		r.StretchMarkers, r.TakeMarkers, r.Markers,
		r.Tempo, r.ProjectInfo,
	}
}

// Run migrates project data from src into dst according to cfg.
//
// The write order is fixed by data dependencies: tracks must exist
// before items, items before takes and crossfades, takes before
// stretch and take markers. Lane playback runs after items because
// playing state cannot be set on empty lanes. All writes happen inside
// one undo block so the run is a single reversible unit on stores that
// support undo.
func Run(src, dst docstore.Document, cfg *config.Config, opts Options) (*Result, error) {
	if src == nil {
		return nil, fmt.Errorf("source document is nil")
	}
	if dst == nil {
		return nil, fmt.Errorf("destination document is nil")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.ClearDestination {
		cfg = withClearing(cfg)
	}

	snap, err := reader.Read(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	destNames := make([]string, dst.TrackCount())
	for i := range destNames {
		name, err := dst.TrackName(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read destination track %d: %w", i, err)
		}
		destNames[i] = name
	}
	srcNames := make([]string, len(snap.Tracks))
	for i, tr := range snap.Tracks {
		srcNames[i] = tr.Name
	}
	plan := match.BuildPlan(srcNames, destNames, cfg.Matching.Strategy(), cfg.Matching.FallbackCreate)

	res := &Result{Snapshot: snap, Stats: snap.Stats, Plan: plan}
	if opts.DryRun {
		return res, nil
	}

	// A full track replace deletes every destination track and inserts
	// source track i at index i, so downstream writers must route by
	// identity; the name-match plan describes tracks that no longer
	// exist after the clear. Otherwise routing follows the plan, with
	// dropped sources (unmatched, creation off) pinned to Unmatched so
	// no writer routes their content by index.
	fullReplace := cfg.Tracks.Write && cfg.Tracks.ClearExisting
	trackMap := make(map[int]int, len(snap.Tracks))
	for i := range snap.Tracks {
		if fullReplace {
			trackMap[i] = i
		} else if dstIdx, ok := plan.Mappings[i]; ok {
			trackMap[i] = dstIdx
		} else {
			trackMap[i] = match.Unmatched
		}
	}

	wopts := writer.Options{TrackMap: trackMap, SourceDoc: src}

	const undoName = "import project data"
	dst.BeginUndoBlock(undoName)
	defer dst.EndUndoBlock(undoName)

	res.Tracks = writer.WriteTracks(dst, snap, plan, cfg.Tracks, wopts)
	itemsRes, itemMap := writer.WriteItems(dst, snap, cfg.Items, wopts)
	res.Items = itemsRes
	wopts.ItemMap = itemMap
	res.LanePlayback = writer.WriteLanePlayback(dst, snap, cfg.Tracks, wopts)
	res.Takes = writer.WriteTakes(dst, snap, cfg.Takes, wopts, cfg.Matching.Strategy())
	res.StretchMarkers = writer.WriteStretchMarkers(dst, snap, cfg.StretchMarkers, wopts)
	res.TakeMarkers = writer.WriteTakeMarkers(dst, snap, cfg.TakeMarkers, wopts)
	res.Markers = writer.WriteMarkers(dst, snap, cfg.Markers)
	res.Tempo = writer.WriteTempo(dst, snap, cfg.Tempo)
	res.ProjectInfo = writer.WriteProjectInfo(dst, snap, cfg.ProjectInfo)

	return res, nil
}

// withClearing copies cfg with every clear_existing toggle forced on.
func withClearing(cfg *config.Config) *config.Config {
	c := *cfg
	c.Tracks.ClearExisting = true
	c.Items.ClearExisting = true
	c.Takes.ClearExisting = true
	c.TakeMarkers.ClearExisting = true
	c.Markers.ClearExisting = true
	return &c
}
