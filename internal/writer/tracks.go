package writer

import (
	"fmt"

	"trackport/internal/config"
	"trackport/internal/docstore"
	"trackport/internal/domain"
	"trackport/internal/match"
)

// WriteTracks writes the snapshot's tracks onto the destination.
//
// With clearing enabled this is a full replace: every destination track
// is deleted and source tracks are inserted in source order. Otherwise
// tracks merge by plan: matched destination tracks are mutated in
// place, and tracks scheduled for creation are inserted only after all
// merges complete, so index shifts cannot invalidate already-resolved
// destination indices.
func WriteTracks(dst docstore.Document, snap *domain.Snapshot, plan *match.Plan, cfg config.TracksConfig, opts Options) *Result {
	res := &Result{}
	if !cfg.Write {
		return res
	}

	if cfg.ClearExisting {
		for dst.TrackCount() > 0 {
			if err := dst.DeleteTrack(0); err != nil {
				res.skip("track clear", err.Error())
				break
			}
		}
		for i, tr := range snap.Tracks {
			if err := dst.InsertTrackAt(i); err != nil {
				res.skip(fmt.Sprintf("track %d", i), err.Error())
				continue
			}
			writeTrack(dst, i, i, tr, cfg, opts, res)
			res.Written++
		}
		return res
	}

	preCount := dst.TrackCount()
	creating := make(map[int]bool, len(plan.ToCreate))
	for _, src := range plan.ToCreate {
		creating[src] = true
	}

	// Merge phase: mutate matched destination tracks in place.
	for _, src := range plan.SourceIndices() {
		if creating[src] {
			continue
		}
		destIdx := plan.Mappings[src]
		if destIdx >= preCount {
			res.skip(fmt.Sprintf("track %d", src), "destination track missing")
			continue
		}
		writeTrack(dst, src, destIdx, snap.Tracks[src], cfg, opts, res)
		res.Written++
	}

	// Creation phase: append unmatched tracks after all merges.
	for k, src := range plan.ToCreate {
		at := preCount + k
		if err := dst.InsertTrackAt(at); err != nil {
			res.skip(fmt.Sprintf("track %d", src), err.Error())
			continue
		}
		writeTrack(dst, src, at, snap.Tracks[src], cfg, opts, res)
		res.Written++
	}

	return res
}

func writeTrack(dst docstore.Document, srcIdx, destIdx int, tr domain.Track, cfg config.TracksConfig, opts Options, res *Result) {
	key := fmt.Sprintf("track %d", srcIdx)
	if err := dst.SetTrackName(destIdx, tr.Name); err != nil {
		res.skip(key, err.Error())
		return
	}
	if cfg.WriteProperties {
		if err := docstore.WriteTrackProps(dst, destIdx, tr.Props); err != nil {
			res.skip(key, fmt.Sprintf("properties: %v", err))
		}
	}
	if cfg.WriteFX {
		writeTrackFX(dst, srcIdx, destIdx, tr.FX, opts, res)
	}
	if cfg.WriteEnvelopes {
		writeTrackEnvelopes(dst, destIdx, tr.Envelopes, key, res)
	}
	if cfg.WriteLanes {
		writeLaneConfig(dst, destIdx, tr.Lanes, key, res)
	}
}

// writeTrackFX replaces the destination track's FX chain. Direct
// cloning from the live source document keeps vendor-specific binary
// state; the name-based reconstruction fallback restores preset,
// parameters, enabled, and offline only.
func writeTrackFX(dst docstore.Document, srcIdx, destIdx int, chain []domain.FXState, opts Options, res *Result) {
	for dst.TrackFXCount(destIdx) > 0 {
		if err := dst.DeleteTrackFX(destIdx, 0); err != nil {
			res.skip(fmt.Sprintf("track %d fx", srcIdx), err.Error())
			return
		}
	}

	if opts.SourceDoc != nil {
		if err := dst.CopyTrackFX(opts.SourceDoc, srcIdx, destIdx); err == nil {
			return
		}
		// Clone unavailable for this pair; reconstruct below.
	}

	for _, fx := range chain {
		key := fmt.Sprintf("track %d fx %q", srcIdx, fx.Name)
		at, err := dst.AddTrackFXByName(destIdx, fx.Name)
		if err != nil {
			res.skip(key, err.Error())
			continue
		}
		if fx.Preset != "" {
			if err := dst.SetTrackFXPreset(destIdx, at, fx.Preset); err != nil {
				res.skip(key, fmt.Sprintf("preset: %v", err))
			}
		}
		for p, v := range fx.Params {
			if err := dst.SetTrackFXParam(destIdx, at, p, v); err != nil {
				res.skip(key, fmt.Sprintf("param %d: %v", p, err))
				break
			}
		}
		if err := dst.SetTrackFXEnabled(destIdx, at, fx.Enabled); err != nil {
			res.skip(key, err.Error())
		}
		if err := dst.SetTrackFXOffline(destIdx, at, fx.Offline); err != nil {
			res.skip(key, err.Error())
		}
	}
}

// writeLaneConfig applies the fixed-lane sub-protocol: convert the
// destination to fixed-lane mode, grow the lane count to at least the
// source count, then assign lane names. Lane playing state needs items
// to exist and is deferred to WriteLanePlayback.
func writeLaneConfig(dst docstore.Document, destIdx int, lanes domain.LaneInfo, key string, res *Result) {
	if !lanes.Fixed {
		return
	}
	if err := dst.ConvertToFixedLanes(destIdx); err != nil {
		res.skip(key, fmt.Sprintf("lanes: %v", err))
		return
	}
	if err := dst.EnsureLanes(destIdx, lanes.Count); err != nil {
		res.skip(key, fmt.Sprintf("lanes: %v", err))
		return
	}
	for lane, name := range lanes.Names {
		if err := dst.SetLaneName(destIdx, lane, name); err != nil {
			res.skip(key, fmt.Sprintf("lane %d name: %v", lane, err))
		}
	}
}

// WriteLanePlayback is the deferred second pass that marks which fixed
// lanes exclusively play. It runs only after the items writer, because
// the playing state cannot be set before items exist.
func WriteLanePlayback(dst docstore.Document, snap *domain.Snapshot, cfg config.TracksConfig, opts Options) *Result {
	res := &Result{}
	if !cfg.Write || !cfg.WriteLanes {
		return res
	}
	for src, tr := range snap.Tracks {
		if !tr.Lanes.Fixed || len(tr.Lanes.Active) == 0 {
			continue
		}
		destIdx := opts.DestTrack(src)
		if destIdx < 0 || destIdx >= dst.TrackCount() {
			res.skip(fmt.Sprintf("track %d", src), "destination track missing")
			continue
		}
		for lane, on := range tr.Lanes.Active {
			if !on {
				continue
			}
			if err := dst.SetLanePlaying(destIdx, lane, true); err != nil {
				res.skip(fmt.Sprintf("track %d lane %d", src, lane), err.Error())
				continue
			}
			res.Written++
		}
	}
	return res
}
