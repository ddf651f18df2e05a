// Package reader builds an entity snapshot from a document. Reading is
// always unconditional and complete: writers gate what reaches the
// destination, but downstream consumers always see full source data.
package reader

import (
	"fmt"
	"sort"

	"trackport/internal/docstore"
	"trackport/internal/domain"
)

// Defaults used when a document reports no effective tempo at time 0.
const (
	defaultBPM        = 120.0
	defaultTimeSigNum = 4
	defaultTimeSigDen = 4
)

// Read captures the full state of a document as a snapshot.
func Read(doc docstore.Document) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}

	if err := readInfo(doc, snap); err != nil {
		return nil, fmt.Errorf("failed to read project info: %w", err)
	}
	if err := readTempo(doc, snap); err != nil {
		return nil, fmt.Errorf("failed to read tempo: %w", err)
	}
	if err := readMarkers(doc, snap); err != nil {
		return nil, fmt.Errorf("failed to read markers: %w", err)
	}
	if err := readTracks(doc, snap); err != nil {
		return nil, fmt.Errorf("failed to read tracks: %w", err)
	}
	if err := readItems(doc, snap); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	detectCrossfades(snap)
	if err := readTakes(doc, snap); err != nil {
		return nil, fmt.Errorf("failed to read takes: %w", err)
	}
	snap.Stats = computeStats(snap)

	return snap, nil
}

func readInfo(doc docstore.Document, snap *domain.Snapshot) error {
	var info domain.ProjectInfo
	var err error
	if info.SampleRate, err = doc.Setting(docstore.SettingSampleRate); err != nil {
		return err
	}
	if info.SampleRateOverride, err = doc.Setting(docstore.SettingSampleRateOverride); err != nil {
		return err
	}
	if info.Title, err = doc.SettingString(docstore.SettingTitle); err != nil {
		return err
	}
	if info.Author, err = doc.SettingString(docstore.SettingAuthor); err != nil {
		return err
	}
	if info.Notes, err = doc.SettingString(docstore.SettingNotes); err != nil {
		return err
	}
	snap.Info = info
	return nil
}

// readTempo reads all tempo markers, synthesizing one at time 0 from the
// document's effective tempo when none are stored. Every document has an
// effective tempo at time 0, so the snapshot invariant is len(Tempo) >= 1.
func readTempo(doc docstore.Document, snap *domain.Snapshot) error {
	n := doc.TempoMarkerCount()
	if n == 0 {
		bpm, err := doc.Setting(docstore.SettingTempo)
		if err != nil {
			return err
		}
		num, err := doc.Setting(docstore.SettingTimeSigNum)
		if err != nil {
			return err
		}
		den, err := doc.Setting(docstore.SettingTimeSigDen)
		if err != nil {
			return err
		}
		m := domain.TempoMarker{
			Time:       0,
			BPM:        bpm,
			TimeSigNum: int(num),
			TimeSigDen: int(den),
		}
		if m.BPM == 0 {
			m.BPM = defaultBPM
		}
		if m.TimeSigNum == 0 {
			m.TimeSigNum = defaultTimeSigNum
		}
		if m.TimeSigDen == 0 {
			m.TimeSigDen = defaultTimeSigDen
		}
		snap.Tempo = []domain.TempoMarker{m}
		return nil
	}
	for i := 0; i < n; i++ {
		m, err := doc.TempoMarker(i)
		if err != nil {
			return err
		}
		snap.Tempo = append(snap.Tempo, m)
	}
	return nil
}

func readMarkers(doc docstore.Document, snap *domain.Snapshot) error {
	for i := 0; i < doc.MarkerCount(); i++ {
		m, err := doc.Marker(i)
		if err != nil {
			return err
		}
		snap.Markers = append(snap.Markers, m)
	}
	return nil
}

func readTracks(doc docstore.Document, snap *domain.Snapshot) error {
	for i := 0; i < doc.TrackCount(); i++ {
		tr := domain.Track{}
		var err error
		if tr.Name, err = doc.TrackName(i); err != nil {
			return err
		}
		if tr.Props, err = docstore.ReadTrackProps(doc, i); err != nil {
			return err
		}
		for fx := 0; fx < doc.TrackFXCount(i); fx++ {
			st, err := doc.TrackFXState(i, fx)
			if err != nil {
				return err
			}
			tr.FX = append(tr.FX, st)
		}
		if tr.Envelopes, err = readTrackEnvelopes(doc, i); err != nil {
			return err
		}
		if tr.Lanes, err = doc.TrackLanes(i); err != nil {
			return err
		}
		snap.Tracks = append(snap.Tracks, tr)
	}
	return nil
}

func readTrackEnvelopes(doc docstore.Document, track int) ([]domain.Envelope, error) {
	var envs []domain.Envelope
	for e := 0; e < doc.TrackEnvelopeCount(track); e++ {
		env := domain.Envelope{}
		var err error
		if env.Name, err = doc.TrackEnvelopeName(track, e); err != nil {
			return nil, err
		}
		if env.Points, err = doc.TrackEnvelopePoints(track, e); err != nil {
			return nil, err
		}
		if env.AutomationItems, err = doc.AutomationItems(track, e); err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}
	return envs, nil
}

func readItems(doc docstore.Document, snap *domain.Snapshot) error {
	for t := 0; t < doc.TrackCount(); t++ {
		for i := 0; i < doc.ItemCount(t); i++ {
			id, err := doc.Item(t, i)
			if err != nil {
				return err
			}
			it := domain.Item{Key: domain.ItemKey{Track: t, Item: i}}
			if it.Props, err = docstore.ReadItemProps(doc, id); err != nil {
				return err
			}
			if it.Notes, err = doc.ItemNotes(id); err != nil {
				return err
			}
			snap.Items = append(snap.Items, it)
		}
	}
	return nil
}

// detectCrossfades finds overlap regions between time-adjacent items
// sharing the same fixed lane on the same track.
func detectCrossfades(snap *domain.Snapshot) {
	type laneKey struct {
		track int
		lane  int
	}
	byLane := make(map[laneKey][]domain.Item)
	for _, it := range snap.Items {
		if it.Key.Track >= len(snap.Tracks) || !snap.Tracks[it.Key.Track].Lanes.Fixed {
			continue
		}
		k := laneKey{track: it.Key.Track, lane: int(it.Props.Lane)}
		byLane[k] = append(byLane[k], it)
	}

	keys := make([]laneKey, 0, len(byLane))
	for k := range byLane {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].track != keys[b].track {
			return keys[a].track < keys[b].track
		}
		return keys[a].lane < keys[b].lane
	})

	for _, k := range keys {
		items := byLane[k]
		sort.Slice(items, func(a, b int) bool {
			return items[a].Props.Position < items[b].Props.Position
		})
		for i := 0; i+1 < len(items); i++ {
			a, b := items[i], items[i+1]
			if a.Props.End() <= b.Props.Position {
				continue
			}
			end := a.Props.End()
			if b.Props.End() < end {
				end = b.Props.End()
			}
			snap.Crossfades = append(snap.Crossfades, domain.Crossfade{
				Track:        k.track,
				Lane:         k.lane,
				Item1:        a.Key.Item,
				Item2:        b.Key.Item,
				Start:        b.Props.Position,
				End:          end,
				Length:       end - b.Props.Position,
				FadeOutShape: a.Props.FadeOutShape,
				FadeInShape:  b.Props.FadeInShape,
			})
		}
	}
}

func readTakes(doc docstore.Document, snap *domain.Snapshot) error {
	for t := 0; t < doc.TrackCount(); t++ {
		for i := 0; i < doc.ItemCount(t); i++ {
			itemID, err := doc.Item(t, i)
			if err != nil {
				return err
			}
			active, err := doc.ActiveTake(itemID)
			if err != nil {
				return err
			}
			for ti := 0; ti < doc.TakeCount(itemID); ti++ {
				takeID, err := doc.Take(itemID, ti)
				if err != nil {
					return err
				}
				key := domain.TakeKey{Track: t, Item: i, Take: ti}
				tk, err := readTake(doc, takeID, key, ti == active)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", key, err)
				}
				snap.Takes = append(snap.Takes, tk)

				if err := readStretchMarkers(doc, takeID, key, snap); err != nil {
					return err
				}
				if err := readTakeMarkers(doc, takeID, key, snap); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func readTake(doc docstore.Document, id docstore.TakeID, key domain.TakeKey, active bool) (domain.Take, error) {
	tk := domain.Take{Key: key, Active: active}
	var err error
	if tk.Name, err = doc.TakeName(id); err != nil {
		return tk, err
	}
	if tk.Props, err = docstore.ReadTakeProps(doc, id); err != nil {
		return tk, err
	}
	if tk.Type, err = doc.TakeType(id); err != nil {
		return tk, err
	}
	switch tk.Type {
	case domain.TakeTypeMIDI:
		if tk.MIDI, err = doc.TakeMIDI(id); err != nil {
			return tk, err
		}
	default:
		if tk.Source, err = doc.TakeSource(id); err != nil {
			return tk, err
		}
	}
	for fx := 0; fx < doc.TakeFXCount(id); fx++ {
		st, err := doc.TakeFXState(id, fx)
		if err != nil {
			return tk, err
		}
		tk.FX = append(tk.FX, st)
	}
	for e := 0; e < doc.TakeEnvelopeCount(id); e++ {
		env := domain.Envelope{}
		if env.Name, err = doc.TakeEnvelopeName(id, e); err != nil {
			return tk, err
		}
		if env.Points, err = doc.TakeEnvelopePoints(id, e); err != nil {
			return tk, err
		}
		tk.Envelopes = append(tk.Envelopes, env)
	}
	return tk, nil
}

func readStretchMarkers(doc docstore.Document, id docstore.TakeID, key domain.TakeKey, snap *domain.Snapshot) error {
	n := doc.StretchMarkerCount(id)
	if n == 0 {
		return nil
	}
	set := domain.StretchMarkers{Key: key}
	for i := 0; i < n; i++ {
		m, err := doc.StretchMarker(id, i)
		if err != nil {
			return err
		}
		set.Markers = append(set.Markers, m)
	}
	snap.StretchMarkers = append(snap.StretchMarkers, set)
	return nil
}

func readTakeMarkers(doc docstore.Document, id docstore.TakeID, key domain.TakeKey, snap *domain.Snapshot) error {
	n := doc.TakeMarkerCount(id)
	if n == 0 {
		return nil
	}
	set := domain.TakeMarkers{Key: key}
	for i := 0; i < n; i++ {
		m, err := doc.TakeMarker(id, i)
		if err != nil {
			return err
		}
		set.Markers = append(set.Markers, m)
	}
	snap.TakeMarkers = append(snap.TakeMarkers, set)
	return nil
}

func computeStats(snap *domain.Snapshot) domain.Stats {
	st := domain.Stats{
		Tracks:       len(snap.Tracks),
		Items:        len(snap.Items),
		Takes:        len(snap.Takes),
		TempoMarkers: len(snap.Tempo),
		Markers:      len(snap.Markers),
	}
	for _, set := range snap.StretchMarkers {
		st.StretchMarkers += len(set.Markers)
	}
	for _, set := range snap.TakeMarkers {
		st.TakeMarkers += len(set.Markers)
	}
	for _, tr := range snap.Tracks {
		st.FX += len(tr.FX)
		if tr.Lanes.Fixed {
			st.FixedLaneTracks++
			st.ActiveLanes += len(tr.Lanes.Active)
		}
	}
	for _, tk := range snap.Takes {
		st.FX += len(tk.FX)
		if tk.MIDI != nil {
			st.MIDINotes += tk.MIDI.NoteCount
		}
	}
	return st
}
