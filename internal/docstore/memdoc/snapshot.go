package memdoc

import (
	"fmt"

	"trackport/internal/docstore"
	"trackport/internal/domain"
)

// FromSnapshot materializes a snapshot into a fresh document. This is
// direct construction, not a merge: the project file codec uses it to
// hydrate documents whose on-disk form is a snapshot.
func FromSnapshot(s *domain.Snapshot) (*Document, error) {
	d := New()

	info := s.Info
	d.settings[docstore.SettingSampleRate] = info.SampleRate
	d.settings[docstore.SettingSampleRateOverride] = info.SampleRateOverride
	d.settingsStr[docstore.SettingTitle] = info.Title
	d.settingsStr[docstore.SettingAuthor] = info.Author
	d.settingsStr[docstore.SettingNotes] = info.Notes

	d.tempo = append(d.tempo, s.Tempo...)
	if len(s.Tempo) > 0 {
		d.settings[docstore.SettingTempo] = s.Tempo[0].BPM
		d.settings[docstore.SettingTimeSigNum] = float64(s.Tempo[0].TimeSigNum)
		d.settings[docstore.SettingTimeSigDen] = float64(s.Tempo[0].TimeSigDen)
	}
	d.markers = append(d.markers, s.Markers...)

	for i, tr := range s.Tracks {
		if err := d.InsertTrackAt(i); err != nil {
			return nil, err
		}
		if err := d.SetTrackName(i, tr.Name); err != nil {
			return nil, err
		}
		if err := docstore.WriteTrackProps(d, i, tr.Props); err != nil {
			return nil, err
		}
		if err := d.addFXChain(i, tr.FX); err != nil {
			return nil, fmt.Errorf("failed to build fx for track %d: %w", i, err)
		}
		for _, env := range tr.Envelopes {
			idx, err := d.EnsureTrackEnvelope(i, env.Name)
			if err != nil {
				return nil, err
			}
			if err := d.SetTrackEnvelopePoints(i, idx, env.Points); err != nil {
				return nil, err
			}
			for _, ai := range env.AutomationItems {
				if err := d.AddAutomationItem(i, idx, ai); err != nil {
					return nil, err
				}
			}
		}
		if err := d.applyLanes(i, tr.Lanes); err != nil {
			return nil, err
		}
	}

	itemIDs := make(map[domain.ItemKey]docstore.ItemID, len(s.Items))
	for _, it := range s.Items {
		if it.Key.Track < 0 || it.Key.Track >= len(d.tracks) {
			return nil, fmt.Errorf("item %s references missing track", it.Key)
		}
		id, err := d.AddItem(it.Key.Track)
		if err != nil {
			return nil, err
		}
		if err := docstore.WriteItemProps(d, id, it.Props); err != nil {
			return nil, err
		}
		if err := d.SetItemNotes(id, it.Notes); err != nil {
			return nil, err
		}
		itemIDs[it.Key] = id
	}

	active := make(map[docstore.ItemID]int)
	takeIDs := make(map[domain.TakeKey]docstore.TakeID, len(s.Takes))
	for _, tk := range s.Takes {
		itemID, ok := itemIDs[tk.Key.ItemKey()]
		if !ok {
			return nil, fmt.Errorf("take %s references missing item", tk.Key)
		}
		id, err := d.AddTake(itemID)
		if err != nil {
			return nil, err
		}
		takeIDs[tk.Key] = id
		if err := d.SetTakeName(id, tk.Name); err != nil {
			return nil, err
		}
		if err := docstore.WriteTakeProps(d, id, tk.Props); err != nil {
			return nil, err
		}
		if err := d.SetTakeType(id, tk.Type); err != nil {
			return nil, err
		}
		if tk.Type == domain.TakeTypeMIDI && tk.MIDI != nil {
			if err := d.SetTakeMIDI(id, tk.MIDI); err != nil {
				return nil, err
			}
		}
		if tk.Source != "" {
			if err := d.SetTakeSource(id, tk.Source); err != nil {
				return nil, err
			}
		}
		if err := d.addTakeFXChain(id, tk.FX); err != nil {
			return nil, fmt.Errorf("failed to build fx for take %s: %w", tk.Key, err)
		}
		for _, env := range tk.Envelopes {
			idx, err := d.EnsureTakeEnvelope(id, env.Name)
			if err != nil {
				return nil, err
			}
			if err := d.SetTakeEnvelopePoints(id, idx, env.Points); err != nil {
				return nil, err
			}
		}
		if tk.Active {
			active[itemID] = tk.Key.Take
		}
	}
	for itemID, idx := range active {
		if err := d.SetActiveTake(itemID, idx); err != nil {
			return nil, err
		}
	}

	for _, set := range s.StretchMarkers {
		id, ok := takeIDs[set.Key]
		if !ok {
			return nil, fmt.Errorf("stretch markers %s reference missing take", set.Key)
		}
		for _, m := range set.Markers {
			at, err := d.AddStretchMarker(id, m.Position, m.SourcePosition)
			if err != nil {
				return nil, err
			}
			if err := d.SetStretchMarkerSlope(id, at, m.Slope); err != nil {
				return nil, err
			}
		}
	}

	for _, set := range s.TakeMarkers {
		id, ok := takeIDs[set.Key]
		if !ok {
			return nil, fmt.Errorf("take markers %s reference missing take", set.Key)
		}
		for _, m := range set.Markers {
			if err := d.AddTakeMarker(id, m); err != nil {
				return nil, err
			}
		}
	}

	return d, nil
}

func (d *Document) addFXChain(trackIdx int, chain []domain.FXState) error {
	for _, fx := range chain {
		i, err := d.AddTrackFXByName(trackIdx, fx.Name)
		if err != nil {
			return err
		}
		if err := d.applyFXState(d.tracks[trackIdx].fx[i], fx); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) addTakeFXChain(id docstore.TakeID, chain []domain.FXState) error {
	tk, err := d.take(id)
	if err != nil {
		return err
	}
	for _, fx := range chain {
		i, err := d.AddTakeFXByName(id, fx.Name)
		if err != nil {
			return err
		}
		if err := d.applyFXState(tk.fx[i], fx); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) applyFXState(f *fxInstance, st domain.FXState) error {
	f.enabled = st.Enabled
	f.offline = st.Offline
	f.preset = st.Preset
	if len(st.Params) > 0 {
		f.params = append([]float64(nil), st.Params...)
	}
	return nil
}

func (d *Document) applyLanes(trackIdx int, lanes domain.LaneInfo) error {
	if !lanes.Fixed {
		return nil
	}
	if err := d.ConvertToFixedLanes(trackIdx); err != nil {
		return err
	}
	if err := d.EnsureLanes(trackIdx, lanes.Count); err != nil {
		return err
	}
	for lane, name := range lanes.Names {
		if err := d.SetLaneName(trackIdx, lane, name); err != nil {
			return err
		}
	}
	for lane, on := range lanes.Active {
		if !on {
			continue
		}
		if err := d.SetLanePlaying(trackIdx, lane, true); err != nil {
			return err
		}
	}
	return nil
}
