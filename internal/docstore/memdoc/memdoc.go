// Package memdoc is the in-memory implementation of the document store
// contract. It is the concrete document type the CLI loads and saves,
// and the substrate every test builds fixtures on.
package memdoc

import (
	"fmt"

	"trackport/internal/docstore"
	"trackport/internal/domain"
)

type fxInstance struct {
	name    string
	enabled bool
	offline bool
	preset  string
	params  []float64
}

type envelope struct {
	name      string
	points    []domain.EnvelopePoint
	autoItems []domain.AutomationItem
}

type track struct {
	name        string
	values      map[string]float64
	fx          []*fxInstance
	envelopes   []*envelope
	fixedLanes  bool
	laneCount   int
	laneNames   map[int]string
	lanePlaying map[int]bool
	items       []docstore.ItemID
}

type item struct {
	owner  *track
	values map[string]float64
	notes  string
	takes  []docstore.TakeID
	active int
}

type take struct {
	owner     *item
	name      string
	values    map[string]float64
	typ       domain.TakeType
	midi      *domain.MIDIContent
	source    string
	fx        []*fxInstance
	envelopes []*envelope
	stretch   []domain.StretchMarker
	markers   []domain.TakeMarker
}

// Document is an in-memory project document.
type Document struct {
	settings    map[string]float64
	settingsStr map[string]string
	tempo       []domain.TempoMarker
	markers     []domain.Marker
	tracks      []*track
	items       map[docstore.ItemID]*item
	takes       map[docstore.TakeID]*take
	nextItem    docstore.ItemID
	nextTake    docstore.TakeID
	undoDepth   int
}

var _ docstore.Document = (*Document)(nil)

// New creates an empty document.
func New() *Document {
	return &Document{
		settings:    make(map[string]float64),
		settingsStr: make(map[string]string),
		items:       make(map[docstore.ItemID]*item),
		takes:       make(map[docstore.TakeID]*take),
		nextItem:    1,
		nextTake:    1,
	}
}

func newTrack() *track {
	return &track{
		values:      make(map[string]float64),
		laneNames:   make(map[int]string),
		lanePlaying: make(map[int]bool),
	}
}

// BeginUndoBlock opens an undo boundary. Blocks nest; only the outermost
// pair is consumer-visible.
func (d *Document) BeginUndoBlock(name string) {
	d.undoDepth++
}

// EndUndoBlock closes an undo boundary.
func (d *Document) EndUndoBlock(name string) {
	if d.undoDepth > 0 {
		d.undoDepth--
	}
}

// InUndoBlock reports whether an undo block is open.
func (d *Document) InUndoBlock() bool {
	return d.undoDepth > 0
}

// Setting returns a project-level scalar setting (0 if never set).
func (d *Document) Setting(key string) (float64, error) {
	return d.settings[key], nil
}

func (d *Document) SetSetting(key string, v float64) error {
	d.settings[key] = v
	return nil
}

// SettingString returns a project-level string setting ("" if never set).
func (d *Document) SettingString(key string) (string, error) {
	return d.settingsStr[key], nil
}

func (d *Document) SetSettingString(key, v string) error {
	d.settingsStr[key] = v
	return nil
}

func (d *Document) track(idx int) (*track, error) {
	if idx < 0 || idx >= len(d.tracks) {
		return nil, fmt.Errorf("track %d: %w", idx, docstore.ErrNotFound)
	}
	return d.tracks[idx], nil
}

func (d *Document) TrackCount() int {
	return len(d.tracks)
}

func (d *Document) TrackName(idx int) (string, error) {
	tr, err := d.track(idx)
	if err != nil {
		return "", err
	}
	return tr.name, nil
}

func (d *Document) SetTrackName(idx int, name string) error {
	tr, err := d.track(idx)
	if err != nil {
		return err
	}
	tr.name = name
	return nil
}

func (d *Document) TrackValue(idx int, key string) (float64, error) {
	tr, err := d.track(idx)
	if err != nil {
		return 0, err
	}
	return tr.values[key], nil
}

func (d *Document) SetTrackValue(idx int, key string, v float64) error {
	tr, err := d.track(idx)
	if err != nil {
		return err
	}
	tr.values[key] = v
	return nil
}

// InsertTrackAt inserts an empty track. An index at or past the end
// appends.
func (d *Document) InsertTrackAt(idx int) error {
	if idx < 0 {
		return fmt.Errorf("track %d: %w", idx, docstore.ErrNotFound)
	}
	tr := newTrack()
	if idx >= len(d.tracks) {
		d.tracks = append(d.tracks, tr)
		return nil
	}
	d.tracks = append(d.tracks[:idx], append([]*track{tr}, d.tracks[idx:]...)...)
	return nil
}

// DeleteTrack removes a track and everything on it.
func (d *Document) DeleteTrack(idx int) error {
	tr, err := d.track(idx)
	if err != nil {
		return err
	}
	for _, id := range tr.items {
		d.deleteItemState(id)
	}
	d.tracks = append(d.tracks[:idx], d.tracks[idx+1:]...)
	return nil
}

func (d *Document) TrackLanes(idx int) (domain.LaneInfo, error) {
	tr, err := d.track(idx)
	if err != nil {
		return domain.LaneInfo{}, err
	}
	info := domain.LaneInfo{
		Fixed: tr.fixedLanes,
		Count: tr.laneCount,
	}
	if len(tr.laneNames) > 0 {
		info.Names = make(map[int]string, len(tr.laneNames))
		for k, v := range tr.laneNames {
			info.Names[k] = v
		}
	}
	if len(tr.lanePlaying) > 0 {
		info.Active = make(map[int]bool, len(tr.lanePlaying))
		for k, v := range tr.lanePlaying {
			if v {
				info.Active[k] = true
			}
		}
	}
	return info, nil
}

func (d *Document) ConvertToFixedLanes(idx int) error {
	tr, err := d.track(idx)
	if err != nil {
		return err
	}
	tr.fixedLanes = true
	if tr.laneCount < 1 {
		tr.laneCount = 1
	}
	return nil
}

// EnsureLanes grows the lane count to at least count. It never shrinks.
func (d *Document) EnsureLanes(idx, count int) error {
	tr, err := d.track(idx)
	if err != nil {
		return err
	}
	if !tr.fixedLanes {
		return fmt.Errorf("track %d is not in fixed-lane mode", idx)
	}
	if count > tr.laneCount {
		tr.laneCount = count
	}
	return nil
}

func (d *Document) SetLaneName(idx, lane int, name string) error {
	tr, err := d.track(idx)
	if err != nil {
		return err
	}
	if lane < 0 || lane >= tr.laneCount {
		return fmt.Errorf("track %d lane %d: %w", idx, lane, docstore.ErrNotFound)
	}
	tr.laneNames[lane] = name
	return nil
}

func (d *Document) SetLanePlaying(idx, lane int, playing bool) error {
	tr, err := d.track(idx)
	if err != nil {
		return err
	}
	if lane < 0 || lane >= tr.laneCount {
		return fmt.Errorf("track %d lane %d: %w", idx, lane, docstore.ErrNotFound)
	}
	if playing {
		tr.lanePlaying[lane] = true
	} else {
		delete(tr.lanePlaying, lane)
	}
	return nil
}
