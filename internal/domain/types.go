// Package domain defines the entity snapshot model: a typed, immutable
// capture of one project document's state (tracks, items, takes, markers,
// tempo, automation) produced by the section readers and consumed by every
// section writer during a migration.
package domain

import "fmt"

// TakeType identifies the content kind of a take.
type TakeType string

const (
	TakeTypeMIDI  TakeType = "midi"
	TakeTypeAudio TakeType = "audio"
)

// ItemKey identifies an item by its source track index and its index
// within that track.
type ItemKey struct {
	Track int `json:"track"`
	Item  int `json:"item"`
}

func (k ItemKey) String() string {
	return fmt.Sprintf("track %d item %d", k.Track, k.Item)
}

// TakeKey identifies a take by its source track, item, and take indices.
type TakeKey struct {
	Track int `json:"track"`
	Item  int `json:"item"`
	Take  int `json:"take"`
}

func (k TakeKey) String() string {
	return fmt.Sprintf("track %d item %d take %d", k.Track, k.Item, k.Take)
}

// ItemKey returns the key of the take's parent item.
func (k TakeKey) ItemKey() ItemKey {
	return ItemKey{Track: k.Track, Item: k.Item}
}

// Snapshot is the complete state of one project document at read time.
// It is produced once per migration and is read-only to every writer.
type Snapshot struct {
	Info           ProjectInfo      `json:"info"`
	Tempo          []TempoMarker    `json:"tempo"`
	Markers        []Marker         `json:"markers,omitempty"`
	Tracks         []Track          `json:"tracks,omitempty"`
	Items          []Item           `json:"items,omitempty"`
	Crossfades     []Crossfade      `json:"crossfades,omitempty"`
	Takes          []Take           `json:"takes,omitempty"`
	StretchMarkers []StretchMarkers `json:"stretch_markers,omitempty"`
	TakeMarkers    []TakeMarkers    `json:"take_markers,omitempty"`
	Stats          Stats            `json:"stats"`
}

// ProjectInfo holds project-level scalar settings.
type ProjectInfo struct {
	SampleRate         float64 `json:"sample_rate"`
	SampleRateOverride float64 `json:"sample_rate_override"`
	Title              string  `json:"title,omitempty"`
	Author             string  `json:"author,omitempty"`
	Notes              string  `json:"notes,omitempty"`
}

// TempoMarker is one tempo/time-signature change. A snapshot always
// carries at least one marker: if the document stores none, the reader
// synthesizes one at time 0 from the document's effective tempo.
type TempoMarker struct {
	Time       float64 `json:"time"`
	BPM        float64 `json:"bpm"`
	TimeSigNum int     `json:"timesig_num"`
	TimeSigDen int     `json:"timesig_den"`
}

// Marker is a project marker or region.
type Marker struct {
	Position  float64 `json:"position"`
	RegionEnd float64 `json:"region_end,omitempty"`
	Name      string  `json:"name,omitempty"`
	IsRegion  bool    `json:"is_region,omitempty"`
	Color     int     `json:"color,omitempty"`
	GUID      string  `json:"guid,omitempty"`
}

// TrackProps is the scalar property bag of a track.
type TrackProps struct {
	Volume    float64 `json:"volume"`
	Pan       float64 `json:"pan"`
	Mute      float64 `json:"mute"`
	Solo      float64 `json:"solo"`
	Height    float64 `json:"height"`
	Color     float64 `json:"color"`
	RecordArm float64 `json:"record_arm"`
}

// LaneInfo describes a track's fixed-lane configuration.
type LaneInfo struct {
	Fixed bool           `json:"fixed,omitempty"`
	Count int            `json:"count,omitempty"`
	Names map[int]string `json:"names,omitempty"`
	// Active marks the lanes that exclusively play when items overlap.
	Active map[int]bool `json:"active,omitempty"`
}

// FXState captures one FX instance well enough to reconstruct it by name.
// Direct chain cloning between live documents is higher fidelity and is
// preferred when a source document handle is available.
type FXState struct {
	Name    string    `json:"name"`
	Enabled bool      `json:"enabled"`
	Offline bool      `json:"offline,omitempty"`
	Preset  string    `json:"preset,omitempty"`
	Params  []float64 `json:"params,omitempty"`
}

// EnvelopePoint is one automation point.
type EnvelopePoint struct {
	Time     float64 `json:"time"`
	Value    float64 `json:"value"`
	Shape    int     `json:"shape,omitempty"`
	Tension  float64 `json:"tension,omitempty"`
	Selected bool    `json:"selected,omitempty"`
}

// AutomationItem is a pooled automation sub-segment within a track envelope.
type AutomationItem struct {
	Position float64         `json:"position"`
	Length   float64         `json:"length"`
	Points   []EnvelopePoint `json:"points,omitempty"`
}

// Envelope is a named automation lane. Track envelopes may carry
// automation items; take envelopes never do.
type Envelope struct {
	Name            string           `json:"name"`
	Points          []EnvelopePoint  `json:"points,omitempty"`
	AutomationItems []AutomationItem `json:"automation_items,omitempty"`
}

// Track is one source track: name, properties, FX chain, envelopes, and
// lane configuration. Its index in Snapshot.Tracks is the source track
// index the merge plan operates on.
type Track struct {
	Name      string     `json:"name"`
	Props     TrackProps `json:"props"`
	FX        []FXState  `json:"fx,omitempty"`
	Envelopes []Envelope `json:"envelopes,omitempty"`
	Lanes     LaneInfo   `json:"lanes"`
}

// ItemProps is the scalar property bag of a media item. Fade fields are
// carried verbatim so crossfade reconciliation can reassert them.
type ItemProps struct {
	Position     float64 `json:"position"`
	Length       float64 `json:"length"`
	Volume       float64 `json:"volume"`
	Mute         float64 `json:"mute"`
	GroupID      float64 `json:"group_id,omitempty"`
	Lane         float64 `json:"lane,omitempty"`
	LaneHeight   float64 `json:"lane_height,omitempty"`
	FadeInLen    float64 `json:"fade_in_len,omitempty"`
	FadeOutLen   float64 `json:"fade_out_len,omitempty"`
	FadeInShape  float64 `json:"fade_in_shape,omitempty"`
	FadeOutShape float64 `json:"fade_out_shape,omitempty"`
	FadeInCurve  float64 `json:"fade_in_curve,omitempty"`
	FadeOutCurve float64 `json:"fade_out_curve,omitempty"`
	AutoFadeIn   float64 `json:"auto_fade_in,omitempty"`
	AutoFadeOut  float64 `json:"auto_fade_out,omitempty"`
}

// End returns the item's end position.
func (p ItemProps) End() float64 {
	return p.Position + p.Length
}

// Item is one media item on a track.
type Item struct {
	Key   ItemKey   `json:"key"`
	Props ItemProps `json:"props"`
	Notes string    `json:"notes,omitempty"`
}

// Crossfade records a detected overlap between two time-adjacent items
// sharing the same fixed lane on the same track. Item1 is the earlier item.
type Crossfade struct {
	Track        int     `json:"track"`
	Lane         int     `json:"lane"`
	Item1        int     `json:"item1"`
	Item2        int     `json:"item2"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Length       float64 `json:"length"`
	FadeOutShape float64 `json:"fade_out_shape"`
	FadeInShape  float64 `json:"fade_in_shape"`
}

// TakeProps is the scalar property bag of a take.
type TakeProps struct {
	Volume      float64 `json:"volume"`
	Pan         float64 `json:"pan"`
	Pitch       float64 `json:"pitch"`
	PlayRate    float64 `json:"play_rate"`
	StartOffset float64 `json:"start_offset"`
}

// MIDIContent is a take's raw MIDI event stream plus its note count.
type MIDIContent struct {
	Events    []byte `json:"events"`
	NoteCount int    `json:"note_count"`
}

// Take is one content alternative of an item. Exactly one take per item
// is active. MIDI is set for MIDI takes, Source for audio takes.
type Take struct {
	Key       TakeKey      `json:"key"`
	Name      string       `json:"name"`
	Active    bool         `json:"active,omitempty"`
	Props     TakeProps    `json:"props"`
	Type      TakeType     `json:"type"`
	MIDI      *MIDIContent `json:"midi,omitempty"`
	Source    string       `json:"source,omitempty"`
	FX        []FXState    `json:"fx,omitempty"`
	Envelopes []Envelope   `json:"envelopes,omitempty"`
}

// StretchMarker is a per-take time-warp point. Slope is a property of an
// already-created marker, not a creation parameter.
type StretchMarker struct {
	Position       float64 `json:"position"`
	SourcePosition float64 `json:"source_position"`
	Slope          float64 `json:"slope,omitempty"`
}

// StretchMarkers is the ordered stretch-marker list of one take.
type StretchMarkers struct {
	Key     TakeKey         `json:"key"`
	Markers []StretchMarker `json:"markers"`
}

// TakeMarker is a per-take marker.
type TakeMarker struct {
	Position float64 `json:"position"`
	Name     string  `json:"name,omitempty"`
	Color    int     `json:"color,omitempty"`
}

// TakeMarkers is the ordered take-marker list of one take.
type TakeMarkers struct {
	Key     TakeKey      `json:"key"`
	Markers []TakeMarker `json:"markers"`
}

// Stats summarizes a snapshot for diagnostics. It is computed post-read
// and is not a contract surface.
type Stats struct {
	Tracks          int `json:"tracks"`
	Items           int `json:"items"`
	Takes           int `json:"takes"`
	TempoMarkers    int `json:"tempo_markers"`
	Markers         int `json:"markers"`
	StretchMarkers  int `json:"stretch_markers"`
	TakeMarkers     int `json:"take_markers"`
	MIDINotes       int `json:"midi_notes"`
	FX              int `json:"fx"`
	FixedLaneTracks int `json:"fixed_lane_tracks"`
	ActiveLanes     int `json:"active_lanes"`
}
