// Package docstore defines the document store contract the migration
// core reads from and writes to: entity enumeration, a key-addressed
// scalar property channel, structural mutation, content operations, and
// explicit creation capabilities for things host applications only
// expose as UI actions (lane conversion, envelope creation, crossfade
// generation).
//
// Item and take creation return opaque handles rather than positional
// indices, so identity maps built during a migration survive later
// structural edits. Track identity stays index-based: track indices are
// the currency of the merge plan.
package docstore

import (
	"errors"

	"trackport/internal/domain"
)

// ErrNotFound is wrapped by every resolution failure (missing track,
// item, take, envelope, FX, or marker).
var ErrNotFound = errors.New("not found")

// ItemID is an opaque handle to a media item, stable across reordering.
type ItemID int64

// TakeID is an opaque handle to a take, stable across reordering.
type TakeID int64

// Track property keys. The snapshot model is strongly typed; these
// constants exist only at the document boundary.
const (
	TrackVolume    = "volume"
	TrackPan       = "pan"
	TrackMute      = "mute"
	TrackSolo      = "solo"
	TrackHeight    = "height"
	TrackColor     = "color"
	TrackRecordArm = "record_arm"
)

// Item property keys.
const (
	ItemPosition     = "position"
	ItemLength       = "length"
	ItemVolume       = "volume"
	ItemMute         = "mute"
	ItemGroupID      = "group_id"
	ItemLane         = "lane"
	ItemLaneHeight   = "lane_height"
	ItemFadeInLen    = "fade_in_len"
	ItemFadeOutLen   = "fade_out_len"
	ItemFadeInShape  = "fade_in_shape"
	ItemFadeOutShape = "fade_out_shape"
	ItemFadeInCurve  = "fade_in_curve"
	ItemFadeOutCurve = "fade_out_curve"
	ItemAutoFadeIn   = "auto_fade_in"
	ItemAutoFadeOut  = "auto_fade_out"
)

// Take property keys.
const (
	TakeVolume      = "volume"
	TakePan         = "pan"
	TakePitch       = "pitch"
	TakePlayRate    = "play_rate"
	TakeStartOffset = "start_offset"
)

// Project setting keys. Tempo settings describe the document's effective
// tempo at time 0 when no tempo markers are stored.
const (
	SettingSampleRate         = "sample_rate"
	SettingSampleRateOverride = "sample_rate_override"
	SettingTempo              = "tempo"
	SettingTimeSigNum         = "timesig_num"
	SettingTimeSigDen         = "timesig_den"

	SettingTitle  = "title"
	SettingAuthor = "author"
	SettingNotes  = "notes"
)

// Document is the abstract project document the core migrates between.
// All operations are synchronous; mutations between BeginUndoBlock and
// EndUndoBlock form one consumer-visible unit of work.
type Document interface {
	// Undo boundary.
	BeginUndoBlock(name string)
	EndUndoBlock(name string)

	// Project settings (opaque key -> scalar/string channel).
	Setting(key string) (float64, error)
	SetSetting(key string, v float64) error
	SettingString(key string) (string, error)
	SetSettingString(key, v string) error

	// Tracks.
	TrackCount() int
	TrackName(track int) (string, error)
	SetTrackName(track int, name string) error
	TrackValue(track int, key string) (float64, error)
	SetTrackValue(track int, key string, v float64) error
	InsertTrackAt(track int) error
	DeleteTrack(track int) error

	// Fixed lanes.
	TrackLanes(track int) (domain.LaneInfo, error)
	ConvertToFixedLanes(track int) error
	EnsureLanes(track, count int) error
	SetLaneName(track, lane int, name string) error
	SetLanePlaying(track, lane int, playing bool) error

	// Track FX.
	TrackFXCount(track int) int
	TrackFXState(track, fx int) (domain.FXState, error)
	AddTrackFXByName(track int, name string) (int, error)
	CopyTrackFX(src Document, srcTrack, dstTrack int) error
	DeleteTrackFX(track, fx int) error
	SetTrackFXEnabled(track, fx int, enabled bool) error
	SetTrackFXOffline(track, fx int, offline bool) error
	SetTrackFXPreset(track, fx int, preset string) error
	SetTrackFXParam(track, fx, param int, v float64) error

	// Track envelopes.
	TrackEnvelopeCount(track int) int
	TrackEnvelopeName(track, env int) (string, error)
	EnsureTrackEnvelope(track int, name string) (int, error)
	TrackEnvelopePoints(track, env int) ([]domain.EnvelopePoint, error)
	SetTrackEnvelopePoints(track, env int, pts []domain.EnvelopePoint) error
	AutomationItems(track, env int) ([]domain.AutomationItem, error)
	AddAutomationItem(track, env int, ai domain.AutomationItem) error

	// Items.
	ItemCount(track int) int
	Item(track, idx int) (ItemID, error)
	ItemTrack(id ItemID) (int, error)
	AddItem(track int) (ItemID, error)
	DeleteItem(id ItemID) error
	ItemValue(id ItemID, key string) (float64, error)
	SetItemValue(id ItemID, key string, v float64) error
	ItemNotes(id ItemID) (string, error)
	SetItemNotes(id ItemID, notes string) error
	CreateCrossfade(track int, start, end float64) error

	// Takes.
	TakeCount(item ItemID) int
	Take(item ItemID, idx int) (TakeID, error)
	AddTake(item ItemID) (TakeID, error)
	DeleteTake(id TakeID) error
	TakeName(id TakeID) (string, error)
	SetTakeName(id TakeID, name string) error
	TakeValue(id TakeID, key string) (float64, error)
	SetTakeValue(id TakeID, key string, v float64) error
	ActiveTake(item ItemID) (int, error)
	SetActiveTake(item ItemID, idx int) error

	// Take content.
	TakeType(id TakeID) (domain.TakeType, error)
	SetTakeType(id TakeID, t domain.TakeType) error
	TakeMIDI(id TakeID) (*domain.MIDIContent, error)
	SetTakeMIDI(id TakeID, midi *domain.MIDIContent) error
	TakeSource(id TakeID) (string, error)
	SetTakeSource(id TakeID, src string) error

	// Take FX.
	TakeFXCount(id TakeID) int
	TakeFXState(id TakeID, fx int) (domain.FXState, error)
	AddTakeFXByName(id TakeID, name string) (int, error)
	CopyTakeFX(src Document, srcTake, dstTake TakeID) error
	SetTakeFXEnabled(id TakeID, fx int, enabled bool) error
	SetTakeFXOffline(id TakeID, fx int, offline bool) error
	SetTakeFXPreset(id TakeID, fx int, preset string) error
	SetTakeFXParam(id TakeID, fx, param int, v float64) error

	// Take envelopes (no automation-item nesting).
	TakeEnvelopeCount(id TakeID) int
	TakeEnvelopeName(id TakeID, env int) (string, error)
	EnsureTakeEnvelope(id TakeID, name string) (int, error)
	TakeEnvelopePoints(id TakeID, env int) ([]domain.EnvelopePoint, error)
	SetTakeEnvelopePoints(id TakeID, env int, pts []domain.EnvelopePoint) error

	// Stretch markers. AddStretchMarker returns the authoritative marker
	// index assigned by the document; slope is applied to that handle in
	// a second pass.
	StretchMarkerCount(id TakeID) int
	StretchMarker(id TakeID, idx int) (domain.StretchMarker, error)
	AddStretchMarker(id TakeID, position, sourcePosition float64) (int, error)
	SetStretchMarkerSlope(id TakeID, idx int, slope float64) error
	ClearStretchMarkers(id TakeID) error

	// Take markers.
	TakeMarkerCount(id TakeID) int
	TakeMarker(id TakeID, idx int) (domain.TakeMarker, error)
	AddTakeMarker(id TakeID, m domain.TakeMarker) error
	ClearTakeMarkers(id TakeID) error

	// Project markers/regions.
	MarkerCount() int
	Marker(idx int) (domain.Marker, error)
	AddMarker(m domain.Marker) error
	DeleteMarker(idx int) error

	// Tempo markers.
	TempoMarkerCount() int
	TempoMarker(idx int) (domain.TempoMarker, error)
	SetTempoMarker(idx int, m domain.TempoMarker) error
	AddTempoMarker(m domain.TempoMarker) error
	DeleteTempoMarker(idx int) error
}
