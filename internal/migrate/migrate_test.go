package migrate

import (
	"testing"

	"trackport/internal/config"
	"trackport/internal/docstore"
	"trackport/internal/docstore/memdoc"
	"trackport/internal/domain"
	"trackport/internal/reader"
)

// fixtureSource builds a small but fully populated source document:
// two tracks, two items, takes with MIDI and audio content, markers,
// and a tempo map.
func fixtureSource(t *testing.T) *memdoc.Document {
	t.Helper()
	d := memdoc.New()

	d.SetSetting(docstore.SettingSampleRate, 48000)
	d.SetSettingString(docstore.SettingTitle, "Session A")
	d.AddTempoMarker(domain.TempoMarker{Time: 0, BPM: 100, TimeSigNum: 4, TimeSigDen: 4})
	d.AddMarker(domain.Marker{Position: 4, Name: "verse", GUID: "g-1"})

	for i, name := range []string{"Drums", "Bass"} {
		if err := d.InsertTrackAt(i); err != nil {
			t.Fatal(err)
		}
		d.SetTrackName(i, name)
	}
	d.SetTrackValue(0, docstore.TrackVolume, 0.9)
	at, _ := d.AddTrackFXByName(0, "ReaComp")
	d.SetTrackFXPreset(0, at, "drums")

	drumItem, _ := d.AddItem(0)
	d.SetItemValue(drumItem, docstore.ItemPosition, 0)
	d.SetItemValue(drumItem, docstore.ItemLength, 8)
	bassItem, _ := d.AddItem(1)
	d.SetItemValue(bassItem, docstore.ItemPosition, 2)
	d.SetItemValue(bassItem, docstore.ItemLength, 4)

	midiTake, _ := d.AddTake(drumItem)
	d.SetTakeName(midiTake, "groove")
	d.SetTakeType(midiTake, domain.TakeTypeMIDI)
	d.SetTakeMIDI(midiTake, &domain.MIDIContent{Events: []byte{1, 2, 3}, NoteCount: 5})
	d.AddStretchMarker(midiTake, 1, 1)

	audioTake, _ := d.AddTake(bassItem)
	d.SetTakeName(audioTake, "di")
	d.SetTakeSource(audioTake, "bass_di.wav")

	return d
}

func TestRunMigratesIntoEmptyDestination(t *testing.T) {
	src := fixtureSource(t)
	dst := memdoc.New()

	res, err := Run(src, dst, config.Default(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if skips := res.AllSkips(); len(skips) != 0 {
		t.Fatalf("unexpected skips: %v", skips)
	}
	if len(res.Plan.ToCreate) != 2 {
		t.Fatalf("ToCreate = %v, want both tracks", res.Plan.ToCreate)
	}

	// The destination must round-trip to an equivalent snapshot.
	got, err := reader.Read(dst)
	if err != nil {
		t.Fatalf("reading destination failed: %v", err)
	}
	if got.Stats.Tracks != 2 || got.Stats.Items != 2 || got.Stats.Takes != 2 {
		t.Fatalf("destination stats = %+v", got.Stats)
	}
	if got.Stats.MIDINotes != 5 {
		t.Fatalf("MIDINotes = %d, want 5", got.Stats.MIDINotes)
	}
	if got.Info.Title != "Session A" || got.Info.SampleRate != 48000 {
		t.Fatalf("info = %+v", got.Info)
	}
	if len(got.Tempo) != 1 || got.Tempo[0].BPM != 100 {
		t.Fatalf("tempo = %+v", got.Tempo)
	}
	if len(got.Markers) != 1 || got.Markers[0].GUID != "g-1" {
		t.Fatalf("markers = %+v", got.Markers)
	}

	name, _ := dst.TrackName(0)
	if name != "Drums" {
		t.Fatalf("track 0 = %q, want Drums", name)
	}
	if dst.TrackFXCount(0) != 1 {
		t.Fatalf("track fx count = %d, want 1", dst.TrackFXCount(0))
	}
}

func TestRunMergesByName(t *testing.T) {
	src := fixtureSource(t)
	dst := memdoc.New()
	// Destination carries the same tracks in reverse order.
	dst.InsertTrackAt(0)
	dst.SetTrackName(0, "Bass")
	dst.InsertTrackAt(1)
	dst.SetTrackName(1, "Drums")

	res, err := Run(src, dst, config.Default(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Plan.ToCreate) != 0 {
		t.Fatalf("ToCreate = %v, want none", res.Plan.ToCreate)
	}
	if dst.TrackCount() != 2 {
		t.Fatalf("TrackCount = %d, want 2", dst.TrackCount())
	}
	// Drum content landed on the matched destination track, not index 0.
	if dst.ItemCount(1) != 1 {
		t.Fatalf("drum track items = %d, want 1", dst.ItemCount(1))
	}
	vol, _ := dst.TrackValue(1, docstore.TrackVolume)
	if vol != 0.9 {
		t.Fatalf("merged drums volume = %g, want 0.9", vol)
	}
}

func TestRunDryRunDoesNotMutate(t *testing.T) {
	src := fixtureSource(t)
	dst := memdoc.New()

	res, err := Run(src, dst, config.Default(), Options{DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Plan == nil || res.Snapshot == nil {
		t.Fatal("dry run must still produce snapshot and plan")
	}
	if dst.TrackCount() != 0 || dst.MarkerCount() != 0 || dst.TempoMarkerCount() != 0 {
		t.Fatal("dry run mutated destination")
	}
	if res.Tracks != nil {
		t.Fatal("dry run produced writer results")
	}
}

func TestRunClearDestination(t *testing.T) {
	src := fixtureSource(t)
	dst := memdoc.New()
	dst.InsertTrackAt(0)
	dst.SetTrackName(0, "Stale")
	dst.AddMarker(domain.Marker{Position: 0, Name: "stale"})

	_, err := Run(src, dst, config.Default(), Options{ClearDestination: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if dst.TrackCount() != 2 {
		t.Fatalf("TrackCount = %d, want 2", dst.TrackCount())
	}
	for i := 0; i < dst.TrackCount(); i++ {
		name, _ := dst.TrackName(i)
		if name == "Stale" {
			t.Fatal("stale track survived clear")
		}
	}
	if dst.MarkerCount() != 1 {
		t.Fatalf("MarkerCount = %d, want 1", dst.MarkerCount())
	}
	m, _ := dst.Marker(0)
	if m.Name != "verse" {
		t.Fatalf("marker = %+v", m)
	}
}

func TestRunClearDestinationPermutedNames(t *testing.T) {
	src := fixtureSource(t)
	dst := memdoc.New()
	// Same names as the source in reverse order. The replace deletes
	// these tracks, so content must route by source order, not by the
	// pre-clear name matches.
	dst.InsertTrackAt(0)
	dst.SetTrackName(0, "Bass")
	dst.InsertTrackAt(1)
	dst.SetTrackName(1, "Drums")

	res, err := Run(src, dst, config.Default(), Options{ClearDestination: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if skips := res.AllSkips(); len(skips) != 0 {
		t.Fatalf("unexpected skips: %v", skips)
	}

	for i, want := range []string{"Drums", "Bass"} {
		name, _ := dst.TrackName(i)
		if name != want {
			t.Fatalf("track %d = %q, want %q", i, name, want)
		}
		if dst.ItemCount(i) != 1 {
			t.Fatalf("track %d items = %d, want 1", i, dst.ItemCount(i))
		}
	}

	// The drum take's MIDI content followed its item onto track 0.
	itemID, err := dst.Item(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	takeID, err := dst.Take(itemID, 0)
	if err != nil {
		t.Fatal(err)
	}
	midi, err := dst.TakeMIDI(takeID)
	if err != nil {
		t.Fatalf("TakeMIDI failed: %v", err)
	}
	if midi.NoteCount != 5 {
		t.Fatalf("NoteCount = %d, want 5", midi.NoteCount)
	}
}

func TestRunNilDocuments(t *testing.T) {
	if _, err := Run(nil, memdoc.New(), config.Default(), Options{}); err == nil {
		t.Fatal("nil source must error")
	}
	if _, err := Run(memdoc.New(), nil, config.Default(), Options{}); err == nil {
		t.Fatal("nil destination must error")
	}
}

func TestRunFallbackCreateOffDropsUnmatched(t *testing.T) {
	src := fixtureSource(t)
	dst := memdoc.New()
	dst.InsertTrackAt(0)
	dst.SetTrackName(0, "Drums")

	cfg := config.Default()
	cfg.Matching.IndexFallback = false
	cfg.Matching.FallbackCreate = false

	res, err := Run(src, dst, cfg, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// Bass has no destination and creation is off: track count stays at
	// one and the bass item surfaces as a skip rather than an error.
	if dst.TrackCount() != 1 {
		t.Fatalf("TrackCount = %d, want 1", dst.TrackCount())
	}
	if len(res.AllSkips()) == 0 {
		t.Fatal("dropped source content should surface as skips")
	}
}
