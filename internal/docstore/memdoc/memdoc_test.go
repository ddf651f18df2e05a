package memdoc

import (
	"errors"
	"testing"

	"trackport/internal/docstore"
	"trackport/internal/domain"
)

func TestTrackInsertDelete(t *testing.T) {
	d := New()
	for i, name := range []string{"A", "B", "C"} {
		if err := d.InsertTrackAt(i); err != nil {
			t.Fatalf("InsertTrackAt(%d) failed: %v", i, err)
		}
		if err := d.SetTrackName(i, name); err != nil {
			t.Fatalf("SetTrackName failed: %v", err)
		}
	}

	if err := d.InsertTrackAt(1); err != nil {
		t.Fatalf("InsertTrackAt(1) failed: %v", err)
	}
	if d.TrackCount() != 4 {
		t.Fatalf("TrackCount() = %d, want 4", d.TrackCount())
	}
	name, err := d.TrackName(2)
	if err != nil || name != "B" {
		t.Fatalf("TrackName(2) = %q, %v, want B", name, err)
	}

	if err := d.DeleteTrack(1); err != nil {
		t.Fatalf("DeleteTrack failed: %v", err)
	}
	name, _ = d.TrackName(1)
	if name != "B" {
		t.Fatalf("TrackName(1) after delete = %q, want B", name)
	}
}

func TestDeleteTrackDropsItemsAndTakes(t *testing.T) {
	d := New()
	if err := d.InsertTrackAt(0); err != nil {
		t.Fatal(err)
	}
	itemID, err := d.AddItem(0)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	takeID, err := d.AddTake(itemID)
	if err != nil {
		t.Fatalf("AddTake failed: %v", err)
	}

	if err := d.DeleteTrack(0); err != nil {
		t.Fatalf("DeleteTrack failed: %v", err)
	}
	if _, err := d.ItemValue(itemID, docstore.ItemPosition); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("ItemValue after track delete: err = %v, want ErrNotFound", err)
	}
	if _, err := d.TakeName(takeID); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("TakeName after track delete: err = %v, want ErrNotFound", err)
	}
}

func TestItemHandlesSurviveReordering(t *testing.T) {
	d := New()
	if err := d.InsertTrackAt(0); err != nil {
		t.Fatal(err)
	}
	first, _ := d.AddItem(0)
	second, _ := d.AddItem(0)
	if err := d.SetItemValue(second, docstore.ItemPosition, 10); err != nil {
		t.Fatal(err)
	}

	// Deleting the first item shifts positional indices but the handle
	// of the second item keeps resolving.
	if err := d.DeleteItem(first); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	pos, err := d.ItemValue(second, docstore.ItemPosition)
	if err != nil {
		t.Fatalf("ItemValue failed: %v", err)
	}
	if pos != 10 {
		t.Fatalf("ItemValue = %g, want 10", pos)
	}
	trackIdx, err := d.ItemTrack(second)
	if err != nil || trackIdx != 0 {
		t.Fatalf("ItemTrack = %d, %v, want 0", trackIdx, err)
	}
}

func TestSetTakeMIDIRequiresMIDIType(t *testing.T) {
	d := New()
	d.InsertTrackAt(0)
	itemID, _ := d.AddItem(0)
	takeID, _ := d.AddTake(itemID)

	midi := &domain.MIDIContent{Events: []byte{0x90, 0x3c, 0x64}, NoteCount: 1}
	if err := d.SetTakeMIDI(takeID, midi); err == nil {
		t.Fatal("SetTakeMIDI on an audio take should fail")
	}

	if err := d.SetTakeType(takeID, domain.TakeTypeMIDI); err != nil {
		t.Fatal(err)
	}
	if err := d.SetTakeMIDI(takeID, midi); err != nil {
		t.Fatalf("SetTakeMIDI failed: %v", err)
	}
	got, err := d.TakeMIDI(takeID)
	if err != nil || got.NoteCount != 1 {
		t.Fatalf("TakeMIDI = %+v, %v", got, err)
	}
}

func TestActiveTakeClampedOnDelete(t *testing.T) {
	d := New()
	d.InsertTrackAt(0)
	itemID, _ := d.AddItem(0)
	d.AddTake(itemID)
	b, _ := d.AddTake(itemID)

	if err := d.SetActiveTake(itemID, 1); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteTake(b); err != nil {
		t.Fatal(err)
	}
	active, err := d.ActiveTake(itemID)
	if err != nil {
		t.Fatal(err)
	}
	if active != 0 {
		t.Fatalf("ActiveTake = %d, want 0", active)
	}
}

func TestAddStretchMarkerReturnsSortedIndex(t *testing.T) {
	d := New()
	d.InsertTrackAt(0)
	itemID, _ := d.AddItem(0)
	takeID, _ := d.AddTake(itemID)

	if _, err := d.AddStretchMarker(takeID, 2.0, 2.0); err != nil {
		t.Fatal(err)
	}
	idx, err := d.AddStretchMarker(takeID, 1.0, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 0 {
		t.Fatalf("AddStretchMarker returned %d, want 0 for earlier position", idx)
	}
	if err := d.SetStretchMarkerSlope(takeID, idx, 0.5); err != nil {
		t.Fatal(err)
	}
	m, err := d.StretchMarker(takeID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.Position != 1.0 || m.Slope != 0.5 {
		t.Fatalf("StretchMarker(0) = %+v, want position 1 slope 0.5", m)
	}
}

func TestEnsureLanesRequiresFixedMode(t *testing.T) {
	d := New()
	d.InsertTrackAt(0)

	if err := d.EnsureLanes(0, 3); err == nil {
		t.Fatal("EnsureLanes should fail before ConvertToFixedLanes")
	}
	if err := d.ConvertToFixedLanes(0); err != nil {
		t.Fatal(err)
	}
	if err := d.EnsureLanes(0, 3); err != nil {
		t.Fatalf("EnsureLanes failed: %v", err)
	}
	// Never shrinks.
	if err := d.EnsureLanes(0, 1); err != nil {
		t.Fatal(err)
	}
	lanes, err := d.TrackLanes(0)
	if err != nil {
		t.Fatal(err)
	}
	if lanes.Count != 3 {
		t.Fatalf("lane count = %d, want 3", lanes.Count)
	}
}

func TestCreateCrossfadeSetsFades(t *testing.T) {
	d := New()
	d.InsertTrackAt(0)
	a, _ := d.AddItem(0)
	b, _ := d.AddItem(0)
	d.SetItemValue(a, docstore.ItemPosition, 0)
	d.SetItemValue(a, docstore.ItemLength, 5)
	d.SetItemValue(b, docstore.ItemPosition, 4)
	d.SetItemValue(b, docstore.ItemLength, 5)

	if err := d.CreateCrossfade(0, 4, 5); err != nil {
		t.Fatalf("CreateCrossfade failed: %v", err)
	}
	fadeOut, _ := d.ItemValue(a, docstore.ItemFadeOutLen)
	fadeIn, _ := d.ItemValue(b, docstore.ItemFadeInLen)
	if fadeOut != 1 {
		t.Fatalf("fade out = %g, want 1", fadeOut)
	}
	if fadeIn != 1 {
		t.Fatalf("fade in = %g, want 1", fadeIn)
	}
}

func TestEnsureTrackEnvelopeIdempotent(t *testing.T) {
	d := New()
	d.InsertTrackAt(0)

	first, err := d.EnsureTrackEnvelope(0, "Volume")
	if err != nil {
		t.Fatal(err)
	}
	again, err := d.EnsureTrackEnvelope(0, "Volume")
	if err != nil {
		t.Fatal(err)
	}
	if first != again {
		t.Fatalf("EnsureTrackEnvelope returned %d then %d", first, again)
	}
	if d.TrackEnvelopeCount(0) != 1 {
		t.Fatalf("envelope count = %d, want 1", d.TrackEnvelopeCount(0))
	}
}

func TestCopyTrackFXClonesChain(t *testing.T) {
	src := New()
	src.InsertTrackAt(0)
	at, _ := src.AddTrackFXByName(0, "ReaComp")
	src.SetTrackFXPreset(0, at, "drums")
	src.SetTrackFXParam(0, at, 2, 0.75)

	dst := New()
	dst.InsertTrackAt(0)
	if err := dst.CopyTrackFX(src, 0, 0); err != nil {
		t.Fatalf("CopyTrackFX failed: %v", err)
	}
	st, err := dst.TrackFXState(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if st.Name != "ReaComp" || st.Preset != "drums" {
		t.Fatalf("cloned state = %+v", st)
	}
	if len(st.Params) != 3 || st.Params[2] != 0.75 {
		t.Fatalf("cloned params = %v", st.Params)
	}

	// Mutating the clone must not leak back into the source.
	dst.SetTrackFXParam(0, 0, 2, 0.1)
	orig, _ := src.TrackFXState(0, at)
	if orig.Params[2] != 0.75 {
		t.Fatalf("source param mutated to %g", orig.Params[2])
	}
}

func TestSetTempoMarkerMaterializesTimeZero(t *testing.T) {
	d := New()
	m := domain.TempoMarker{Time: 0, BPM: 98, TimeSigNum: 3, TimeSigDen: 4}
	if err := d.SetTempoMarker(0, m); err != nil {
		t.Fatalf("SetTempoMarker on empty map failed: %v", err)
	}
	if d.TempoMarkerCount() != 1 {
		t.Fatalf("TempoMarkerCount = %d, want 1", d.TempoMarkerCount())
	}
	got, _ := d.TempoMarker(0)
	if got.BPM != 98 {
		t.Fatalf("BPM = %g, want 98", got.BPM)
	}

	if err := d.SetTempoMarker(3, m); err == nil {
		t.Fatal("SetTempoMarker(3) on one-marker map should fail")
	}
}

func TestUndoBlockNesting(t *testing.T) {
	d := New()
	d.BeginUndoBlock("outer")
	d.BeginUndoBlock("inner")
	d.EndUndoBlock("inner")
	if !d.InUndoBlock() {
		t.Fatal("outer block should still be open")
	}
	d.EndUndoBlock("outer")
	if d.InUndoBlock() {
		t.Fatal("all blocks closed, InUndoBlock should be false")
	}
}
