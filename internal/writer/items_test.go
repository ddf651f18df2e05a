package writer

import (
	"math"
	"testing"

	"trackport/internal/config"
	"trackport/internal/docstore"
	"trackport/internal/docstore/memdoc"
	"trackport/internal/domain"
)

func defaultItemsConfig() config.ItemsConfig {
	return config.Default().Items
}

func TestWriteItemsCreatesAndMaps(t *testing.T) {
	snap := &domain.Snapshot{
		Items: []domain.Item{
			{Key: domain.ItemKey{Track: 0, Item: 0}, Props: domain.ItemProps{Position: 1, Length: 4}, Notes: "intro"},
			{Key: domain.ItemKey{Track: 0, Item: 1}, Props: domain.ItemProps{Position: 6, Length: 2}},
		},
	}
	dst := memdoc.New()
	dst.InsertTrackAt(0)

	res, itemMap := WriteItems(dst, snap, defaultItemsConfig(), Options{})
	if !res.OK() {
		t.Fatalf("unexpected skips: %v", res.Skips)
	}
	if res.Written != 2 {
		t.Fatalf("Written = %d, want 2", res.Written)
	}
	if len(itemMap) != 2 {
		t.Fatalf("itemMap size = %d, want 2", len(itemMap))
	}

	id := itemMap[domain.ItemKey{Track: 0, Item: 0}]
	pos, _ := dst.ItemValue(id, docstore.ItemPosition)
	if pos != 1 {
		t.Fatalf("position = %g, want 1", pos)
	}
	notes, _ := dst.ItemNotes(id)
	if notes != "intro" {
		t.Fatalf("notes = %q, want intro", notes)
	}
}

func TestWriteItemsRemapsTrack(t *testing.T) {
	snap := &domain.Snapshot{
		Items: []domain.Item{{Key: domain.ItemKey{Track: 0, Item: 0}, Props: domain.ItemProps{Length: 1}}},
	}
	dst := memdoc.New()
	dst.InsertTrackAt(0)
	dst.InsertTrackAt(1)

	_, itemMap := WriteItems(dst, snap, defaultItemsConfig(), Options{TrackMap: map[int]int{0: 1}})
	id := itemMap[domain.ItemKey{Track: 0, Item: 0}]
	trackIdx, err := dst.ItemTrack(id)
	if err != nil {
		t.Fatal(err)
	}
	if trackIdx != 1 {
		t.Fatalf("item landed on track %d, want 1", trackIdx)
	}
}

func TestWriteItemsMissingTrackSkips(t *testing.T) {
	snap := &domain.Snapshot{
		Items: []domain.Item{{Key: domain.ItemKey{Track: 5, Item: 0}}},
	}
	dst := memdoc.New()

	res, itemMap := WriteItems(dst, snap, defaultItemsConfig(), Options{})
	if len(itemMap) != 0 || res.Written != 0 {
		t.Fatalf("skipped item was written: map=%v written=%d", itemMap, res.Written)
	}
	if len(res.Skips) != 1 || res.Skips[0].Reason != "destination track missing" {
		t.Fatalf("Skips = %v", res.Skips)
	}
}

func TestWriteItemsClearExistingOncePerTrack(t *testing.T) {
	snap := &domain.Snapshot{
		Items: []domain.Item{
			{Key: domain.ItemKey{Track: 0, Item: 0}, Props: domain.ItemProps{Position: 0, Length: 1}},
			{Key: domain.ItemKey{Track: 0, Item: 1}, Props: domain.ItemProps{Position: 2, Length: 1}},
		},
	}
	dst := memdoc.New()
	dst.InsertTrackAt(0)
	dst.AddItem(0)
	dst.AddItem(0)

	cfg := defaultItemsConfig()
	cfg.ClearExisting = true
	res, _ := WriteItems(dst, snap, cfg, Options{})
	if !res.OK() {
		t.Fatalf("unexpected skips: %v", res.Skips)
	}
	// Both stale items cleared, both source items present; the clear must
	// not wipe items written earlier in the same run.
	if dst.ItemCount(0) != 2 {
		t.Fatalf("ItemCount = %d, want 2", dst.ItemCount(0))
	}
}

func crossfadeSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Items: []domain.Item{
			{Key: domain.ItemKey{Track: 0, Item: 0}, Props: domain.ItemProps{Position: 0, Length: 5, FadeOutShape: 2}},
			{Key: domain.ItemKey{Track: 0, Item: 1}, Props: domain.ItemProps{Position: 4, Length: 5, FadeInShape: 3}},
		},
		Crossfades: []domain.Crossfade{{
			Track: 0, Lane: 0, Item1: 0, Item2: 1,
			Start: 4, End: 5, Length: 1,
			FadeOutShape: 2, FadeInShape: 3,
		}},
	}
}

func TestWriteItemsAppliesCrossfades(t *testing.T) {
	snap := crossfadeSnapshot()
	dst := memdoc.New()
	dst.InsertTrackAt(0)

	res, itemMap := WriteItems(dst, snap, defaultItemsConfig(), Options{})
	if !res.OK() {
		t.Fatalf("unexpected skips: %v", res.Skips)
	}
	// Items plus the crossfade itself.
	if res.Written != 3 {
		t.Fatalf("Written = %d, want 3", res.Written)
	}

	id1 := itemMap[domain.ItemKey{Track: 0, Item: 0}]
	id2 := itemMap[domain.ItemKey{Track: 0, Item: 1}]

	// Overlap already matches the recorded length, so the first item's
	// length must be untouched.
	len1, _ := dst.ItemValue(id1, docstore.ItemLength)
	if len1 != 5 {
		t.Fatalf("item1 length = %g, want 5", len1)
	}
	fadeOut, _ := dst.ItemValue(id1, docstore.ItemFadeOutLen)
	fadeIn, _ := dst.ItemValue(id2, docstore.ItemFadeInLen)
	if math.Abs(fadeOut-1) > 1e-9 || math.Abs(fadeIn-1) > 1e-9 {
		t.Fatalf("fades = %g/%g, want 1/1", fadeOut, fadeIn)
	}
	outShape, _ := dst.ItemValue(id1, docstore.ItemFadeOutShape)
	inShape, _ := dst.ItemValue(id2, docstore.ItemFadeInShape)
	if outShape != 2 || inShape != 3 {
		t.Fatalf("shapes = %g/%g, want 2/3", outShape, inShape)
	}
}

func TestApplyCrossfadesAdjustsDriftedLength(t *testing.T) {
	snap := crossfadeSnapshot()
	// The first item ends short of the recorded overlap by more than the
	// tolerance, forcing a length adjustment.
	snap.Items[0].Props.Length = 4.5

	dst := memdoc.New()
	dst.InsertTrackAt(0)

	res, itemMap := WriteItems(dst, snap, defaultItemsConfig(), Options{})
	if !res.OK() {
		t.Fatalf("unexpected skips: %v", res.Skips)
	}
	id1 := itemMap[domain.ItemKey{Track: 0, Item: 0}]
	len1, _ := dst.ItemValue(id1, docstore.ItemLength)
	// pos2 + cf.Length - pos1 = 4 + 1 - 0.
	if math.Abs(len1-5) > 1e-9 {
		t.Fatalf("adjusted length = %g, want 5", len1)
	}
}

func TestApplyCrossfadesWithinToleranceLeavesLength(t *testing.T) {
	snap := crossfadeSnapshot()
	snap.Items[0].Props.Length = 5.0005

	dst := memdoc.New()
	dst.InsertTrackAt(0)

	_, itemMap := WriteItems(dst, snap, defaultItemsConfig(), Options{})
	id1 := itemMap[domain.ItemKey{Track: 0, Item: 0}]
	len1, _ := dst.ItemValue(id1, docstore.ItemLength)
	if len1 != 5.0005 {
		t.Fatalf("length adjusted inside tolerance: %g", len1)
	}
}

func TestWriteItemsCrossfadesDisabled(t *testing.T) {
	snap := crossfadeSnapshot()
	dst := memdoc.New()
	dst.InsertTrackAt(0)

	cfg := defaultItemsConfig()
	cfg.WriteCrossfades = false
	_, itemMap := WriteItems(dst, snap, cfg, Options{})

	id1 := itemMap[domain.ItemKey{Track: 0, Item: 0}]
	fadeOut, _ := dst.ItemValue(id1, docstore.ItemFadeOutLen)
	if fadeOut != 0 {
		t.Fatalf("crossfade applied with toggle off: fade out %g", fadeOut)
	}
}
