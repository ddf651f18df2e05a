package writer

import (
	"fmt"
	"math"

	"trackport/internal/config"
	"trackport/internal/docstore"
	"trackport/internal/domain"
)

// OverlapTolerance is the maximum drift between a recorded crossfade
// overlap and the live one before the first item's length is adjusted.
const OverlapTolerance = 0.001

// WriteItems creates destination items for every source item and
// returns the item-identity map consumed by every writer below the item
// level. Crossfade reconciliation runs only after all items on all
// tracks exist, because crossfade creation needs both endpoint items
// present at their final positions.
func WriteItems(dst docstore.Document, snap *domain.Snapshot, cfg config.ItemsConfig, opts Options) (*Result, map[domain.ItemKey]docstore.ItemID) {
	res := &Result{}
	itemMap := make(map[domain.ItemKey]docstore.ItemID)
	if !cfg.Write {
		return res, itemMap
	}

	cleared := make(map[int]bool)
	for _, it := range snap.Items {
		destTrack := opts.DestTrack(it.Key.Track)
		if destTrack < 0 || destTrack >= dst.TrackCount() {
			res.skip(it.Key.String(), "destination track missing")
			continue
		}
		if cfg.ClearExisting && !cleared[destTrack] {
			clearTrackItems(dst, destTrack, res)
			cleared[destTrack] = true
		}
		id, err := dst.AddItem(destTrack)
		if err != nil {
			res.skip(it.Key.String(), err.Error())
			continue
		}
		if err := docstore.WriteItemProps(dst, id, it.Props); err != nil {
			res.skip(it.Key.String(), fmt.Sprintf("properties: %v", err))
			continue
		}
		if it.Notes != "" {
			if err := dst.SetItemNotes(id, it.Notes); err != nil {
				res.skip(it.Key.String(), fmt.Sprintf("notes: %v", err))
			}
		}
		itemMap[it.Key] = id
		res.Written++
	}

	if cfg.WriteCrossfades {
		applyCrossfades(dst, snap, itemMap, res)
	}

	return res, itemMap
}

func clearTrackItems(dst docstore.Document, track int, res *Result) {
	for dst.ItemCount(track) > 0 {
		id, err := dst.Item(track, 0)
		if err != nil {
			res.skip(fmt.Sprintf("track %d items", track), err.Error())
			return
		}
		if err := dst.DeleteItem(id); err != nil {
			res.skip(fmt.Sprintf("track %d items", track), err.Error())
			return
		}
	}
}

// applyCrossfades restores each recorded overlap on the destination.
// If the endpoint items' live positions no longer produce the recorded
// overlap length, the first item's length is adjusted so they do; both
// fade shapes are reasserted; then the document's native crossfade
// operation is invoked over the exact overlap range. The pass is
// idempotent: an already-correct pair is within tolerance and its
// length is left alone.
func applyCrossfades(dst docstore.Document, snap *domain.Snapshot, itemMap map[domain.ItemKey]docstore.ItemID, res *Result) {
	for _, cf := range snap.Crossfades {
		key := fmt.Sprintf("crossfade track %d items %d/%d", cf.Track, cf.Item1, cf.Item2)

		id1, ok1 := itemMap[domain.ItemKey{Track: cf.Track, Item: cf.Item1}]
		id2, ok2 := itemMap[domain.ItemKey{Track: cf.Track, Item: cf.Item2}]
		if !ok1 || !ok2 {
			res.skip(key, "endpoint item not created")
			continue
		}

		pos1, err := dst.ItemValue(id1, docstore.ItemPosition)
		if err != nil {
			res.skip(key, err.Error())
			continue
		}
		len1, err := dst.ItemValue(id1, docstore.ItemLength)
		if err != nil {
			res.skip(key, err.Error())
			continue
		}
		pos2, err := dst.ItemValue(id2, docstore.ItemPosition)
		if err != nil {
			res.skip(key, err.Error())
			continue
		}

		overlap := (pos1 + len1) - pos2
		if math.Abs(overlap-cf.Length) > OverlapTolerance {
			if err := dst.SetItemValue(id1, docstore.ItemLength, pos2+cf.Length-pos1); err != nil {
				res.skip(key, fmt.Sprintf("length adjust: %v", err))
				continue
			}
		}

		if err := dst.SetItemValue(id1, docstore.ItemFadeOutShape, cf.FadeOutShape); err != nil {
			res.skip(key, err.Error())
			continue
		}
		if err := dst.SetItemValue(id2, docstore.ItemFadeInShape, cf.FadeInShape); err != nil {
			res.skip(key, err.Error())
			continue
		}

		destTrack, err := dst.ItemTrack(id1)
		if err != nil {
			res.skip(key, err.Error())
			continue
		}
		if err := dst.CreateCrossfade(destTrack, pos2, pos2+cf.Length); err != nil {
			res.skip(key, err.Error())
			continue
		}
		res.Written++
	}
}
