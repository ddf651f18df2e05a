package writer

import (
	"fmt"

	"trackport/internal/config"
	"trackport/internal/docstore"
	"trackport/internal/domain"
	"trackport/internal/match"
)

// WriteTakes writes the snapshot's takes onto the destination, grouped
// by parent item. With clearing enabled, pre-existing destination takes
// (including default placeholders) are deleted and source takes are
// recreated in source take-index order; otherwise existing takes are
// matched with the same strategy chain as tracks and only unmatched
// takes are created. The take originally flagged active is reasserted
// once all of an item's takes exist.
func WriteTakes(dst docstore.Document, snap *domain.Snapshot, cfg config.TakesConfig, opts Options, strat match.Strategy) *Result {
	res := &Result{}
	if !cfg.Write {
		return res
	}

	groups, order := groupTakes(snap.Takes)
	for _, itemKey := range order {
		writeItemTakes(dst, itemKey, groups[itemKey], cfg, opts, strat, res)
	}
	return res
}

func groupTakes(takes []domain.Take) (map[domain.ItemKey][]domain.Take, []domain.ItemKey) {
	groups := make(map[domain.ItemKey][]domain.Take)
	var order []domain.ItemKey
	for _, tk := range takes {
		k := tk.Key.ItemKey()
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], tk)
	}
	return groups, order
}

func writeItemTakes(dst docstore.Document, itemKey domain.ItemKey, takes []domain.Take, cfg config.TakesConfig, opts Options, strat match.Strategy, res *Result) {
	itemID, err := opts.resolveItem(dst, itemKey)
	if err != nil {
		res.skip(itemKey.String(), err.Error())
		return
	}

	// Consistency check: an identity-mapped item must live on the track
	// the merge plan says it does. Drift is treated as a resolution miss.
	if _, mapped := opts.ItemMap[itemKey]; mapped {
		actual, err := dst.ItemTrack(itemID)
		if err != nil {
			res.skip(itemKey.String(), err.Error())
			return
		}
		if actual != opts.DestTrack(itemKey.Track) {
			res.skip(itemKey.String(), "destination track mismatch")
			return
		}
	}

	if cfg.ClearExisting {
		for dst.TakeCount(itemID) > 0 {
			id, err := dst.Take(itemID, 0)
			if err != nil {
				res.skip(itemKey.String(), err.Error())
				return
			}
			if err := dst.DeleteTake(id); err != nil {
				res.skip(itemKey.String(), err.Error())
				return
			}
		}
	}

	var destNames []string
	var mapping map[int]int
	if !cfg.ClearExisting {
		for i := 0; i < dst.TakeCount(itemID); i++ {
			id, err := dst.Take(itemID, i)
			if err != nil {
				res.skip(itemKey.String(), err.Error())
				return
			}
			name, err := dst.TakeName(id)
			if err != nil {
				res.skip(itemKey.String(), err.Error())
				return
			}
			destNames = append(destNames, name)
		}
		srcNames := make([]string, len(takes))
		for i, tk := range takes {
			srcNames[i] = tk.Name
		}
		mapping = match.Takes(srcNames, destNames, strat)
	}

	activeDest := -1
	for i, tk := range takes {
		var takeID docstore.TakeID
		var destIdx int
		var err error
		if destIdx2, ok := mapping[i]; ok {
			destIdx = destIdx2
			takeID, err = dst.Take(itemID, destIdx)
		} else {
			takeID, err = dst.AddTake(itemID)
			destIdx = dst.TakeCount(itemID) - 1
		}
		if err != nil {
			res.skip(tk.Key.String(), err.Error())
			continue
		}
		if !writeTake(dst, takeID, tk, cfg, opts, res) {
			continue
		}
		if tk.Active {
			activeDest = destIdx
		}
		res.Written++
	}

	if activeDest >= 0 {
		if err := dst.SetActiveTake(itemID, activeDest); err != nil {
			res.skip(itemKey.String(), fmt.Sprintf("active take: %v", err))
		}
	}
}

func writeTake(dst docstore.Document, id docstore.TakeID, tk domain.Take, cfg config.TakesConfig, opts Options, res *Result) bool {
	key := tk.Key.String()
	if err := dst.SetTakeName(id, tk.Name); err != nil {
		res.skip(key, err.Error())
		return false
	}
	if err := docstore.WriteTakeProps(dst, id, tk.Props); err != nil {
		res.skip(key, fmt.Sprintf("properties: %v", err))
		return false
	}

	switch tk.Type {
	case domain.TakeTypeMIDI:
		// The source type must be assigned before the event write so the
		// take is recognized as MIDI.
		if err := dst.SetTakeType(id, domain.TakeTypeMIDI); err != nil {
			res.skip(key, err.Error())
			return false
		}
		if tk.MIDI != nil {
			if err := dst.SetTakeMIDI(id, tk.MIDI); err != nil {
				res.skip(key, fmt.Sprintf("midi: %v", err))
				return false
			}
		}
	default:
		if err := dst.SetTakeType(id, domain.TakeTypeAudio); err != nil {
			res.skip(key, err.Error())
			return false
		}
		if tk.Source != "" {
			if err := dst.SetTakeSource(id, tk.Source); err != nil {
				res.skip(key, fmt.Sprintf("source: %v", err))
				return false
			}
		}
	}

	if cfg.WriteFX {
		writeTakeFX(dst, id, tk, opts, res)
	}
	if cfg.WriteEnvelopes {
		writeTakeEnvelopes(dst, id, tk.Envelopes, key, res)
	}
	return true
}

// writeTakeFX prefers direct cloning from the matching take in the live
// source document; locating it needs both the track and item remapped
// back through the source indices. Without a source handle the chain is
// reconstructed by name.
func writeTakeFX(dst docstore.Document, id docstore.TakeID, tk domain.Take, opts Options, res *Result) {
	if len(tk.FX) == 0 {
		return
	}

	if opts.SourceDoc != nil {
		if srcTake, err := sourceTake(opts.SourceDoc, tk.Key); err == nil {
			if err := dst.CopyTakeFX(opts.SourceDoc, srcTake, id); err == nil {
				return
			}
		}
		// Clone unavailable; reconstruct below.
	}

	for _, fx := range tk.FX {
		key := fmt.Sprintf("%s fx %q", tk.Key, fx.Name)
		at, err := dst.AddTakeFXByName(id, fx.Name)
		if err != nil {
			res.skip(key, err.Error())
			continue
		}
		if fx.Preset != "" {
			if err := dst.SetTakeFXPreset(id, at, fx.Preset); err != nil {
				res.skip(key, fmt.Sprintf("preset: %v", err))
			}
		}
		for p, v := range fx.Params {
			if err := dst.SetTakeFXParam(id, at, p, v); err != nil {
				res.skip(key, fmt.Sprintf("param %d: %v", p, err))
				break
			}
		}
		if err := dst.SetTakeFXEnabled(id, at, fx.Enabled); err != nil {
			res.skip(key, err.Error())
		}
		if err := dst.SetTakeFXOffline(id, at, fx.Offline); err != nil {
			res.skip(key, err.Error())
		}
	}
}

func sourceTake(src docstore.Document, key domain.TakeKey) (docstore.TakeID, error) {
	itemID, err := src.Item(key.Track, key.Item)
	if err != nil {
		return 0, err
	}
	return src.Take(itemID, key.Take)
}
