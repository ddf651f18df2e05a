package memdoc

import (
	"fmt"

	"trackport/internal/docstore"
	"trackport/internal/domain"
)

const positionEpsilon = 1e-9

func (d *Document) item(id docstore.ItemID) (*item, error) {
	it, ok := d.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, docstore.ErrNotFound)
	}
	return it, nil
}

func (d *Document) ItemCount(trackIdx int) int {
	tr, err := d.track(trackIdx)
	if err != nil {
		return 0
	}
	return len(tr.items)
}

func (d *Document) Item(trackIdx, idx int) (docstore.ItemID, error) {
	tr, err := d.track(trackIdx)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(tr.items) {
		return 0, fmt.Errorf("track %d item %d: %w", trackIdx, idx, docstore.ErrNotFound)
	}
	return tr.items[idx], nil
}

// ItemTrack returns the index of the track owning the item.
func (d *Document) ItemTrack(id docstore.ItemID) (int, error) {
	it, err := d.item(id)
	if err != nil {
		return 0, err
	}
	for i, tr := range d.tracks {
		if tr == it.owner {
			return i, nil
		}
	}
	return 0, fmt.Errorf("item %d owner: %w", id, docstore.ErrNotFound)
}

func (d *Document) AddItem(trackIdx int) (docstore.ItemID, error) {
	tr, err := d.track(trackIdx)
	if err != nil {
		return 0, err
	}
	id := d.nextItem
	d.nextItem++
	d.items[id] = &item{owner: tr, values: make(map[string]float64)}
	tr.items = append(tr.items, id)
	return id, nil
}

func (d *Document) DeleteItem(id docstore.ItemID) error {
	it, err := d.item(id)
	if err != nil {
		return err
	}
	for i, cur := range it.owner.items {
		if cur == id {
			it.owner.items = append(it.owner.items[:i], it.owner.items[i+1:]...)
			break
		}
	}
	d.deleteItemState(id)
	return nil
}

// deleteItemState drops an item and its takes without touching the
// owning track's item list.
func (d *Document) deleteItemState(id docstore.ItemID) {
	if it, ok := d.items[id]; ok {
		for _, tid := range it.takes {
			delete(d.takes, tid)
		}
	}
	delete(d.items, id)
}

func (d *Document) ItemValue(id docstore.ItemID, key string) (float64, error) {
	it, err := d.item(id)
	if err != nil {
		return 0, err
	}
	return it.values[key], nil
}

func (d *Document) SetItemValue(id docstore.ItemID, key string, v float64) error {
	it, err := d.item(id)
	if err != nil {
		return err
	}
	it.values[key] = v
	return nil
}

func (d *Document) ItemNotes(id docstore.ItemID) (string, error) {
	it, err := d.item(id)
	if err != nil {
		return "", err
	}
	return it.notes, nil
}

func (d *Document) SetItemNotes(id docstore.ItemID, notes string) error {
	it, err := d.item(id)
	if err != nil {
		return err
	}
	it.notes = notes
	return nil
}

// CreateCrossfade generates a crossfade over [start, end] on a track:
// the item ending inside the range gets a fade-out across the overlap,
// the item starting at the range start gets a matching fade-in.
func (d *Document) CreateCrossfade(trackIdx int, start, end float64) error {
	tr, err := d.track(trackIdx)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("invalid crossfade range [%f, %f]", start, end)
	}
	length := end - start
	for _, id := range tr.items {
		it := d.items[id]
		pos := it.values[docstore.ItemPosition]
		itemEnd := pos + it.values[docstore.ItemLength]
		if pos < start-positionEpsilon && itemEnd > start && itemEnd <= end+positionEpsilon {
			it.values[docstore.ItemFadeOutLen] = itemEnd - start
		}
		if pos >= start-positionEpsilon && pos < end && itemEnd > end-positionEpsilon {
			fadeIn := end - pos
			if fadeIn > length {
				fadeIn = length
			}
			it.values[docstore.ItemFadeInLen] = fadeIn
		}
	}
	return nil
}

func (d *Document) take(id docstore.TakeID) (*take, error) {
	tk, ok := d.takes[id]
	if !ok {
		return nil, fmt.Errorf("take %d: %w", id, docstore.ErrNotFound)
	}
	return tk, nil
}

func (d *Document) TakeCount(itemID docstore.ItemID) int {
	it, err := d.item(itemID)
	if err != nil {
		return 0
	}
	return len(it.takes)
}

func (d *Document) Take(itemID docstore.ItemID, idx int) (docstore.TakeID, error) {
	it, err := d.item(itemID)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(it.takes) {
		return 0, fmt.Errorf("item %d take %d: %w", itemID, idx, docstore.ErrNotFound)
	}
	return it.takes[idx], nil
}

func (d *Document) AddTake(itemID docstore.ItemID) (docstore.TakeID, error) {
	it, err := d.item(itemID)
	if err != nil {
		return 0, err
	}
	id := d.nextTake
	d.nextTake++
	d.takes[id] = &take{
		owner:  it,
		values: make(map[string]float64),
		typ:    domain.TakeTypeAudio,
	}
	it.takes = append(it.takes, id)
	return id, nil
}

func (d *Document) DeleteTake(id docstore.TakeID) error {
	tk, err := d.take(id)
	if err != nil {
		return err
	}
	it := tk.owner
	for i, cur := range it.takes {
		if cur == id {
			it.takes = append(it.takes[:i], it.takes[i+1:]...)
			break
		}
	}
	if it.active >= len(it.takes) && it.active > 0 {
		it.active = len(it.takes) - 1
	}
	delete(d.takes, id)
	return nil
}

func (d *Document) TakeName(id docstore.TakeID) (string, error) {
	tk, err := d.take(id)
	if err != nil {
		return "", err
	}
	return tk.name, nil
}

func (d *Document) SetTakeName(id docstore.TakeID, name string) error {
	tk, err := d.take(id)
	if err != nil {
		return err
	}
	tk.name = name
	return nil
}

func (d *Document) TakeValue(id docstore.TakeID, key string) (float64, error) {
	tk, err := d.take(id)
	if err != nil {
		return 0, err
	}
	return tk.values[key], nil
}

func (d *Document) SetTakeValue(id docstore.TakeID, key string, v float64) error {
	tk, err := d.take(id)
	if err != nil {
		return err
	}
	tk.values[key] = v
	return nil
}

func (d *Document) ActiveTake(itemID docstore.ItemID) (int, error) {
	it, err := d.item(itemID)
	if err != nil {
		return 0, err
	}
	return it.active, nil
}

func (d *Document) SetActiveTake(itemID docstore.ItemID, idx int) error {
	it, err := d.item(itemID)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(it.takes) {
		return fmt.Errorf("item %d take %d: %w", itemID, idx, docstore.ErrNotFound)
	}
	it.active = idx
	return nil
}

func (d *Document) TakeType(id docstore.TakeID) (domain.TakeType, error) {
	tk, err := d.take(id)
	if err != nil {
		return "", err
	}
	return tk.typ, nil
}

func (d *Document) SetTakeType(id docstore.TakeID, t domain.TakeType) error {
	tk, err := d.take(id)
	if err != nil {
		return err
	}
	tk.typ = t
	return nil
}

func (d *Document) TakeMIDI(id docstore.TakeID) (*domain.MIDIContent, error) {
	tk, err := d.take(id)
	if err != nil {
		return nil, err
	}
	return tk.midi, nil
}

// SetTakeMIDI replaces the take's event stream. The take must already be
// assigned the MIDI source type, matching the host behavior where a take
// is only recognized as MIDI once its source type says so.
func (d *Document) SetTakeMIDI(id docstore.TakeID, midi *domain.MIDIContent) error {
	tk, err := d.take(id)
	if err != nil {
		return err
	}
	if tk.typ != domain.TakeTypeMIDI {
		return fmt.Errorf("take %d is not a MIDI take", id)
	}
	tk.midi = midi
	return nil
}

func (d *Document) TakeSource(id docstore.TakeID) (string, error) {
	tk, err := d.take(id)
	if err != nil {
		return "", err
	}
	return tk.source, nil
}

func (d *Document) SetTakeSource(id docstore.TakeID, src string) error {
	tk, err := d.take(id)
	if err != nil {
		return err
	}
	tk.source = src
	return nil
}

// AddStretchMarker inserts a marker in position order and returns the
// authoritative index the document assigned. The returned index is the
// handle for the slope pass; it is only stable while later inserts stay
// at or after it, which holds when markers are added sorted.
func (d *Document) AddStretchMarker(id docstore.TakeID, position, sourcePosition float64) (int, error) {
	tk, err := d.take(id)
	if err != nil {
		return 0, err
	}
	m := domain.StretchMarker{Position: position, SourcePosition: sourcePosition}
	at := len(tk.stretch)
	for i, cur := range tk.stretch {
		if cur.Position > position {
			at = i
			break
		}
	}
	tk.stretch = append(tk.stretch[:at], append([]domain.StretchMarker{m}, tk.stretch[at:]...)...)
	return at, nil
}

func (d *Document) StretchMarkerCount(id docstore.TakeID) int {
	tk, err := d.take(id)
	if err != nil {
		return 0
	}
	return len(tk.stretch)
}

func (d *Document) StretchMarker(id docstore.TakeID, idx int) (domain.StretchMarker, error) {
	tk, err := d.take(id)
	if err != nil {
		return domain.StretchMarker{}, err
	}
	if idx < 0 || idx >= len(tk.stretch) {
		return domain.StretchMarker{}, fmt.Errorf("take %d stretch marker %d: %w", id, idx, docstore.ErrNotFound)
	}
	return tk.stretch[idx], nil
}

func (d *Document) SetStretchMarkerSlope(id docstore.TakeID, idx int, slope float64) error {
	tk, err := d.take(id)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(tk.stretch) {
		return fmt.Errorf("take %d stretch marker %d: %w", id, idx, docstore.ErrNotFound)
	}
	tk.stretch[idx].Slope = slope
	return nil
}

func (d *Document) ClearStretchMarkers(id docstore.TakeID) error {
	tk, err := d.take(id)
	if err != nil {
		return err
	}
	tk.stretch = nil
	return nil
}

func (d *Document) TakeMarkerCount(id docstore.TakeID) int {
	tk, err := d.take(id)
	if err != nil {
		return 0
	}
	return len(tk.markers)
}

func (d *Document) TakeMarker(id docstore.TakeID, idx int) (domain.TakeMarker, error) {
	tk, err := d.take(id)
	if err != nil {
		return domain.TakeMarker{}, err
	}
	if idx < 0 || idx >= len(tk.markers) {
		return domain.TakeMarker{}, fmt.Errorf("take %d marker %d: %w", id, idx, docstore.ErrNotFound)
	}
	return tk.markers[idx], nil
}

func (d *Document) AddTakeMarker(id docstore.TakeID, m domain.TakeMarker) error {
	tk, err := d.take(id)
	if err != nil {
		return err
	}
	tk.markers = append(tk.markers, m)
	return nil
}

func (d *Document) ClearTakeMarkers(id docstore.TakeID) error {
	tk, err := d.take(id)
	if err != nil {
		return err
	}
	tk.markers = nil
	return nil
}
