package memdoc

import (
	"fmt"

	"trackport/internal/docstore"
	"trackport/internal/domain"
)

func (d *Document) MarkerCount() int {
	return len(d.markers)
}

func (d *Document) Marker(idx int) (domain.Marker, error) {
	if idx < 0 || idx >= len(d.markers) {
		return domain.Marker{}, fmt.Errorf("marker %d: %w", idx, docstore.ErrNotFound)
	}
	return d.markers[idx], nil
}

func (d *Document) AddMarker(m domain.Marker) error {
	d.markers = append(d.markers, m)
	return nil
}

func (d *Document) DeleteMarker(idx int) error {
	if idx < 0 || idx >= len(d.markers) {
		return fmt.Errorf("marker %d: %w", idx, docstore.ErrNotFound)
	}
	d.markers = append(d.markers[:idx], d.markers[idx+1:]...)
	return nil
}

func (d *Document) TempoMarkerCount() int {
	return len(d.tempo)
}

func (d *Document) TempoMarker(idx int) (domain.TempoMarker, error) {
	if idx < 0 || idx >= len(d.tempo) {
		return domain.TempoMarker{}, fmt.Errorf("tempo marker %d: %w", idx, docstore.ErrNotFound)
	}
	return d.tempo[idx], nil
}

// SetTempoMarker updates a tempo marker in place. Index 0 may be set on
// a document with no stored markers: every document has an effective
// tempo at time 0, so the update materializes it.
func (d *Document) SetTempoMarker(idx int, m domain.TempoMarker) error {
	if idx == 0 && len(d.tempo) == 0 {
		d.tempo = append(d.tempo, m)
		return nil
	}
	if idx < 0 || idx >= len(d.tempo) {
		return fmt.Errorf("tempo marker %d: %w", idx, docstore.ErrNotFound)
	}
	d.tempo[idx] = m
	return nil
}

func (d *Document) AddTempoMarker(m domain.TempoMarker) error {
	d.tempo = append(d.tempo, m)
	return nil
}

func (d *Document) DeleteTempoMarker(idx int) error {
	if idx < 0 || idx >= len(d.tempo) {
		return fmt.Errorf("tempo marker %d: %w", idx, docstore.ErrNotFound)
	}
	d.tempo = append(d.tempo[:idx], d.tempo[idx+1:]...)
	return nil
}
