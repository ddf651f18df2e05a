package memdoc

import (
	"fmt"

	"trackport/internal/docstore"
	"trackport/internal/domain"
)

func clonePoints(pts []domain.EnvelopePoint) []domain.EnvelopePoint {
	if len(pts) == 0 {
		return nil
	}
	return append([]domain.EnvelopePoint(nil), pts...)
}

func findEnvelope(envs []*envelope, name string) int {
	for i, e := range envs {
		if e.name == name {
			return i
		}
	}
	return -1
}

func (d *Document) trackEnvelope(trackIdx, env int) (*envelope, error) {
	tr, err := d.track(trackIdx)
	if err != nil {
		return nil, err
	}
	if env < 0 || env >= len(tr.envelopes) {
		return nil, fmt.Errorf("track %d envelope %d: %w", trackIdx, env, docstore.ErrNotFound)
	}
	return tr.envelopes[env], nil
}

func (d *Document) TrackEnvelopeCount(trackIdx int) int {
	tr, err := d.track(trackIdx)
	if err != nil {
		return 0
	}
	return len(tr.envelopes)
}

func (d *Document) TrackEnvelopeName(trackIdx, env int) (string, error) {
	e, err := d.trackEnvelope(trackIdx, env)
	if err != nil {
		return "", err
	}
	return e.name, nil
}

// EnsureTrackEnvelope returns the index of the envelope with the given
// name, creating it when absent. This is the data-level stand-in for the
// host's envelope-visibility toggle action.
func (d *Document) EnsureTrackEnvelope(trackIdx int, name string) (int, error) {
	tr, err := d.track(trackIdx)
	if err != nil {
		return 0, err
	}
	if i := findEnvelope(tr.envelopes, name); i >= 0 {
		return i, nil
	}
	tr.envelopes = append(tr.envelopes, &envelope{name: name})
	return len(tr.envelopes) - 1, nil
}

func (d *Document) TrackEnvelopePoints(trackIdx, env int) ([]domain.EnvelopePoint, error) {
	e, err := d.trackEnvelope(trackIdx, env)
	if err != nil {
		return nil, err
	}
	return clonePoints(e.points), nil
}

func (d *Document) SetTrackEnvelopePoints(trackIdx, env int, pts []domain.EnvelopePoint) error {
	e, err := d.trackEnvelope(trackIdx, env)
	if err != nil {
		return err
	}
	e.points = clonePoints(pts)
	return nil
}

func (d *Document) AutomationItems(trackIdx, env int) ([]domain.AutomationItem, error) {
	e, err := d.trackEnvelope(trackIdx, env)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AutomationItem, len(e.autoItems))
	for i, ai := range e.autoItems {
		out[i] = domain.AutomationItem{
			Position: ai.Position,
			Length:   ai.Length,
			Points:   clonePoints(ai.Points),
		}
	}
	return out, nil
}

func (d *Document) AddAutomationItem(trackIdx, env int, ai domain.AutomationItem) error {
	e, err := d.trackEnvelope(trackIdx, env)
	if err != nil {
		return err
	}
	ai.Points = clonePoints(ai.Points)
	e.autoItems = append(e.autoItems, ai)
	return nil
}

func (d *Document) takeEnvelope(id docstore.TakeID, env int) (*envelope, error) {
	tk, err := d.take(id)
	if err != nil {
		return nil, err
	}
	if env < 0 || env >= len(tk.envelopes) {
		return nil, fmt.Errorf("take %d envelope %d: %w", id, env, docstore.ErrNotFound)
	}
	return tk.envelopes[env], nil
}

func (d *Document) TakeEnvelopeCount(id docstore.TakeID) int {
	tk, err := d.take(id)
	if err != nil {
		return 0
	}
	return len(tk.envelopes)
}

func (d *Document) TakeEnvelopeName(id docstore.TakeID, env int) (string, error) {
	e, err := d.takeEnvelope(id, env)
	if err != nil {
		return "", err
	}
	return e.name, nil
}

// EnsureTakeEnvelope mirrors EnsureTrackEnvelope for take envelopes.
func (d *Document) EnsureTakeEnvelope(id docstore.TakeID, name string) (int, error) {
	tk, err := d.take(id)
	if err != nil {
		return 0, err
	}
	if i := findEnvelope(tk.envelopes, name); i >= 0 {
		return i, nil
	}
	tk.envelopes = append(tk.envelopes, &envelope{name: name})
	return len(tk.envelopes) - 1, nil
}

func (d *Document) TakeEnvelopePoints(id docstore.TakeID, env int) ([]domain.EnvelopePoint, error) {
	e, err := d.takeEnvelope(id, env)
	if err != nil {
		return nil, err
	}
	return clonePoints(e.points), nil
}

func (d *Document) SetTakeEnvelopePoints(id docstore.TakeID, env int, pts []domain.EnvelopePoint) error {
	e, err := d.takeEnvelope(id, env)
	if err != nil {
		return err
	}
	e.points = clonePoints(pts)
	return nil
}
