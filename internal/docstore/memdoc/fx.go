package memdoc

import (
	"fmt"

	"trackport/internal/docstore"
	"trackport/internal/domain"
)

func fxState(f *fxInstance) domain.FXState {
	st := domain.FXState{
		Name:    f.name,
		Enabled: f.enabled,
		Offline: f.offline,
		Preset:  f.preset,
	}
	if len(f.params) > 0 {
		st.Params = append([]float64(nil), f.params...)
	}
	return st
}

func cloneFX(f *fxInstance) *fxInstance {
	c := &fxInstance{
		name:    f.name,
		enabled: f.enabled,
		offline: f.offline,
		preset:  f.preset,
	}
	if len(f.params) > 0 {
		c.params = append([]float64(nil), f.params...)
	}
	return c
}

func (d *Document) trackFX(trackIdx, fx int) (*fxInstance, error) {
	tr, err := d.track(trackIdx)
	if err != nil {
		return nil, err
	}
	if fx < 0 || fx >= len(tr.fx) {
		return nil, fmt.Errorf("track %d fx %d: %w", trackIdx, fx, docstore.ErrNotFound)
	}
	return tr.fx[fx], nil
}

func (d *Document) TrackFXCount(trackIdx int) int {
	tr, err := d.track(trackIdx)
	if err != nil {
		return 0
	}
	return len(tr.fx)
}

func (d *Document) TrackFXState(trackIdx, fx int) (domain.FXState, error) {
	f, err := d.trackFX(trackIdx, fx)
	if err != nil {
		return domain.FXState{}, err
	}
	return fxState(f), nil
}

func (d *Document) AddTrackFXByName(trackIdx int, name string) (int, error) {
	tr, err := d.track(trackIdx)
	if err != nil {
		return 0, err
	}
	if name == "" {
		return 0, fmt.Errorf("fx name is empty")
	}
	tr.fx = append(tr.fx, &fxInstance{name: name, enabled: true})
	return len(tr.fx) - 1, nil
}

// CopyTrackFX clones a track's whole FX chain from another document with
// full fidelity. Only memdoc sources are supported; anything else is the
// caller's cue to fall back to name-based reconstruction.
func (d *Document) CopyTrackFX(src docstore.Document, srcTrack, dstTrack int) error {
	srcDoc, ok := src.(*Document)
	if !ok {
		return fmt.Errorf("cannot clone fx from %T", src)
	}
	from, err := srcDoc.track(srcTrack)
	if err != nil {
		return err
	}
	to, err := d.track(dstTrack)
	if err != nil {
		return err
	}
	for _, f := range from.fx {
		to.fx = append(to.fx, cloneFX(f))
	}
	return nil
}

func (d *Document) DeleteTrackFX(trackIdx, fx int) error {
	tr, err := d.track(trackIdx)
	if err != nil {
		return err
	}
	if fx < 0 || fx >= len(tr.fx) {
		return fmt.Errorf("track %d fx %d: %w", trackIdx, fx, docstore.ErrNotFound)
	}
	tr.fx = append(tr.fx[:fx], tr.fx[fx+1:]...)
	return nil
}

func (d *Document) SetTrackFXEnabled(trackIdx, fx int, enabled bool) error {
	f, err := d.trackFX(trackIdx, fx)
	if err != nil {
		return err
	}
	f.enabled = enabled
	return nil
}

func (d *Document) SetTrackFXOffline(trackIdx, fx int, offline bool) error {
	f, err := d.trackFX(trackIdx, fx)
	if err != nil {
		return err
	}
	f.offline = offline
	return nil
}

func (d *Document) SetTrackFXPreset(trackIdx, fx int, preset string) error {
	f, err := d.trackFX(trackIdx, fx)
	if err != nil {
		return err
	}
	f.preset = preset
	return nil
}

func (d *Document) SetTrackFXParam(trackIdx, fx, param int, v float64) error {
	f, err := d.trackFX(trackIdx, fx)
	if err != nil {
		return err
	}
	for len(f.params) <= param {
		f.params = append(f.params, 0)
	}
	f.params[param] = v
	return nil
}

func (d *Document) takeFX(id docstore.TakeID, fx int) (*fxInstance, error) {
	tk, err := d.take(id)
	if err != nil {
		return nil, err
	}
	if fx < 0 || fx >= len(tk.fx) {
		return nil, fmt.Errorf("take %d fx %d: %w", id, fx, docstore.ErrNotFound)
	}
	return tk.fx[fx], nil
}

func (d *Document) TakeFXCount(id docstore.TakeID) int {
	tk, err := d.take(id)
	if err != nil {
		return 0
	}
	return len(tk.fx)
}

func (d *Document) TakeFXState(id docstore.TakeID, fx int) (domain.FXState, error) {
	f, err := d.takeFX(id, fx)
	if err != nil {
		return domain.FXState{}, err
	}
	return fxState(f), nil
}

func (d *Document) AddTakeFXByName(id docstore.TakeID, name string) (int, error) {
	tk, err := d.take(id)
	if err != nil {
		return 0, err
	}
	if name == "" {
		return 0, fmt.Errorf("fx name is empty")
	}
	tk.fx = append(tk.fx, &fxInstance{name: name, enabled: true})
	return len(tk.fx) - 1, nil
}

// CopyTakeFX clones a take's FX chain from another document. Same
// fidelity contract as CopyTrackFX.
func (d *Document) CopyTakeFX(src docstore.Document, srcTake, dstTake docstore.TakeID) error {
	srcDoc, ok := src.(*Document)
	if !ok {
		return fmt.Errorf("cannot clone fx from %T", src)
	}
	from, err := srcDoc.take(srcTake)
	if err != nil {
		return err
	}
	to, err := d.take(dstTake)
	if err != nil {
		return err
	}
	for _, f := range from.fx {
		to.fx = append(to.fx, cloneFX(f))
	}
	return nil
}

func (d *Document) SetTakeFXEnabled(id docstore.TakeID, fx int, enabled bool) error {
	f, err := d.takeFX(id, fx)
	if err != nil {
		return err
	}
	f.enabled = enabled
	return nil
}

func (d *Document) SetTakeFXOffline(id docstore.TakeID, fx int, offline bool) error {
	f, err := d.takeFX(id, fx)
	if err != nil {
		return err
	}
	f.offline = offline
	return nil
}

func (d *Document) SetTakeFXPreset(id docstore.TakeID, fx int, preset string) error {
	f, err := d.takeFX(id, fx)
	if err != nil {
		return err
	}
	f.preset = preset
	return nil
}

func (d *Document) SetTakeFXParam(id docstore.TakeID, fx, param int, v float64) error {
	f, err := d.takeFX(id, fx)
	if err != nil {
		return err
	}
	for len(f.params) <= param {
		f.params = append(f.params, 0)
	}
	f.params[param] = v
	return nil
}
