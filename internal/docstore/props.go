package docstore

import "trackport/internal/domain"

// Typed bridges between the snapshot model's property records and the
// document property channel. Each field is read and written explicitly
// so the enumerated key set is checked at compile time.

// ReadTrackProps reads a track's scalar property bag.
func ReadTrackProps(d Document, track int) (domain.TrackProps, error) {
	var p domain.TrackProps
	var err error
	read := func(key string, dst *float64) {
		if err != nil {
			return
		}
		*dst, err = d.TrackValue(track, key)
	}
	read(TrackVolume, &p.Volume)
	read(TrackPan, &p.Pan)
	read(TrackMute, &p.Mute)
	read(TrackSolo, &p.Solo)
	read(TrackHeight, &p.Height)
	read(TrackColor, &p.Color)
	read(TrackRecordArm, &p.RecordArm)
	return p, err
}

// WriteTrackProps writes a track's scalar property bag.
func WriteTrackProps(d Document, track int, p domain.TrackProps) error {
	var err error
	write := func(key string, v float64) {
		if err != nil {
			return
		}
		err = d.SetTrackValue(track, key, v)
	}
	write(TrackVolume, p.Volume)
	write(TrackPan, p.Pan)
	write(TrackMute, p.Mute)
	write(TrackSolo, p.Solo)
	write(TrackHeight, p.Height)
	write(TrackColor, p.Color)
	write(TrackRecordArm, p.RecordArm)
	return err
}

// ReadItemProps reads an item's scalar property bag, fade fields included.
func ReadItemProps(d Document, id ItemID) (domain.ItemProps, error) {
	var p domain.ItemProps
	var err error
	read := func(key string, dst *float64) {
		if err != nil {
			return
		}
		*dst, err = d.ItemValue(id, key)
	}
	read(ItemPosition, &p.Position)
	read(ItemLength, &p.Length)
	read(ItemVolume, &p.Volume)
	read(ItemMute, &p.Mute)
	read(ItemGroupID, &p.GroupID)
	read(ItemLane, &p.Lane)
	read(ItemLaneHeight, &p.LaneHeight)
	read(ItemFadeInLen, &p.FadeInLen)
	read(ItemFadeOutLen, &p.FadeOutLen)
	read(ItemFadeInShape, &p.FadeInShape)
	read(ItemFadeOutShape, &p.FadeOutShape)
	read(ItemFadeInCurve, &p.FadeInCurve)
	read(ItemFadeOutCurve, &p.FadeOutCurve)
	read(ItemAutoFadeIn, &p.AutoFadeIn)
	read(ItemAutoFadeOut, &p.AutoFadeOut)
	return p, err
}

// WriteItemProps writes an item's scalar property bag verbatim.
func WriteItemProps(d Document, id ItemID, p domain.ItemProps) error {
	var err error
	write := func(key string, v float64) {
		if err != nil {
			return
		}
		err = d.SetItemValue(id, key, v)
	}
	write(ItemPosition, p.Position)
	write(ItemLength, p.Length)
	write(ItemVolume, p.Volume)
	write(ItemMute, p.Mute)
	write(ItemGroupID, p.GroupID)
	write(ItemLane, p.Lane)
	write(ItemLaneHeight, p.LaneHeight)
	write(ItemFadeInLen, p.FadeInLen)
	write(ItemFadeOutLen, p.FadeOutLen)
	write(ItemFadeInShape, p.FadeInShape)
	write(ItemFadeOutShape, p.FadeOutShape)
	write(ItemFadeInCurve, p.FadeInCurve)
	write(ItemFadeOutCurve, p.FadeOutCurve)
	write(ItemAutoFadeIn, p.AutoFadeIn)
	write(ItemAutoFadeOut, p.AutoFadeOut)
	return err
}

// ReadTakeProps reads a take's scalar property bag.
func ReadTakeProps(d Document, id TakeID) (domain.TakeProps, error) {
	var p domain.TakeProps
	var err error
	read := func(key string, dst *float64) {
		if err != nil {
			return
		}
		*dst, err = d.TakeValue(id, key)
	}
	read(TakeVolume, &p.Volume)
	read(TakePan, &p.Pan)
	read(TakePitch, &p.Pitch)
	read(TakePlayRate, &p.PlayRate)
	read(TakeStartOffset, &p.StartOffset)
	return p, err
}

// WriteTakeProps writes a take's scalar property bag.
func WriteTakeProps(d Document, id TakeID, p domain.TakeProps) error {
	var err error
	write := func(key string, v float64) {
		if err != nil {
			return
		}
		err = d.SetTakeValue(id, key, v)
	}
	write(TakeVolume, p.Volume)
	write(TakePan, p.Pan)
	write(TakePitch, p.Pitch)
	write(TakePlayRate, p.PlayRate)
	write(TakeStartOffset, p.StartOffset)
	return err
}
