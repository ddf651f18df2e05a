package writer

import (
	"fmt"

	"trackport/internal/config"
	"trackport/internal/docstore"
	"trackport/internal/domain"
)

const defaultSampleRate = 44100

// WriteProjectInfo writes project-level settings. A zero sample rate in
// the snapshot is replaced with the standard default, and the override
// flag is written as-is so the destination knows whether the rate was
// explicitly pinned.
func WriteProjectInfo(dst docstore.Document, snap *domain.Snapshot, cfg config.SectionConfig) *Result {
	res := &Result{}
	if !cfg.Write {
		return res
	}

	rate := snap.Info.SampleRate
	if rate == 0 {
		rate = defaultSampleRate
	}

	numeric := []struct {
		key   string
		value float64
	}{
		{docstore.SettingSampleRate, rate},
		{docstore.SettingSampleRateOverride, snap.Info.SampleRateOverride},
	}
	for _, s := range numeric {
		if err := dst.SetSetting(s.key, s.value); err != nil {
			res.skip(fmt.Sprintf("setting %q", s.key), err.Error())
			continue
		}
		res.Written++
	}

	text := []struct {
		key   string
		value string
	}{
		{docstore.SettingTitle, snap.Info.Title},
		{docstore.SettingAuthor, snap.Info.Author},
		{docstore.SettingNotes, snap.Info.Notes},
	}
	for _, s := range text {
		if err := dst.SetSettingString(s.key, s.value); err != nil {
			res.skip(fmt.Sprintf("setting %q", s.key), err.Error())
			continue
		}
		res.Written++
	}
	return res
}
