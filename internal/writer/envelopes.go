package writer

import (
	"fmt"
	"strings"

	"trackport/internal/docstore"
	"trackport/internal/domain"
)

// writeTrackEnvelopes writes envelope point data and automation items
// onto the destination track, creating envelopes by name as needed.
func writeTrackEnvelopes(dst docstore.Document, destIdx int, envs []domain.Envelope, key string, res *Result) {
	for _, env := range envs {
		at, err := dst.EnsureTrackEnvelope(destIdx, env.Name)
		if err != nil {
			res.skip(fmt.Sprintf("%s envelope %q", key, env.Name), err.Error())
			continue
		}
		if err := dst.SetTrackEnvelopePoints(destIdx, at, env.Points); err != nil {
			res.skip(fmt.Sprintf("%s envelope %q", key, env.Name), err.Error())
			continue
		}
		for _, ai := range env.AutomationItems {
			if err := dst.AddAutomationItem(destIdx, at, ai); err != nil {
				res.skip(fmt.Sprintf("%s envelope %q", key, env.Name), fmt.Sprintf("automation item: %v", err))
				break
			}
		}
	}
}

// writeTakeEnvelopes writes envelope point data onto a destination
// take. An envelope is resolved by exact name first, then by normalized
// name; when neither finds one, the ensure capability creates it. An
// envelope that can be neither resolved nor created is dropped for that
// take, recorded as a skip.
func writeTakeEnvelopes(dst docstore.Document, id docstore.TakeID, envs []domain.Envelope, key string, res *Result) {
	for _, env := range envs {
		at, err := resolveTakeEnvelope(dst, id, env.Name)
		if err != nil {
			res.skip(fmt.Sprintf("%s envelope %q", key, env.Name), err.Error())
			continue
		}
		if err := dst.SetTakeEnvelopePoints(id, at, env.Points); err != nil {
			res.skip(fmt.Sprintf("%s envelope %q", key, env.Name), err.Error())
		}
	}
}

// resolveTakeEnvelope finds or creates a destination take envelope for
// the given source envelope name.
func resolveTakeEnvelope(dst docstore.Document, id docstore.TakeID, name string) (int, error) {
	for e := 0; e < dst.TakeEnvelopeCount(id); e++ {
		n, err := dst.TakeEnvelopeName(id, e)
		if err != nil {
			return 0, err
		}
		if n == name {
			return e, nil
		}
	}
	want := normalizeEnvelopeName(name)
	for e := 0; e < dst.TakeEnvelopeCount(id); e++ {
		n, err := dst.TakeEnvelopeName(id, e)
		if err != nil {
			return 0, err
		}
		if normalizeEnvelopeName(n) == want {
			return e, nil
		}
	}
	return dst.EnsureTakeEnvelope(id, name)
}

// normalizeEnvelopeName folds envelope names for fuzzy resolution:
// lower-cased, parenthesized qualifiers stripped, whitespace removed,
// plus a few manual synonym foldings.
func normalizeEnvelopeName(name string) string {
	s := strings.ToLower(name)
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	s = strings.Join(strings.Fields(s), "")
	switch s {
	case "vol", "trimvolume", "volume":
		return "volume"
	case "pan", "trimpan":
		return "pan"
	case "mute":
		return "mute"
	case "pitch", "takepitch":
		return "pitch"
	case "rate", "playrate", "takeplayrate":
		return "playrate"
	}
	return s
}
