package writer

import (
	"fmt"
	"sort"

	"trackport/internal/config"
	"trackport/internal/docstore"
	"trackport/internal/domain"
)

// WriteStretchMarkers writes each take's stretch-marker set in two
// passes. Marker insertion may reorder the destination set, so slopes
// are keyed by the handle the insert returned rather than by source
// position. Markers are sorted by position before the first pass so
// handles stay stable across the second.
func WriteStretchMarkers(dst docstore.Document, snap *domain.Snapshot, cfg config.SectionConfig, opts Options) *Result {
	res := &Result{}
	if !cfg.Write {
		return res
	}

	for _, set := range snap.StretchMarkers {
		takeID, err := opts.resolveTake(dst, set.Key)
		if err != nil {
			res.skip(set.Key.String(), err.Error())
			continue
		}
		if err := dst.ClearStretchMarkers(takeID); err != nil {
			res.skip(set.Key.String(), err.Error())
			continue
		}

		markers := make([]domain.StretchMarker, len(set.Markers))
		copy(markers, set.Markers)
		sort.Slice(markers, func(i, j int) bool {
			return markers[i].Position < markers[j].Position
		})

		handles := make([]int, 0, len(markers))
		ok := true
		for _, m := range markers {
			h, err := dst.AddStretchMarker(takeID, m.Position, m.SourcePosition)
			if err != nil {
				res.skip(set.Key.String(), fmt.Sprintf("marker at %g: %v", m.Position, err))
				ok = false
				break
			}
			handles = append(handles, h)
		}
		if !ok {
			continue
		}
		for i, m := range markers {
			if err := dst.SetStretchMarkerSlope(takeID, handles[i], m.Slope); err != nil {
				res.skip(set.Key.String(), fmt.Sprintf("slope at %g: %v", m.Position, err))
			}
		}
		res.Written++
	}
	return res
}
