package writer

import (
	"fmt"

	"trackport/internal/config"
	"trackport/internal/docstore"
	"trackport/internal/domain"
)

// WriteTakeMarkers writes each take's marker set onto its resolved
// destination take.
func WriteTakeMarkers(dst docstore.Document, snap *domain.Snapshot, cfg config.MarkersConfig, opts Options) *Result {
	res := &Result{}
	if !cfg.Write {
		return res
	}

	for _, set := range snap.TakeMarkers {
		takeID, err := opts.resolveTake(dst, set.Key)
		if err != nil {
			res.skip(set.Key.String(), err.Error())
			continue
		}
		if cfg.ClearExisting {
			if err := dst.ClearTakeMarkers(takeID); err != nil {
				res.skip(set.Key.String(), err.Error())
				continue
			}
		}
		ok := true
		for _, m := range set.Markers {
			if err := dst.AddTakeMarker(takeID, m); err != nil {
				res.skip(set.Key.String(), fmt.Sprintf("marker %q: %v", m.Name, err))
				ok = false
				break
			}
		}
		if ok {
			res.Written++
		}
	}
	return res
}
