package writer

import (
	"fmt"

	"github.com/google/uuid"

	"trackport/internal/config"
	"trackport/internal/docstore"
	"trackport/internal/domain"
)

// WriteMarkers writes project markers and regions. Markers without a
// recorded GUID are assigned a fresh one so destination identity stays
// unambiguous.
func WriteMarkers(dst docstore.Document, snap *domain.Snapshot, cfg config.MarkersConfig) *Result {
	res := &Result{}
	if !cfg.Write {
		return res
	}

	if cfg.ClearExisting {
		for dst.MarkerCount() > 0 {
			if err := dst.DeleteMarker(0); err != nil {
				res.skip("marker clear", err.Error())
				break
			}
		}
	}

	for i, m := range snap.Markers {
		if m.GUID == "" {
			m.GUID = uuid.NewString()
		}
		if err := dst.AddMarker(m); err != nil {
			res.skip(markerKey(i, m), err.Error())
			continue
		}
		res.Written++
	}
	return res
}

func markerKey(i int, m domain.Marker) string {
	kind := "marker"
	if m.IsRegion {
		kind = "region"
	}
	return fmt.Sprintf("%s %d %q", kind, i, m.Name)
}
