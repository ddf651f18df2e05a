package writer

import (
	"fmt"

	"trackport/internal/config"
	"trackport/internal/docstore"
	"trackport/internal/domain"
)

// WriteTempo writes the tempo map. The destination always carries an
// implicit marker at time zero, so the first source marker updates it
// in place; later markers are added.
func WriteTempo(dst docstore.Document, snap *domain.Snapshot, cfg config.SectionConfig) *Result {
	res := &Result{}
	if !cfg.Write {
		return res
	}

	for i, m := range snap.Tempo {
		var err error
		if i == 0 {
			err = dst.SetTempoMarker(0, m)
		} else {
			err = dst.AddTempoMarker(m)
		}
		if err != nil {
			res.skip(tempoKey(i, m), err.Error())
			continue
		}
		res.Written++
	}
	return res
}

func tempoKey(i int, m domain.TempoMarker) string {
	return fmt.Sprintf("tempo marker %d at %g", i, m.Time)
}
