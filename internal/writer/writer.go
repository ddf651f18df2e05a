// Package writer contains the section writers. Each writer translates
// one slice of an entity snapshot into document mutations, resolving
// destination identity through the merge plan's track mapping and the
// item-identity map produced by the items writer.
//
// Writers never abort a batch: any per-entity resolution failure is
// recorded as a skip and processing continues. This is deliberate
// partial-failure tolerance; migrations cover hundreds of entities and
// all-or-nothing failure would be worse than partial success.
package writer

import (
	"log"

	"trackport/internal/docstore"
	"trackport/internal/domain"
)

// Options carries the shared identity-resolution state threaded through
// every writer.
type Options struct {
	// TrackMap maps source track indices to destination track indices
	// (from the merge plan). A nil or incomplete map falls back to
	// identity.
	TrackMap map[int]int
	// ItemMap maps source item keys to the destination item handles the
	// items writer created.
	ItemMap map[domain.ItemKey]docstore.ItemID
	// SourceDoc is a handle to the origin document, used for
	// high-fidelity direct FX cloning when available. Nil selects the
	// reconstruct-by-name fallback.
	SourceDoc docstore.Document
}

// DestTrack resolves a source track index to its destination index,
// defaulting to identity when unmapped.
func (o Options) DestTrack(src int) int {
	if dst, ok := o.TrackMap[src]; ok {
		return dst
	}
	return src
}

// Skip records one entity that was left unwritten and why.
type Skip struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Result is the outcome of one writer invocation.
type Result struct {
	Written int    `json:"written"`
	Skips   []Skip `json:"skips,omitempty"`
}

// OK reports whether the writer completed without skipping anything.
func (r *Result) OK() bool {
	return len(r.Skips) == 0
}

func (r *Result) skip(key, reason string) {
	log.Printf("skipping %s: %s", key, reason)
	r.Skips = append(r.Skips, Skip{Key: key, Reason: reason})
}

// resolveItem resolves the destination item for a source item key:
// identity map first, then positional lookup by item index on the
// resolved destination track.
func (o Options) resolveItem(doc docstore.Document, key domain.ItemKey) (docstore.ItemID, error) {
	if id, ok := o.ItemMap[key]; ok {
		return id, nil
	}
	return doc.Item(o.DestTrack(key.Track), key.Item)
}

// resolveTake resolves the destination take for a source take key:
// destination item via resolveItem, then positional lookup by take
// index.
func (o Options) resolveTake(doc docstore.Document, key domain.TakeKey) (docstore.TakeID, error) {
	itemID, err := o.resolveItem(doc, key.ItemKey())
	if err != nil {
		return 0, err
	}
	return doc.Take(itemID, key.Take)
}
