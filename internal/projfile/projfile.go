// Package projfile loads and saves project documents by reference.
//
// A reference is one of:
//
//	project.json          plain canonical JSON
//	project.json.zst      zstd-compressed canonical JSON
//	library.db#name       named snapshot inside a sqlite library
package projfile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"trackport/internal/docstore/memdoc"
	"trackport/internal/docstore/sqlitelib"
	"trackport/internal/domain"
	"trackport/internal/reader"
)

// Load reads the snapshot behind ref and materializes it as an
// in-memory document.
func Load(ref string) (*memdoc.Document, error) {
	snap, err := LoadSnapshot(ref)
	if err != nil {
		return nil, err
	}
	doc, err := memdoc.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize %s: %w", ref, err)
	}
	return doc, nil
}

// LoadSnapshot reads the snapshot behind ref without materializing it.
func LoadSnapshot(ref string) (*domain.Snapshot, error) {
	if lib, name, ok := splitLibraryRef(ref); ok {
		l, err := sqlitelib.Open(lib)
		if err != nil {
			return nil, err
		}
		defer l.Close()
		return l.Load(name)
	}

	raw, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	if strings.HasSuffix(ref, ".zst") {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		raw, err = dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress %s: %w", ref, err)
		}
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ref, err)
	}
	return &snap, nil
}

// Save snapshots doc and writes it to ref.
func Save(ref string, doc *memdoc.Document) error {
	snap, err := reader.Read(doc)
	if err != nil {
		return fmt.Errorf("failed to snapshot document: %w", err)
	}
	return SaveSnapshot(ref, snap)
}

// SaveSnapshot writes a snapshot to ref.
func SaveSnapshot(ref string, snap *domain.Snapshot) error {
	if lib, name, ok := splitLibraryRef(ref); ok {
		l, err := sqlitelib.Open(lib)
		if err != nil {
			return err
		}
		defer l.Close()
		return l.Save(name, snap)
	}

	raw, err := Canonical(snap)
	if err != nil {
		return err
	}
	if strings.HasSuffix(ref, ".zst") {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return err
		}
		defer enc.Close()
		raw = enc.EncodeAll(raw, nil)
	}
	if err := os.WriteFile(ref, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ref, err)
	}
	return nil
}

// Canonical renders a snapshot as compact deterministic JSON. Map keys
// sort and struct fields keep declaration order, so equal snapshots
// always render byte-equal.
func Canonical(snap *domain.Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return raw, nil
}

// Pretty renders a snapshot as indented JSON for display and diffing.
func Pretty(snap *domain.Snapshot) ([]byte, error) {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return append(raw, '\n'), nil
}

// splitLibraryRef splits "library.db#name" references. The fragment
// separator only counts after a .db suffix so plain filenames
// containing '#' still work.
func splitLibraryRef(ref string) (lib, name string, ok bool) {
	i := strings.Index(ref, "#")
	if i < 0 {
		return "", "", false
	}
	lib, name = ref[:i], ref[i+1:]
	if !strings.HasSuffix(lib, ".db") || name == "" {
		return "", "", false
	}
	return lib, name, true
}
