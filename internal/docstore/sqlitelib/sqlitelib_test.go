package sqlitelib

import (
	"path/filepath"
	"strings"
	"testing"

	"trackport/internal/domain"
)

func openTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { lib.Close() })
	return lib
}

func testSnapshot(title string) *domain.Snapshot {
	return &domain.Snapshot{
		Info:   domain.ProjectInfo{SampleRate: 44100, Title: title},
		Tempo:  []domain.TempoMarker{{Time: 0, BPM: 120, TimeSigNum: 4, TimeSigDen: 4}},
		Tracks: []domain.Track{{Name: "Drums"}},
	}
}

func TestSaveAndLoad(t *testing.T) {
	lib := openTestLibrary(t)

	if err := lib.Save("mix", testSnapshot("Mix v1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := lib.Load("mix")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Info.Title != "Mix v1" || len(got.Tracks) != 1 {
		t.Fatalf("loaded snapshot = %+v", got)
	}
}

func TestSaveUpsertsByName(t *testing.T) {
	lib := openTestLibrary(t)

	if err := lib.Save("mix", testSnapshot("v1")); err != nil {
		t.Fatal(err)
	}
	if err := lib.Save("mix", testSnapshot("v2")); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := lib.Load("mix")
	if err != nil {
		t.Fatal(err)
	}
	if got.Info.Title != "v2" {
		t.Fatalf("title = %q, want v2", got.Info.Title)
	}
	entries, err := lib.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("List returned %d entries, want 1", len(entries))
	}
}

func TestListOrdering(t *testing.T) {
	lib := openTestLibrary(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := lib.Save(name, testSnapshot(name)); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := lib.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if entries[i].Name != want {
			t.Fatalf("entries[%d] = %q, want %q", i, entries[i].Name, want)
		}
	}
	if entries[0].UUID == "" || entries[0].CreatedAt.IsZero() {
		t.Fatalf("entry metadata missing: %+v", entries[0])
	}
}

func TestDelete(t *testing.T) {
	lib := openTestLibrary(t)
	if err := lib.Save("mix", testSnapshot("v1")); err != nil {
		t.Fatal(err)
	}
	if err := lib.Delete("mix"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := lib.Load("mix"); err == nil {
		t.Fatal("Load after Delete should fail")
	}
	if err := lib.Delete("mix"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("second Delete err = %v, want not found", err)
	}
}

func TestLoadUnknownName(t *testing.T) {
	lib := openTestLibrary(t)
	if _, err := lib.Load("nope"); err == nil {
		t.Fatal("Load of unknown name should fail")
	}
}

func TestSaveEmptyName(t *testing.T) {
	lib := openTestLibrary(t)
	if err := lib.Save("", testSnapshot("x")); err == nil {
		t.Fatal("Save with empty name should fail")
	}
}
