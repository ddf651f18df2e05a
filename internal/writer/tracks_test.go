package writer

import (
	"testing"

	"trackport/internal/config"
	"trackport/internal/docstore/memdoc"
	"trackport/internal/domain"
	"trackport/internal/match"
)

func trackNames(t *testing.T, d *memdoc.Document) []string {
	t.Helper()
	names := make([]string, d.TrackCount())
	for i := range names {
		n, err := d.TrackName(i)
		if err != nil {
			t.Fatal(err)
		}
		names[i] = n
	}
	return names
}

func defaultTracksConfig() config.TracksConfig {
	return config.Default().Tracks
}

func TestWriteTracksMergeAndCreate(t *testing.T) {
	snap := &domain.Snapshot{
		Tracks: []domain.Track{
			{Name: "Drums", Props: domain.TrackProps{Volume: 0.8}},
			{Name: "Bass", Props: domain.TrackProps{Pan: -0.2}},
		},
	}
	dst := memdoc.New()
	dst.InsertTrackAt(0)
	dst.SetTrackName(0, "Bass")

	plan := match.BuildPlan([]string{"Drums", "Bass"}, []string{"Bass"}, match.Strategy{ExactName: true}, true)
	opts := Options{TrackMap: plan.Mappings}

	res := WriteTracks(dst, snap, plan, defaultTracksConfig(), opts)
	if !res.OK() {
		t.Fatalf("unexpected skips: %v", res.Skips)
	}
	if res.Written != 2 {
		t.Fatalf("Written = %d, want 2", res.Written)
	}

	// Bass merged in place at index 0, Drums created at index 1.
	got := trackNames(t, dst)
	if got[0] != "Bass" || got[1] != "Drums" {
		t.Fatalf("track names = %v, want [Bass Drums]", got)
	}
	pan, _ := dst.TrackValue(0, "pan")
	if pan != -0.2 {
		t.Fatalf("merged pan = %g, want -0.2", pan)
	}
	vol, _ := dst.TrackValue(1, "volume")
	if vol != 0.8 {
		t.Fatalf("created volume = %g, want 0.8", vol)
	}
}

func TestWriteTracksClearExisting(t *testing.T) {
	snap := &domain.Snapshot{
		Tracks: []domain.Track{{Name: "Only"}},
	}
	dst := memdoc.New()
	for i, n := range []string{"Stale1", "Stale2", "Stale3"} {
		dst.InsertTrackAt(i)
		dst.SetTrackName(i, n)
	}

	cfg := defaultTracksConfig()
	cfg.ClearExisting = true
	plan := match.BuildPlan([]string{"Only"}, nil, match.DefaultStrategy(), true)

	res := WriteTracks(dst, snap, plan, cfg, Options{TrackMap: plan.Mappings})
	if !res.OK() {
		t.Fatalf("unexpected skips: %v", res.Skips)
	}
	if dst.TrackCount() != 1 {
		t.Fatalf("TrackCount = %d, want 1", dst.TrackCount())
	}
	if got := trackNames(t, dst); got[0] != "Only" {
		t.Fatalf("track names = %v", got)
	}
}

func TestWriteTracksMissingDestinationSkips(t *testing.T) {
	snap := &domain.Snapshot{Tracks: []domain.Track{{Name: "A"}}}
	dst := memdoc.New()

	// A plan mapping source 0 to destination 3 with nothing to create:
	// the destination does not exist and must be skipped, not invented.
	plan := &match.Plan{Mappings: map[int]int{0: 3}}
	res := WriteTracks(dst, snap, plan, defaultTracksConfig(), Options{TrackMap: plan.Mappings})

	if res.Written != 0 {
		t.Fatalf("Written = %d, want 0", res.Written)
	}
	if len(res.Skips) != 1 {
		t.Fatalf("Skips = %v, want one", res.Skips)
	}
	if res.Skips[0].Reason != "destination track missing" {
		t.Fatalf("skip reason = %q", res.Skips[0].Reason)
	}
}

func TestWriteTrackFXCloneFromSource(t *testing.T) {
	src := memdoc.New()
	src.InsertTrackAt(0)
	at, _ := src.AddTrackFXByName(0, "ReaComp")
	src.SetTrackFXPreset(0, at, "glue")

	snap := &domain.Snapshot{
		Tracks: []domain.Track{{
			Name: "Drums",
			FX:   []domain.FXState{{Name: "ReaComp", Enabled: true, Preset: "glue"}},
		}},
	}
	dst := memdoc.New()
	dst.InsertTrackAt(0)

	plan := match.BuildPlan([]string{"Drums"}, []string{""}, match.DefaultStrategy(), true)
	res := WriteTracks(dst, snap, plan, defaultTracksConfig(), Options{TrackMap: plan.Mappings, SourceDoc: src})
	if !res.OK() {
		t.Fatalf("unexpected skips: %v", res.Skips)
	}
	st, err := dst.TrackFXState(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if st.Name != "ReaComp" || st.Preset != "glue" {
		t.Fatalf("cloned fx = %+v", st)
	}
}

func TestWriteTrackFXReconstructWithoutSource(t *testing.T) {
	snap := &domain.Snapshot{
		Tracks: []domain.Track{{
			Name: "Keys",
			FX: []domain.FXState{{
				Name:    "ReaSynth",
				Enabled: false,
				Preset:  "pad",
				Params:  []float64{0.1, 0.9},
			}},
		}},
	}
	dst := memdoc.New()
	dst.InsertTrackAt(0)
	// Pre-existing chain must be replaced.
	dst.AddTrackFXByName(0, "Stale")

	plan := match.BuildPlan([]string{"Keys"}, []string{""}, match.DefaultStrategy(), true)
	res := WriteTracks(dst, snap, plan, defaultTracksConfig(), Options{TrackMap: plan.Mappings})
	if !res.OK() {
		t.Fatalf("unexpected skips: %v", res.Skips)
	}
	if dst.TrackFXCount(0) != 1 {
		t.Fatalf("fx count = %d, want 1", dst.TrackFXCount(0))
	}
	st, _ := dst.TrackFXState(0, 0)
	if st.Name != "ReaSynth" || st.Enabled || st.Preset != "pad" {
		t.Fatalf("reconstructed fx = %+v", st)
	}
	if len(st.Params) != 2 || st.Params[1] != 0.9 {
		t.Fatalf("reconstructed params = %v", st.Params)
	}
}

func TestWriteLaneConfigAndDeferredPlayback(t *testing.T) {
	snap := &domain.Snapshot{
		Tracks: []domain.Track{{
			Name: "Comp",
			Lanes: domain.LaneInfo{
				Fixed:  true,
				Count:  2,
				Names:  map[int]string{0: "Kick", 1: "Alt"},
				Active: map[int]bool{1: true},
			},
		}},
	}
	dst := memdoc.New()
	dst.InsertTrackAt(0)

	plan := match.BuildPlan([]string{"Comp"}, []string{""}, match.DefaultStrategy(), true)
	opts := Options{TrackMap: plan.Mappings}
	cfg := defaultTracksConfig()

	if res := WriteTracks(dst, snap, plan, cfg, opts); !res.OK() {
		t.Fatalf("WriteTracks skips: %v", res.Skips)
	}

	lanes, err := dst.TrackLanes(0)
	if err != nil {
		t.Fatal(err)
	}
	if !lanes.Fixed || lanes.Count < 2 {
		t.Fatalf("lanes = %+v, want fixed with count >= 2", lanes)
	}
	if lanes.Names[0] != "Kick" {
		t.Fatalf("lane 0 name = %q, want Kick", lanes.Names[0])
	}
	// Playing state is deferred to the post-items pass.
	if len(lanes.Active) != 0 {
		t.Fatalf("lane playback set before deferred pass: %v", lanes.Active)
	}

	if res := WriteLanePlayback(dst, snap, cfg, opts); !res.OK() {
		t.Fatalf("WriteLanePlayback skips: %v", res.Skips)
	}
	lanes, _ = dst.TrackLanes(0)
	if !lanes.Active[1] {
		t.Fatalf("lane 1 not playing after deferred pass: %v", lanes.Active)
	}
}

func TestWriteTracksDisabled(t *testing.T) {
	snap := &domain.Snapshot{Tracks: []domain.Track{{Name: "A"}}}
	dst := memdoc.New()

	cfg := defaultTracksConfig()
	cfg.Write = false
	plan := match.BuildPlan([]string{"A"}, nil, match.DefaultStrategy(), true)

	res := WriteTracks(dst, snap, plan, cfg, Options{TrackMap: plan.Mappings})
	if res.Written != 0 || dst.TrackCount() != 0 {
		t.Fatalf("disabled writer mutated destination: written=%d tracks=%d", res.Written, dst.TrackCount())
	}
}
