package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"github.com/Yamashou/refgen/internal/fixture"
)

func TestReport_WriteLoad(t *testing.T) {
	t.Parallel()

	started := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	r := New(started)
	r.Add(KindHolder, "Game.Things.Foo", "Assets/Gen/FooRefSO.cs", StatusWritten, nil)
	r.Add(KindBinder, "Game.Things.Foo", "Assets/Gen/FooRefSetter.cs", StatusFailed, errors.New("disk full"))
	r.Diagnose(Diagnostic{Path: "Assets/Misuse.cs", Line: 4, Type: "Game.Point", Message: "Marker ignored"})
	r.Refreshes = 1
	r.FinishedAt = started.Add(2 * time.Second)

	fs := memoryfs.New()
	if err := r.Write(fs, "out/report.json"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	raw := strings.ReplaceAll(fixture.Read(t, fs, "out/report.json"), " ", "")
	for _, s := range []string{`"kind":"holder"`, `"status":"failed"`, `"error":"diskfull"`, `"started_at":"2024-05-01T09:30:00Z"`} {
		if !strings.Contains(raw, s) {
			t.Errorf("report does not contain %s:\n%s", s, raw)
		}
	}
	if strings.Contains(raw, "refresh_errors") {
		t.Errorf("empty refresh_errors must be omitted:\n%s", raw)
	}

	got, err := Load(fs, "out/report.json")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}
}

func TestReport_Paths(t *testing.T) {
	t.Parallel()

	r := New(time.Time{})
	r.Add(KindHolder, "", "a", StatusWritten, nil)
	r.Add(KindMeta, "", "a.meta", StatusWritten, nil)
	r.Add(KindBinder, "", "b", StatusSkipped, nil)
	r.Add(KindAsset, "", "c", StatusWritten, nil)

	if diff := cmp.Diff([]string{"a", "a.meta", "c"}, r.Paths("", StatusWritten)); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, r.Paths(KindBinder, StatusSkipped)); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}
	if r.Failed() {
		t.Errorf("Failed() = true, want false")
	}
}
