package source

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Yamashou/refgen/config"
	"github.com/Yamashou/refgen/internal/fixture"
	"github.com/Yamashou/refgen/internal/log"
)

func TestScanner_Scan(t *testing.T) {
	t.Parallel()

	type want struct {
		marked      []string
		holders     []string
		diagnostics []string
	}

	tests := []struct {
		name   string
		modify func(cfg *config.Config)
		want   want
	}{
		{
			name: "マーカー属性とマニフェストでマークされる",
			modify: func(cfg *config.Config) {
				cfg.Source.Exclude = []string{"**/Editor/**"}
				cfg.Manifest = "refgen.manifest.yml"
			},
			want: want{
				marked:  []string{"Game.Audio.Mixer", "Game.Camera.CameraRig", "Game.Player.PlayerHealth"},
				holders: []string{"Scriptables.References.CameraRigRefSO"},
				diagnostics: []string{
					"Marker ignored: AbstractThing is abstract",
					"Marker ignored: Point is a struct, only classes get holders",
					"Manifest entry does not match any scanned type",
					"Type declared more than once, using the first declaration; also in Assets/Scripts/Player/PlayerHealth.cs",
				},
			},
		},
		{
			name:   "除外パターンがなければ Editor のスクリプトも対象になる",
			modify: func(cfg *config.Config) {},
			want: want{
				marked:  []string{"EditorOnly", "Game.Camera.CameraRig", "Game.Player.PlayerHealth"},
				holders: []string{"Scriptables.References.CameraRigRefSO"},
				diagnostics: []string{
					"Marker ignored: AbstractThing is abstract",
					"Marker ignored: Point is a struct, only classes get holders",
					"Type declared more than once, using the first declaration; also in Assets/Scripts/Player/PlayerHealth.cs",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := fixture.FS(t, "testdata/project.txtar")
			cfg := config.Default()
			tt.modify(cfg)

			scanner, err := NewScanner(fs, cfg, log.Discard())
			if err != nil {
				t.Fatalf("NewScanner() error = %v", err)
			}

			index, err := scanner.Scan(t.Context())
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}

			if diff := cmp.Diff(tt.want.marked, fullNames(index.Marked())); diff != "" {
				t.Errorf("marked diff(-want +got): %s", diff)
			}
			if diff := cmp.Diff(tt.want.holders, fullNames(index.Holders())); diff != "" {
				t.Errorf("holders diff(-want +got): %s", diff)
			}

			var messages []string
			for _, d := range index.Diagnostics {
				messages = append(messages, d.Message)
			}
			if diff := cmp.Diff(tt.want.diagnostics, messages); diff != "" {
				t.Errorf("diagnostics diff(-want +got): %s", diff)
			}
		})
	}
}

func TestScanner_ScanMissingRoot(t *testing.T) {
	t.Parallel()

	fs := fixture.FS(t, "testdata/project.txtar")
	cfg := config.Default()
	cfg.Source.Root = "Packages"

	scanner, err := NewScanner(fs, cfg, log.Discard())
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	_, err = scanner.Scan(t.Context())
	if err == nil || err.Error() != "source root Packages does not exist" {
		t.Errorf("Scan() error = %v, want missing root error", err)
	}
}

func TestScanner_ScansGeneratedRootOutsideSource(t *testing.T) {
	t.Parallel()

	fs := fixture.FS(t, "testdata/project.txtar")
	cfg := config.Default()
	cfg.Source.Root = "Assets/Scripts/Player"

	scanner, err := NewScanner(fs, cfg, log.Discard())
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	index, err := scanner.Scan(t.Context())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if diff := cmp.Diff([]string{"Scriptables.References.CameraRigRefSO"}, fullNames(index.Holders())); diff != "" {
		t.Errorf("holders diff(-want +got): %s", diff)
	}
}

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	fs := fixture.FS(t, "testdata/project.txtar")
	fixture.Write(t, fs, "bad.yml", "types:\n  - namespace: Game\n")
	fixture.Write(t, fs, "unknown.yml", "types:\n  - name: Foo\n    kind: class\n")

	m, err := LoadManifest(fs, "refgen.manifest.yml")
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	want := []ManifestEntry{
		{Name: "Mixer", Namespace: "Game.Audio"},
		{Name: "Missing", Namespace: "Game.Nowhere"},
	}
	if diff := cmp.Diff(want, m.Types); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}

	if _, err := LoadManifest(fs, "bad.yml"); err == nil || err.Error() != "manifest: types[0]: 'name' must be set" {
		t.Errorf("LoadManifest(bad.yml) error = %v", err)
	}
	if _, err := LoadManifest(fs, "unknown.yml"); err == nil {
		t.Errorf("LoadManifest(unknown.yml) error = nil, want unknown field error")
	}
}

func fullNames(types []TypeDescriptor) []string {
	var out []string
	for _, t := range types {
		out = append(out, t.FullName)
	}
	return out
}
