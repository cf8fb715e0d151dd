package codegen

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/Yamashou/refgen/internal/fixture"
	"github.com/Yamashou/refgen/internal/fsutil"
	"github.com/Yamashou/refgen/internal/log"
)

// renameFailingFS fails every rename, leaving the temporary file behind for
// the emitter to clean up.
type renameFailingFS struct {
	vfs.FileSystem
}

func (renameFailingFS) Rename(string, string) error {
	return errors.New("rename refused")
}

func TestEmitter_Emit(t *testing.T) {
	t.Parallel()

	const target = "Assets/Generated/FooRefSO.cs"

	type want struct {
		written bool
		err     bool
		content string
		exists  bool
		entries []string
	}

	tests := []struct {
		name   string
		setup  func(t *testing.T, fs vfs.FileSystem)
		wrap   func(fs vfs.FileSystem) vfs.FileSystem
		render RenderFunc
		want   want
	}{
		{
			name:   "ディレクトリを作成して書き出す",
			render: Text("generated\n"),
			want: want{
				written: true,
				content: "generated\n",
				exists:  true,
				entries: []string{"FooRefSO.cs"},
			},
		},
		{
			name: "既存のファイルは変更しない",
			setup: func(t *testing.T, fs vfs.FileSystem) {
				fixture.Write(t, fs, target, "hand written\n")
			},
			render: Text("generated\n"),
			want: want{
				written: false,
				content: "hand written\n",
				exists:  true,
				entries: []string{"FooRefSO.cs"},
			},
		},
		{
			name: "レンダリングに失敗した場合は何も残さない",
			render: func(w io.Writer) error {
				_, _ = io.WriteString(w, "partial")
				return errors.New("template broken")
			},
			want: want{
				err:     true,
				entries: []string{},
			},
		},
		{
			name: "リネームに失敗した場合は一時ファイルを削除する",
			wrap: func(fs vfs.FileSystem) vfs.FileSystem {
				return renameFailingFS{FileSystem: fs}
			},
			render: Text("generated\n"),
			want: want{
				err:     true,
				entries: []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := memoryfs.New()
			if tt.setup != nil {
				tt.setup(t, fs)
			}
			emitFS := vfs.FileSystem(fs)
			if tt.wrap != nil {
				emitFS = tt.wrap(fs)
			}

			written, err := NewEmitter(emitFS, log.Discard()).Emit(target, tt.render)
			if (err != nil) != tt.want.err {
				t.Fatalf("Emit() error = %v, want error %v", err, tt.want.err)
			}
			if written != tt.want.written {
				t.Errorf("Emit() written = %v, want %v", written, tt.want.written)
			}

			exists, err := fsutil.Exists(fs, target)
			if err != nil {
				t.Fatal(err)
			}
			if exists != tt.want.exists {
				t.Errorf("exists = %v, want %v", exists, tt.want.exists)
			}
			if tt.want.exists {
				if diff := cmp.Diff(tt.want.content, fixture.Read(t, fs, target)); diff != "" {
					t.Errorf("diff(-want +got): %s", diff)
				}
			}

			infos, err := vfs.ReadDir(fs, "Assets/Generated")
			if err != nil {
				t.Fatalf("ReadDir() error = %v", err)
			}
			entries := []string{}
			for _, info := range infos {
				entries = append(entries, info.Name())
			}
			if diff := cmp.Diff(tt.want.entries, entries); diff != "" {
				t.Errorf("directory entries diff(-want +got): %s", diff)
			}
		})
	}
}

func TestEmitter_EmitTwice(t *testing.T) {
	t.Parallel()

	fs := memoryfs.New()
	e := NewEmitter(fs, log.Discard())

	first, err := e.Emit("Out/A.cs", Text("one"))
	if err != nil || !first {
		t.Fatalf("first Emit() = %v, %v", first, err)
	}
	second, err := e.Emit("Out/A.cs", Text("two"))
	if err != nil || second {
		t.Fatalf("second Emit() = %v, %v", second, err)
	}

	if diff := cmp.Diff("one", fixture.Read(t, fs, "Out/A.cs")); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}
}
