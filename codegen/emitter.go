package codegen

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/Yamashou/refgen/internal/fsutil"
)

// RenderFunc は生成するファイルの内容を w に書き込む。
type RenderFunc func(w io.Writer) error

// Text は s をそのまま書き込む RenderFunc を返す。
func Text(s string) RenderFunc {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

// Emitter は生成されたファイルを一度だけ書き出す。既存のファイルは上書きしない。
type Emitter struct {
	fs     vfs.FileSystem
	logger *slog.Logger
}

func NewEmitter(fs vfs.FileSystem, logger *slog.Logger) *Emitter {
	return &Emitter{
		fs:     fs,
		logger: logger,
	}
}

// Emit は p にファイルが存在しない場合のみ render の結果を書き出し、書き出したかどうかを返す。
//
// 内容はメモリ上でレンダリングされ、同じディレクトリの一時ファイルに書き込まれた後に
// p へリネームされる。失敗した場合は一時ファイルを削除してエラーを返すため、
// p に書きかけのファイルが残ることはない。
func (e *Emitter) Emit(p string, render RenderFunc) (bool, error) {
	if err := fsutil.EnsureDir(e.fs, path.Dir(p)); err != nil {
		e.logger.Error("Failed to write file", "path", p, "error", err)
		return false, err
	}

	exists, err := fsutil.Exists(e.fs, p)
	if err != nil {
		e.logger.Error("Failed to write file", "path", p, "error", err)
		return false, err
	}
	if exists {
		e.logger.Debug("File already exists, skipping", "path", p)
		return false, nil
	}

	if err := e.write(p, render); err != nil {
		e.logger.Error("Failed to write file", "path", p, "error", err)
		return false, fmt.Errorf("write %s: %w", p, err)
	}

	e.logger.Info("Generated file", "path", p)
	return true, nil
}

func (e *Emitter) write(p string, render RenderFunc) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	tmp := path.Join(path.Dir(p), "."+path.Base(p)+"."+uuid.NewString()+".tmp")
	f, err := e.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		e.remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		e.remove(tmp)
		return err
	}
	if err := e.fs.Rename(tmp, p); err != nil {
		e.remove(tmp)
		return err
	}

	return nil
}

func (e *Emitter) remove(p string) {
	if err := e.fs.Remove(p); err != nil {
		e.logger.Warn("Failed to remove partial file", "path", p, "error", err)
	}
}
