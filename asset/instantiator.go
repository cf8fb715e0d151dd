package asset

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/Yamashou/refgen/codegen"
	"github.com/Yamashou/refgen/internal/fsutil"
	"github.com/Yamashou/refgen/naming"
)

// Outcome lists what one Ensure call wrote.
type Outcome struct {
	Asset      bool
	AssetMeta  bool
	ScriptMeta bool
}

// Instantiator creates the asset instance of each holder type once.
type Instantiator struct {
	fs        vfs.FileSystem
	factory   *Factory
	emitter   *codegen.Emitter
	metas     *Metas
	namespace string
	logger    *slog.Logger
}

// NewInstantiator returns an instantiator resolving holders in namespace
// through factory.
func NewInstantiator(fs vfs.FileSystem, factory *Factory, emitter *codegen.Emitter, metas *Metas, namespace string, logger *slog.Logger) *Instantiator {
	return &Instantiator{
		fs:        fs,
		factory:   factory,
		emitter:   emitter,
		metas:     metas,
		namespace: namespace,
		logger:    logger,
	}
}

// Ensure persists a default instance of the holder r describes unless an asset
// already exists at r.AssetPath. The holder type must be registered in the
// factory under the generated namespace; otherwise ErrUnknownType is returned
// and nothing is written. Without a GUID for the holder script the asset is
// left for a later call and ErrScriptNotImported is returned.
func (i *Instantiator) Ensure(ctx context.Context, r naming.Result) (Outcome, error) {
	var out Outcome

	if err := ctx.Err(); err != nil {
		return out, err
	}

	exists, err := fsutil.Exists(i.fs, r.AssetPath)
	if err != nil {
		return out, err
	}
	if exists {
		i.logger.Debug("Asset already exists, skipping", "path", r.AssetPath)
		return out, nil
	}

	fullName := r.Holder
	if i.namespace != "" {
		fullName = i.namespace + "." + r.Holder
	}
	instance, err := i.factory.New(fullName, r.Holder)
	if err != nil {
		i.logger.Error("Failed to resolve holder type", "type", fullName, "known", i.factory.Names(), "error", err)
		return out, err
	}

	guid, written, err := i.metas.EnsureScript(r.HolderPath)
	if err != nil {
		return out, fmt.Errorf("script meta of %s: %w", r.Holder, err)
	}
	out.ScriptMeta = written
	if guid == "" {
		i.logger.Warn("Holder script has no GUID, skipping asset", "path", r.HolderPath)
		return out, fmt.Errorf("%w: %s", ErrScriptNotImported, r.HolderPath)
	}

	data, err := instance.Marshal(guid)
	if err != nil {
		return out, err
	}

	out.Asset, err = i.emitter.Emit(r.AssetPath, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil || !out.Asset {
		return out, err
	}

	if _, out.AssetMeta, err = i.metas.EnsureAsset(r.AssetPath); err != nil {
		return out, fmt.Errorf("asset meta of %s: %w", r.Holder, err)
	}

	i.logger.Info("Created asset", "type", fullName, "path", r.AssetPath)
	return out, nil
}
