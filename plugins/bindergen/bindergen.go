// Package bindergen は生成済みのホルダーごとにバインダー（MonoBehaviour）のソースとアセットを生成する。
package bindergen

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Yamashou/refgen/asset"
	"github.com/Yamashou/refgen/codegen"
	"github.com/Yamashou/refgen/naming"
	"github.com/Yamashou/refgen/report"
	"github.com/Yamashou/refgen/source"
)

// Plugin はホルダー型のバインダーとアセットを生成する。
type Plugin struct {
	deriver      *naming.Deriver
	formatter    *codegen.CodeFormatter
	emitter      *codegen.Emitter
	metas        *asset.Metas
	instantiator *asset.Instantiator
	report       *report.Report
	logger       *slog.Logger
}

// New は新しい bindergen プラグインを作成する。生成結果は rep に記録される。
func New(deriver *naming.Deriver, formatter *codegen.CodeFormatter, emitter *codegen.Emitter, metas *asset.Metas, instantiator *asset.Instantiator, rep *report.Report, logger *slog.Logger) *Plugin {
	return &Plugin{
		deriver:      deriver,
		formatter:    formatter,
		emitter:      emitter,
		metas:        metas,
		instantiator: instantiator,
		report:       rep,
		logger:       logger,
	}
}

// Name はプラグイン名を返す。
func (p *Plugin) Name() string {
	return "bindergen"
}

// Generate は index のホルダー型ごとにバインダーを書き出し、アセットを作成する。
// バインダーかアセットを1つでも書き出したかどうかを返す。
//
// 書き込みや型解決の失敗は記録して次のホルダーに進む。エラーを返すのは ctx がキャンセルされた場合のみ。
func (p *Plugin) Generate(ctx context.Context, index *source.Index) (bool, error) {
	written := false
	types := p.componentTypes(index)

	for _, h := range index.Holders() {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		r, err := p.deriver.Binder(h)
		if err != nil {
			p.report.Add(report.KindBinder, h.FullName, "", report.StatusFailed, err)
			p.logger.Error("Failed to derive binder name", "holder", h.FullName, "error", err)
			continue
		}
		if ref, ok := types[r.Original]; ok {
			r.Type = ref
		}

		if p.binder(h, r) {
			written = true
		}
		if p.asset(ctx, h, r) {
			written = true
		}
	}

	p.logger.Debug("Generated binders", "plugin", p.Name(), "written", written)
	return written, nil
}

// componentTypes maps the simple names of marked types to the way generated
// code refers to them.
func (p *Plugin) componentTypes(index *source.Index) map[string]string {
	types := make(map[string]string)
	for _, t := range index.Marked() {
		if _, ok := types[t.Name]; !ok {
			types[t.Name] = p.deriver.Holder(t).Type
		}
	}
	return types
}

func (p *Plugin) binder(h source.TypeDescriptor, r naming.Result) bool {
	ok, err := p.emitter.Emit(r.BinderPath, codegen.Text(p.formatter.FormatBinder(r)))
	switch {
	case err != nil:
		p.report.Add(report.KindBinder, h.FullName, r.BinderPath, report.StatusFailed, err)
		return false
	case !ok:
		p.report.Add(report.KindBinder, h.FullName, r.BinderPath, report.StatusSkipped, nil)
		return false
	}
	p.report.Add(report.KindBinder, h.FullName, r.BinderPath, report.StatusWritten, nil)

	_, metaWritten, err := p.metas.EnsureScript(r.BinderPath)
	if err != nil {
		p.report.Add(report.KindMeta, h.FullName, asset.MetaPath(r.BinderPath), report.StatusFailed, err)
	} else if metaWritten {
		p.report.Add(report.KindMeta, h.FullName, asset.MetaPath(r.BinderPath), report.StatusWritten, nil)
	}
	return true
}

func (p *Plugin) asset(ctx context.Context, h source.TypeDescriptor, r naming.Result) bool {
	out, err := p.instantiator.Ensure(ctx, r)

	if out.ScriptMeta {
		p.report.Add(report.KindMeta, h.FullName, asset.MetaPath(r.HolderPath), report.StatusWritten, nil)
	}

	switch {
	case errors.Is(err, asset.ErrScriptNotImported):
		p.report.Add(report.KindAsset, h.FullName, r.AssetPath, report.StatusSkipped, err)
		p.report.Diagnose(report.Diagnostic{
			Path:    r.HolderPath,
			Type:    h.FullName,
			Message: "Holder script not imported yet, the asset is created by a later run",
		})
		return false
	case err != nil && !out.Asset:
		p.report.Add(report.KindAsset, h.FullName, r.AssetPath, report.StatusFailed, err)
		if errors.Is(err, asset.ErrUnknownType) {
			p.report.Diagnose(report.Diagnostic{
				Path:    h.Path,
				Line:    h.Line,
				Type:    h.FullName,
				Message: "Holder type is not in the generated namespace, no asset created",
			})
		}
		return false
	case !out.Asset:
		p.report.Add(report.KindAsset, h.FullName, r.AssetPath, report.StatusSkipped, nil)
		return false
	}

	p.report.Add(report.KindAsset, h.FullName, r.AssetPath, report.StatusWritten, nil)
	if err != nil {
		p.report.Add(report.KindMeta, h.FullName, asset.MetaPath(r.AssetPath), report.StatusFailed, err)
	} else if out.AssetMeta {
		p.report.Add(report.KindMeta, h.FullName, asset.MetaPath(r.AssetPath), report.StatusWritten, nil)
	}
	return true
}
