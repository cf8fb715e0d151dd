// Package holdergen は参照生成がマークされた型ごとにホルダー（ScriptableObject）のソースを生成する。
package holdergen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Yamashou/refgen/asset"
	"github.com/Yamashou/refgen/codegen"
	"github.com/Yamashou/refgen/naming"
	"github.com/Yamashou/refgen/report"
	"github.com/Yamashou/refgen/source"
)

// ErrHolderConflict は同じ単純名の型が同じホルダーのパスを取り合ったことを表す。
var ErrHolderConflict = errors.New("holder path already claimed")

// Plugin はマークされた型のホルダーを生成する。
type Plugin struct {
	deriver   *naming.Deriver
	formatter *codegen.CodeFormatter
	emitter   *codegen.Emitter
	metas     *asset.Metas
	report    *report.Report
	logger    *slog.Logger
}

// New は新しい holdergen プラグインを作成する。生成結果は rep に記録される。
func New(deriver *naming.Deriver, formatter *codegen.CodeFormatter, emitter *codegen.Emitter, metas *asset.Metas, rep *report.Report, logger *slog.Logger) *Plugin {
	return &Plugin{
		deriver:   deriver,
		formatter: formatter,
		emitter:   emitter,
		metas:     metas,
		report:    rep,
		logger:    logger,
	}
}

// Name はプラグイン名を返す。
func (p *Plugin) Name() string {
	return "holdergen"
}

// Generate は index のマークされた型ごとにホルダーを書き出し、1つでも書き出したかどうかを返す。
//
// 書き込みの失敗は記録して次の型に進む。エラーを返すのは ctx がキャンセルされた場合のみ。
func (p *Plugin) Generate(ctx context.Context, index *source.Index) (bool, error) {
	written := false
	claimed := make(map[string]string)

	for _, t := range index.Marked() {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		r := p.deriver.Holder(t)
		if owner, ok := claimed[r.HolderPath]; ok {
			p.conflict(t, owner, r.HolderPath)
			continue
		}
		claimed[r.HolderPath] = t.FullName

		ok, err := p.emitter.Emit(r.HolderPath, codegen.Text(p.formatter.FormatHolder(r)))
		switch {
		case err != nil:
			p.report.Add(report.KindHolder, t.FullName, r.HolderPath, report.StatusFailed, err)
			continue
		case !ok:
			p.report.Add(report.KindHolder, t.FullName, r.HolderPath, report.StatusSkipped, nil)
			continue
		}
		p.report.Add(report.KindHolder, t.FullName, r.HolderPath, report.StatusWritten, nil)
		written = true

		// 生成したスクリプトの GUID をアセットから参照できるように meta を置く
		_, metaWritten, err := p.metas.EnsureScript(r.HolderPath)
		if err != nil {
			p.report.Add(report.KindMeta, t.FullName, asset.MetaPath(r.HolderPath), report.StatusFailed, err)
		} else if metaWritten {
			p.report.Add(report.KindMeta, t.FullName, asset.MetaPath(r.HolderPath), report.StatusWritten, nil)
		}
	}

	p.logger.Debug("Generated holders", "plugin", p.Name(), "written", written)
	return written, nil
}

// conflict は先に path を取った owner と同じホルダーになる t を失敗として記録する。
func (p *Plugin) conflict(t source.TypeDescriptor, owner, path string) {
	err := fmt.Errorf("%w by %s", ErrHolderConflict, owner)
	p.report.Add(report.KindHolder, t.FullName, path, report.StatusFailed, err)
	p.report.Diagnose(report.Diagnostic{
		Path:    t.Path,
		Line:    t.Line,
		Type:    t.FullName,
		Message: fmt.Sprintf("Holder %s is generated for %s, %s gets none; rename one of the types", path, owner, t.FullName),
	})
	p.logger.Error("Holder name collision", "type", t.FullName, "owner", owner, "path", path)
}
