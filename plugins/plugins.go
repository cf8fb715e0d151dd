package plugins

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/Yamashou/refgen/asset"
	"github.com/Yamashou/refgen/codegen"
	"github.com/Yamashou/refgen/config"
	"github.com/Yamashou/refgen/host"
	"github.com/Yamashou/refgen/naming"
	"github.com/Yamashou/refgen/plugins/bindergen"
	"github.com/Yamashou/refgen/plugins/holdergen"
	"github.com/Yamashou/refgen/report"
	"github.com/Yamashou/refgen/source"
)

// Deps are the collaborators of one generation cycle.
type Deps struct {
	// FS is rooted at the project directory.
	FS        vfs.FileSystem
	Refresher host.Refresher
	Logger    *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// GenerateCode runs one generation cycle: holders for marked types, a refresh
// when any was written, then binders and assets for every holder found by a
// fresh scan, and a final refresh when any of those was written.
//
// Per-file failures are recorded in the returned report and do not stop the
// cycle. Scan failures and cancellation are returned as errors, together with
// the report of what was done so far.
func GenerateCode(ctx context.Context, cfg *config.Config, deps Deps) (*report.Report, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger

	rep := report.New(now())
	defer func() { rep.FinishedAt = now() }()

	scanner, err := source.NewScanner(deps.FS, cfg, logger)
	if err != nil {
		return rep, fmt.Errorf("scanner: %w", err)
	}

	emitter := codegen.NewEmitter(deps.FS, logger)
	metas := asset.NewMetas(deps.FS, emitter, cfg.MetaEnabled(), logger)
	deriver := naming.New(cfg)
	formatter := codegen.NewCodeFormatter(cfg.Namespace)

	////////////////////////////////////////////////////////////////////////////////////////////////////////////////////
	// holders

	index, err := scanner.Scan(ctx)
	if err != nil {
		return rep, fmt.Errorf("scan: %w", err)
	}
	diagnose(rep, index)

	holderGen := holdergen.New(deriver, formatter, emitter, metas, rep, logger)
	written, err := holderGen.Generate(ctx, index)
	if err != nil {
		return rep, fmt.Errorf("%s failed: %w", holderGen.Name(), err)
	}
	if written {
		refresh(ctx, deps.Refresher, rep, logger)
	}

	////////////////////////////////////////////////////////////////////////////////////////////////////////////////////
	// binders and assets

	// the holders written above are only visible to a new scan
	index, err = scanner.Scan(ctx)
	if err != nil {
		return rep, fmt.Errorf("scan: %w", err)
	}
	diagnose(rep, index)

	factory := asset.NewFactory()
	factory.RegisterHolders(index.Holders())
	instantiator := asset.NewInstantiator(deps.FS, factory, emitter, metas, cfg.Namespace, logger)

	binderGen := bindergen.New(deriver, formatter, emitter, metas, instantiator, rep, logger)
	written, err = binderGen.Generate(ctx, index)
	if err != nil {
		return rep, fmt.Errorf("%s failed: %w", binderGen.Name(), err)
	}
	if written {
		refresh(ctx, deps.Refresher, rep, logger)
	}

	logger.Info("Generation finished",
		"written", len(rep.Paths("", report.StatusWritten)),
		"failed", len(rep.Paths("", report.StatusFailed)),
		"refreshes", rep.Refreshes,
	)

	return rep, nil
}

// refresh asks the host to pick up new files. A failed refresh is recorded
// and the cycle goes on.
func refresh(ctx context.Context, r host.Refresher, rep *report.Report, logger *slog.Logger) {
	rep.Refreshes++
	if err := r.Refresh(ctx); err != nil {
		logger.Error("Failed to refresh host", "error", err)
		rep.RefreshErrors = append(rep.RefreshErrors, err.Error())
	}
}

// diagnose records the diagnostics of index not reported by an earlier scan.
func diagnose(rep *report.Report, index *source.Index) {
	for _, d := range index.Diagnostics {
		rd := report.Diagnostic{Path: d.Path, Line: d.Line, Type: d.Type, Message: d.Message}
		if !slices.Contains(rep.Diagnostics, rd) {
			rep.Diagnose(rd)
		}
	}
}
