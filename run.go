package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/projectionfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/Yamashou/refgen/codegen"
	"github.com/Yamashou/refgen/config"
	"github.com/Yamashou/refgen/host"
	"github.com/Yamashou/refgen/internal/fsutil"
	"github.com/Yamashou/refgen/plugins"
	"github.com/Yamashou/refgen/report"
)

type Generate struct {
	Report string `help:"Write a JSON report of the cycle to this project relative path, overriding the config" env:"REFGEN_REPORT"`
}

// Run is called by Kong when the generate command is executed.
func (c *Generate) Run(ctx context.Context, logger *slog.Logger, g *Globals) error {
	_, err := run(ctx, g.Config, c.Report, logger)
	return err
}

type Init struct {
	Force bool `help:"Overwrite an existing config file with the defaults."`
}

// Run is called by Kong when the init command is executed.
func (c *Init) Run(logger *slog.Logger, g *Globals) error {
	return initProject(g.Config, c.Force, logger)
}

type Version struct{}

func (Version) Run() error {
	fmt.Printf("refgen v%s\n", version)
	return nil
}

// run performs one generation cycle for the project of cfgFile. An empty
// cfgFile is looked up in the working directory.
func run(ctx context.Context, cfgFile, reportFile string, logger *slog.Logger) (*report.Report, error) {
	if cfgFile == "" {
		var err error
		cfgFile, err = config.FindConfigFile(".", config.DefaultFilenames)
		if err != nil {
			return nil, fmt.Errorf("failed to find config file: %w", err)
		}
	}

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if reportFile != "" {
		cfg.Report = reportFile
	}

	fs, project, err := projectFS(cfg.Project)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded config", "file", cfgFile, "project", project)

	rep, err := plugins.GenerateCode(ctx, cfg, plugins.Deps{
		FS:        fs,
		Refresher: host.New(cfg.Refresh.Command, project, logger),
		Logger:    logger,
	})
	if cfg.Report != "" && rep != nil {
		if werr := rep.Write(fs, cfg.Report); werr != nil {
			err = errors.Join(err, werr)
		} else {
			logger.Info("Wrote report", "path", cfg.Report)
		}
	}
	if err != nil {
		return rep, fmt.Errorf("failed to generate code: %w", err)
	}

	if rep.Failed() {
		failed := rep.Paths("", report.StatusFailed)
		logger.Warn("Some files could not be generated", "count", len(failed), "paths", failed)
	}
	return rep, nil
}

// initProject writes the default config, unless one exists and force is
// false, and the base types the generated code depends on.
func initProject(cfgFile string, force bool, logger *slog.Logger) error {
	if cfgFile == "" {
		cfgFile = config.DefaultFilenames[0]
		if found, err := config.FindConfigFile(".", config.DefaultFilenames); err == nil {
			cfgFile = found
		}
	}

	cfgDir, err := filepath.Abs(filepath.Dir(cfgFile))
	if err != nil {
		return err
	}
	cfgFS, err := projectionfs.New(osfs.New(), cfgDir)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfgDir, err)
	}
	name := filepath.Base(cfgFile)

	exists, err := fsutil.Exists(cfgFS, name)
	if err != nil {
		return err
	}

	cfg := config.Default()
	switch {
	case exists && !force:
		if cfg, err = config.LoadConfig(cfgFile); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		logger.Info("Config file exists, keeping it", "path", cfgFile)
	case exists:
		if err := cfgFS.Remove(name); err != nil {
			return fmt.Errorf("remove %s: %w", cfgFile, err)
		}
		fallthrough
	default:
		content, err := cfg.Marshal()
		if err != nil {
			return err
		}
		if _, err := codegen.NewEmitter(cfgFS, logger).Emit(name, codegen.Text(string(content))); err != nil {
			return err
		}
		cfg.Project = filepath.Join(cfgDir, cfg.Project)
	}

	fs, _, err := projectFS(cfg.Project)
	if err != nil {
		return err
	}
	emitter := codegen.NewEmitter(fs, logger)
	for _, f := range codegen.Scaffold(cfg) {
		if _, err := emitter.Emit(f.Path, codegen.Text(f.Content)); err != nil {
			return err
		}
	}

	return nil
}

// projectFS returns a filesystem rooted at the project directory.
func projectFS(project string) (vfs.FileSystem, string, error) {
	abs, err := filepath.Abs(project)
	if err != nil {
		return nil, "", fmt.Errorf("resolve project %s: %w", project, err)
	}
	fs, err := projectionfs.New(osfs.New(), abs)
	if err != nil {
		return nil, "", fmt.Errorf("open project %s: %w", abs, err)
	}
	return fs, abs, nil
}
