// Package report records what one generation cycle did.
package report

import (
	"fmt"
	"path"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/Yamashou/refgen/internal/fsutil"
)

type Kind string

const (
	KindHolder Kind = "holder"
	KindBinder Kind = "binder"
	KindAsset  Kind = "asset"
	KindMeta   Kind = "meta"
)

type Status string

const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Event is the outcome of one generated file.
type Event struct {
	Kind   Kind   `json:"kind"`
	Type   string `json:"type,omitzero"`
	Path   string `json:"path"`
	Status Status `json:"status"`
	Error  string `json:"error,omitzero"`
}

// Diagnostic is a non-fatal problem found during the cycle.
type Diagnostic struct {
	Path    string `json:"path,omitzero"`
	Line    int    `json:"line,omitzero"`
	Type    string `json:"type,omitzero"`
	Message string `json:"message"`
}

type Report struct {
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    time.Time    `json:"finished_at,omitzero"`
	Events        []Event      `json:"events"`
	Diagnostics   []Diagnostic `json:"diagnostics"`
	Refreshes     int          `json:"refreshes"`
	RefreshErrors []string     `json:"refresh_errors,omitzero"`
}

func New(now time.Time) *Report {
	return &Report{
		StartedAt:   now,
		Events:      []Event{},
		Diagnostics: []Diagnostic{},
	}
}

// Add records an event.
func (r *Report) Add(kind Kind, typeName, p string, status Status, err error) {
	e := Event{Kind: kind, Type: typeName, Path: p, Status: status}
	if err != nil {
		e.Error = err.Error()
	}
	r.Events = append(r.Events, e)
}

// Diagnose records a diagnostic.
func (r *Report) Diagnose(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// Paths returns the paths of the events of kind with status, in order. An
// empty kind matches every kind.
func (r *Report) Paths(kind Kind, status Status) []string {
	var out []string
	for _, e := range r.Events {
		if (kind == "" || e.Kind == kind) && e.Status == status {
			out = append(out, e.Path)
		}
	}
	return out
}

// Failed reports whether any event failed.
func (r *Report) Failed() bool {
	return len(r.Paths("", StatusFailed)) > 0
}

// Write stores the report as indented JSON at p.
func (r *Report) Write(fs vfs.FileSystem, p string) error {
	data, err := json.Marshal(r, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := fsutil.EnsureDir(fs, path.Dir(p)); err != nil {
		return err
	}
	if err := vfs.WriteFile(fs, p, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", p, err)
	}
	return nil
}

// Load reads a report written by Write.
func Load(fs vfs.FileSystem, p string) (*Report, error) {
	data, err := vfs.ReadFile(fs, p)
	if err != nil {
		return nil, fmt.Errorf("unable to read report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unable to parse report: %w", err)
	}
	return &r, nil
}
