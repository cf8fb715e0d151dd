// Package host asks the editor hosting the project to pick up new files.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Refresher requests a recompile and asset database refresh from the host.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Command runs an external command, such as a Unity batch-mode refresh, in the
// project directory.
type Command struct {
	Args   []string
	Dir    string
	Logger *slog.Logger
}

func (c *Command) Refresh(ctx context.Context) error {
	if len(c.Args) == 0 {
		return errors.New("refresh command is empty")
	}

	c.Logger.Info("Refreshing host", "command", strings.Join(c.Args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Dir = c.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("refresh command %s: %w: %s", c.Args[0], err, msg)
		}
		return fmt.Errorf("refresh command %s: %w", c.Args[0], err)
	}

	if out := strings.TrimSpace(stdout.String()); out != "" {
		c.Logger.Debug("Refresh command output", "output", out)
	}
	return nil
}

// Nop only logs the request; the editor refreshes on its own when it regains
// focus.
type Nop struct {
	Logger *slog.Logger
}

func (n Nop) Refresh(context.Context) error {
	n.Logger.Info("Refresh requested, no refresh command configured")
	return nil
}

// Func adapts a function to a Refresher.
type Func func(ctx context.Context) error

func (f Func) Refresh(ctx context.Context) error {
	return f(ctx)
}

// New returns a Command refresher for args, or Nop when args is empty.
func New(args []string, dir string, logger *slog.Logger) Refresher {
	if len(args) == 0 {
		return Nop{Logger: logger}
	}
	return &Command{Args: args, Dir: dir, Logger: logger}
}
