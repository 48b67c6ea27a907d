package links

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"rackops/core/inventory"

	"go.uber.org/zap"
)

// ErrNoScript is returned when no fastssh script path is configured.
var ErrNoScript = errors.New("fastssh script path is required")

// Lister returns the machines to create links for.
type Lister interface {
	ActiveServers(ctx context.Context) ([]inventory.Machine, error)
}

// Result lists what a run did.
type Result struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// Generator creates one symlink per active machine, named after the machine
// and pointing to the fastssh script.
type Generator struct {
	lister Lister
	logger *zap.Logger
}

// NewGenerator creates a link generator.
func NewGenerator(lister Lister, logger *zap.Logger) *Generator {
	return &Generator{lister: lister, logger: logger}
}

// Generate creates the missing links in cfg.Dir. An existing path of that
// name, even a dangling link, is left untouched.
func (g *Generator) Generate(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.FastSSH == "" {
		return nil, ErrNoScript
	}
	dir := cfg.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}

	machines, err := g.lister.ActiveServers(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Created: []string{}, Skipped: []string{}}
	for _, m := range machines {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if m.Name == "." || m.Name == ".." || strings.ContainsRune(m.Name, filepath.Separator) {
			g.logger.Warn("Machine name is not a file name", zap.String("machine", m.Name))
			res.Skipped = append(res.Skipped, m.Name)
			continue
		}

		target := filepath.Join(dir, m.Name)
		if _, err := os.Lstat(target); err == nil {
			res.Skipped = append(res.Skipped, m.Name)
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("failed to inspect %s: %w", target, err)
		}

		if err := os.Symlink(cfg.FastSSH, target); err != nil {
			return res, fmt.Errorf("failed to link %s: %w", target, err)
		}
		g.logger.Debug("Link created", zap.String("path", target))
		res.Created = append(res.Created, m.Name)
	}

	return res, nil
}
