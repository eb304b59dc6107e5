package templates

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"

	"github.com/xet-labs/xet-composer/internal/domain"
	"github.com/xet-labs/xet-composer/internal/domain/config"
)

//go:embed builtin/*.yaml builtin/*.tmpl
var builtinFS embed.FS

// RepositoryAdapter implements the TemplateRepository port over the builtin
// embedded templates plus an optional on-disk template directory. The
// repository is read-only after construction; concurrent requests share it
// without synchronization.
type RepositoryAdapter struct {
	log         *slog.Logger
	descriptors map[string]*domain.TemplateDescriptor
}

// NewRepositoryAdapter loads every template manifest at startup. On-disk
// templates in cfg.TemplatesDir shadow builtins with the same id.
func NewRepositoryAdapter(cfg *config.RuntimeConfig, log *slog.Logger) (*RepositoryAdapter, error) {
	r := &RepositoryAdapter{
		log:         log.With("component", "TemplateRepository"),
		descriptors: make(map[string]*domain.TemplateDescriptor),
	}

	builtin, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("open builtin templates: %w", err)
	}
	if err := r.loadDir(builtin); err != nil {
		return nil, fmt.Errorf("load builtin templates: %w", err)
	}

	if cfg.TemplatesDir != "" {
		dir := cfg.TemplatesDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.ProjectRoot, dir)
		}
		if _, err := os.Stat(dir); err == nil {
			if err := r.loadDir(os.DirFS(dir)); err != nil {
				return nil, fmt.Errorf("load templates from %s: %w", dir, err)
			}
		}
	}

	r.log.Debug("templates loaded", "count", len(r.descriptors))
	return r, nil
}

func (r *RepositoryAdapter) loadDir(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return err
		}
		m, err := parseManifest(data, entry.Name())
		if err != nil {
			return err
		}
		source, err := fs.ReadFile(fsys, m.Source)
		if err != nil {
			return fmt.Errorf("template %s: read source %s: %w", m.ID, m.Source, err)
		}
		r.descriptors[m.ID] = m.descriptor(string(source))
	}
	return nil
}

// Get returns the descriptor for a template id. Unknown ids produce an
// ErrTemplateNotFound with close-match suggestions.
func (r *RepositoryAdapter) Get(ctx context.Context, id string) (*domain.TemplateDescriptor, error) {
	if d, ok := r.descriptors[id]; ok {
		return d, nil
	}

	ids := lo.Keys(r.descriptors)
	sort.Strings(ids)
	matches := fuzzy.Find(id, ids)
	if len(matches) > 0 {
		return nil, fmt.Errorf("%w: %q (did you mean %q?)", domain.ErrTemplateNotFound, id, matches[0].Str)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, id)
}

// List returns all known descriptors sorted by id.
func (r *RepositoryAdapter) List(ctx context.Context) ([]*domain.TemplateDescriptor, error) {
	ids := lo.Keys(r.descriptors)
	sort.Strings(ids)
	return lo.Map(ids, func(id string, _ int) *domain.TemplateDescriptor {
		return r.descriptors[id]
	}), nil
}
