package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xet-labs/xet-composer/internal/domain"
	"github.com/xet-labs/xet-composer/internal/domain/config"
)

// ArtifactStoreAdapter persists deployment records as JSON files under
// <artifact dir>/YYYY-MM-DD/<Contract>-<unix>.json. The pipeline treats
// persistence as best effort; a failed save never fails a deployment.
type ArtifactStoreAdapter struct {
	baseDir string
	log     *slog.Logger
	now     func() time.Time
}

// NewArtifactStoreAdapter creates a store rooted at cfg.ArtifactDir,
// resolved against the project root when relative.
func NewArtifactStoreAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *ArtifactStoreAdapter {
	dir := cfg.ArtifactDir
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.ProjectRoot, dir)
	}
	return &ArtifactStoreAdapter{
		baseDir: dir,
		log:     log.With("component", "ArtifactStore"),
		now:     time.Now,
	}
}

// Save writes the record and returns the file path. An empty base dir
// disables persistence.
func (s *ArtifactStoreAdapter) Save(ctx context.Context, rec *domain.DeploymentRecord) (string, error) {
	if s.baseDir == "" {
		return "", nil
	}

	now := s.now().UTC()
	dir := filepath.Join(s.baseDir, now.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}

	if rec.DeployedAt == 0 {
		rec.DeployedAt = now.Unix()
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode deployment record: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%d.json", rec.ContractName, now.Unix()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write deployment record: %w", err)
	}

	s.log.Debug("deployment record saved", "path", path)
	return path, nil
}
