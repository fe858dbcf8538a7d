package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/querybench/internal/records"
	"github.com/mesh-intelligence/querybench/pkg/types"
)

// Seed bulk-loads the configured users file, then the activities file.
// Empty paths are skipped. Users load first so activity foreign keys
// resolve.
func (b *Backend) Seed(ctx context.Context, cfg types.SeedConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.handle(); err != nil {
		return err
	}
	return b.seed(ctx, cfg)
}

// seed runs the startup load against b.db. The caller must hold b.mu.
func (b *Backend) seed(ctx context.Context, cfg types.SeedConfig) error {
	steps := []struct {
		path    string
		mapping loadMapping
	}{
		{cfg.Users, usersMapping},
		{cfg.Activities, activitiesMapping},
	}

	for _, step := range steps {
		if step.path == "" {
			continue
		}
		recs, err := records.Read(step.path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", step.path, err)
		}
		n, err := b.insertRecords(ctx, b.db, step.mapping, recs)
		if err != nil {
			return err
		}
		b.log.Debug().Str("file", step.path).Int("rows", n).Msg("seeded")
	}
	return nil
}
