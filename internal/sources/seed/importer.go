package seed

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/logger"
)

// Creator is the part of the entry service an import needs.
type Creator interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, in domain.CreateInput) (*domain.Entry, error)
}

// Import creates the entries of the seed file at path, but only when the
// store is empty. It returns the number of entries created.
func Import(ctx context.Context, path string, svc Creator, log logger.Logger) (int, error) {
	n, err := svc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	if n > 0 {
		log.Info("store not empty, skipping seed import",
			logger.String("file", path),
			logger.Int("entries", n))
		return 0, nil
	}

	f, err := NewLoader(path).Load()
	if err != nil {
		return 0, err
	}
	inputs, err := Map(f)
	if err != nil {
		return 0, err
	}

	for i, in := range inputs {
		if _, err := svc.Create(ctx, in); err != nil {
			return i, fmt.Errorf("failed to import seed entry %d: %w", i+1, err)
		}
	}

	log.Info("seed entries imported",
		logger.String("file", path),
		logger.Int("count", len(inputs)))
	return len(inputs), nil
}
