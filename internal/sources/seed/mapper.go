package seed

import (
	"fmt"

	"github.com/MrSnakeDoc/snote/internal/domain"
)

// Map converts a seed file into create inputs, in file order. Every entry is
// validated; the first invalid one aborts the mapping.
func Map(f *File) ([]domain.CreateInput, error) {
	if f == nil || len(f.Entries) == 0 {
		return nil, fmt.Errorf("no entries found in seed file")
	}

	inputs := make([]domain.CreateInput, 0, len(f.Entries))
	for i, props := range f.Entries {
		in := domain.CreateInput{
			Title:   props.Title,
			Content: props.Content,
			Icon:    domain.Icon(props.Icon),
		}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i+1, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}
