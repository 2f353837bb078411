package domain

import (
	"fmt"
	"strings"
)

// CreateInput carries the fields accepted when creating an entry.
// Preview is accepted for compatibility but always recomputed from Content.
type CreateInput struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Preview string `json:"preview,omitempty"`
	Icon    Icon   `json:"icon,omitempty"`
}

func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	return validateIcon(in.Icon)
}

// UpdateInput is a partial update: nil fields are left untouched.
// An empty Icon clears the icon, an empty Title resets it to the default.
type UpdateInput struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Preview *string `json:"preview,omitempty"`
	Icon    *Icon   `json:"icon,omitempty"`
}

func (in UpdateInput) Validate() error {
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return fmt.Errorf("%w: content cannot be empty", ErrValidation)
	}
	if in.Icon != nil {
		return validateIcon(*in.Icon)
	}
	return nil
}

func validateIcon(i Icon) error {
	if i != "" && !i.Valid() {
		return fmt.Errorf("%w: unknown icon %q", ErrValidation, i)
	}
	return nil
}
