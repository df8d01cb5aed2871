// Package slugs turns display names into unique url slugs.
package slugs

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Make lowercases and transliterates name to an ascii slug.
func Make(name string) string {
	return slug.Make(name)
}

// Exists reports whether another row of model already uses s.
type Exists func(ctx context.Context, s string) (bool, error)

// TableExists checks the slug column of model's table through db.
func TableExists(db *gorm.DB, model any) Exists {
	return func(ctx context.Context, s string) (bool, error) {
		var count int64
		err := db.WithContext(ctx).Model(model).Where("slug = ?", s).Count(&count).Error
		return count > 0, err
	}
}

// Unique derives a slug for name that no other row uses. When the base slug equals
// current, current is returned as-is so edits that keep the name do not churn it.
// Collisions get -1, -2, ... appended until a free slug is found.
func Unique(ctx context.Context, name, current string, exists Exists) (string, error) {
	base := Make(name)
	if base == "" {
		return "", fmt.Errorf("name %q has no slug-able characters", name)
	}
	if base == current {
		return current, nil
	}

	candidate := base
	for i := 1; ; i++ {
		if candidate == current {
			return candidate, nil
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
