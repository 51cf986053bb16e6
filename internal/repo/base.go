package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by gorm-backed stores.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx when one is given.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Scoped narrows every statement to rows matching conds.
func (b Base) Scoped(ctx context.Context, conds map[string]any) *gorm.DB {
	return b.DB(ctx).Where(conds)
}
