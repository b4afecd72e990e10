package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base holds the connection shared by the gorm repositories. A Base bound to a
// transaction via WithTx keeps every query on that transaction.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection scoped to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx rebinds to tx; a nil tx keeps the current connection.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// UpdateExisting applies updates to the row matching id and reports
// gorm.ErrRecordNotFound when nothing matched.
func (b Base) UpdateExisting(ctx context.Context, model any, id any, updates map[string]any) error {
	res := b.DB(ctx).Model(model).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
