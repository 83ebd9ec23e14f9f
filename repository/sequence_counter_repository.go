package repository

import (
	"context"

	"gorm.io/gorm"
)

// nextValueSQL increments a counter atomically; concurrent callers serialize on the row lock
const nextValueSQL = `INSERT INTO sequence_counters (name, last_value, created_at, updated_at)
VALUES (?, (?) + 1, NOW(), NOW())
ON CONFLICT (name) DO UPDATE
SET last_value = sequence_counters.last_value + 1, updated_at = NOW()
RETURNING last_value`

// SequenceCounterRepositoryImpl implements SequenceCounterRepository interface
type SequenceCounterRepositoryImpl struct {
	db *gorm.DB
}

func NewSequenceCounterRepository(db *gorm.DB) SequenceCounterRepository {
	return &SequenceCounterRepositoryImpl{db: db}
}

func (r *SequenceCounterRepositoryImpl) Next(ctx context.Context, name string, seed *gorm.DB) (int64, error) {
	db := r.db.WithContext(ctx)
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		db = tx.WithContext(ctx)
	}

	var floor any = gorm.Expr("0")
	if seed != nil {
		floor = seed
	}

	var value int64
	if err := db.Raw(nextValueSQL, name, floor).Scan(&value).Error; err != nil {
		return 0, toStoreError("next sequence value", err)
	}
	return value, nil
}
