// Package repository provides the entity stores backed by PostgreSQL
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// BaseRepository provides common repository functionality with transaction support
type BaseRepository[T any] struct {
	DB *gorm.DB
}

// NewBaseRepository creates a new base repository instance
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{
		DB: db,
	}
}

// getDB returns the appropriate database connection (with or without transaction)
func (r *BaseRepository[T]) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return r.DB.WithContext(ctx)
}

// withWrite runs fn inside the ambient transaction, or a new one committed on success
func (r *BaseRepository[T]) withWrite(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return fn(ctx, tx.WithContext(ctx))
	}
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		return fn(txCtx, r.getDB(txCtx))
	})
}

// deleteByID removes the row with the given id; zero affected rows is reported as not found
func (r *BaseRepository[T]) deleteByID(ctx context.Context, op, entity string, id any) error {
	var model T
	res := r.getDB(ctx).Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		return toStoreError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(op, entity, id)
	}
	return nil
}

// updateColumns writes cols on the row with the given id
func (r *BaseRepository[T]) updateColumns(db *gorm.DB, op, entity string, id any, cols map[string]any) error {
	var model T
	res := db.Model(&model).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return toStoreError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(op, entity, id)
	}
	return nil
}

// WithTransaction executes a function within a database transaction
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(context.Context) error) (err error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return toStoreError("begin", fmt.Errorf("failed to begin transaction: %w", tx.Error))
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", r)
		}
	}()

	ctx = context.WithValue(ctx, TxContextKey, tx)

	if err := fn(ctx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return toStoreError("commit", fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}
