package services

import (
	"context"

	"surveyhub/internal/database"
	"surveyhub/internal/logger"

	"gorm.io/gorm"
)

type txContextKey struct{}

// GetTransaction returns the ambient transaction placed in the context by
// TransactionService.Execute, if any. Repositories call this so reads and
// writes inside a unit of work share one transaction.
func GetTransaction(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx, ok
}

// TransactionService scopes a function to a single database transaction.
// Everything inside fn commits or rolls back as one unit; non-transactional
// side effects (mail, geocoding) belong outside Execute.
type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("TransactionService"),
	}
}

func (s *TransactionService) Execute(ctx context.Context, fn func(txCtx context.Context) error) error {
	log := s.log.Function("Execute")

	// Nested Execute calls join the outer transaction.
	if _, ok := GetTransaction(ctx); ok {
		return fn(ctx)
	}

	tx := s.db.SQLWithContext(ctx).Begin()
	if tx.Error != nil {
		return log.Err("failed to begin transaction", tx.Error)
	}

	txCtx := context.WithValue(ctx, txContextKey{}, tx)

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return log.Err("failed to commit transaction", err)
	}

	return nil
}
