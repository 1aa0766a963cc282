package persistence

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentStore implements ledger.DocumentStore over one table per collection
type GormDocumentStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormDocumentStore creates a new GormDocumentStore
func NewGormDocumentStore(db *gorm.DB, logger *zap.Logger) *GormDocumentStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormDocumentStore{db: db, logger: logger}
}

// Fetch reads a whole collection. Rows come back as flat records keyed by
// column name.
func (s *GormDocumentStore) Fetch(ctx context.Context, q ledger.CollectionQuery) ([]ledger.Record, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Table(models.TableFor(q.Name))
	if len(q.Fields) > 0 {
		tx = tx.Select(q.Fields)
	}
	for _, f := range q.Filters {
		tx = tx.Where(filterExpr(f))
	}
	for _, o := range q.OrderBy {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Field}, Desc: o.Desc})
	}

	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch %s: %w", q.Name, err)
	}

	records := make([]ledger.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, normalizeRow(row))
	}
	s.logger.Debug("Collection fetched",
		zap.String("collection", q.Name.String()),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func filterExpr(f ledger.Filter) clause.Expression {
	col := clause.Column{Name: f.Field}
	switch f.Op {
	case ledger.OpNotEqual:
		return clause.Neq{Column: col, Value: f.Value}
	case ledger.OpLess:
		return clause.Lt{Column: col, Value: f.Value}
	case ledger.OpLessEqual:
		return clause.Lte{Column: col, Value: f.Value}
	case ledger.OpGreater:
		return clause.Gt{Column: col, Value: f.Value}
	case ledger.OpGreaterEqual:
		return clause.Gte{Column: col, Value: f.Value}
	case ledger.OpIn:
		return clause.IN{Column: col, Values: listValues(f.Value)}
	default:
		return clause.Eq{Column: col, Value: f.Value}
	}
}

// normalizeRow converts driver byte slices to strings. Postgres returns
// numeric and jsonb columns as []byte.
func normalizeRow(row map[string]any) ledger.Record {
	rec := make(ledger.Record, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			rec[k] = string(b)
			continue
		}
		rec[k] = v
	}
	return rec
}
