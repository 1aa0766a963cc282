package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedData is a set of raw records per collection, as read from a seed file
type SeedData map[ledger.CollectionName][]ledger.Record

// ReadSeedFile reads a JSON object of collection name to record array.
// Numbers are kept as json.Number so amounts are not rounded through float64.
func ReadSeedFile(path string) (SeedData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var raw map[string][]map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	data := make(SeedData, len(raw))
	for name, rows := range raw {
		records := make([]ledger.Record, len(rows))
		for i, row := range rows {
			records[i] = ledger.Record(row)
		}
		data[ledger.CollectionName(name)] = records
	}
	return data, nil
}

// Seeder writes seed records into the collection tables
type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(db *gorm.DB, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{db: db, logger: logger}
}

// Seed upserts every record in one transaction and returns the row count per
// collection. Columns outside the collection projection are rejected.
func (s *Seeder) Seed(ctx context.Context, data SeedData) (map[ledger.CollectionName]int, error) {
	names := make([]ledger.CollectionName, 0, len(data))
	for name := range data {
		if !name.IsValid() {
			return nil, shared.ErrInvalidInput.WithDetail("unknown collection %q", string(name))
		}
		names = append(names, name)
	}
	slices.Sort(names)

	counts := make(map[ledger.CollectionName]int, len(names))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			for i, record := range data[name] {
				row, err := seedRow(name, record)
				if err != nil {
					return fmt.Errorf("%s[%d]: %w", name, i, err)
				}
				err = tx.Table(models.TableFor(name)).
					Clauses(upsertOnID(row)).
					Create(row).Error
				if err != nil {
					return fmt.Errorf("seed %s[%d]: %w", name, i, err)
				}
			}
			counts[name] = len(data[name])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		s.logger.Info("Collection seeded",
			zap.String("collection", name.String()),
			zap.Int("records", counts[name]),
		)
	}
	return counts, nil
}

// seedRow validates the record columns and flattens invoice lines to the
// JSON text the order tables store
func seedRow(name ledger.CollectionName, record ledger.Record) (map[string]any, error) {
	if record.String("id") == "" {
		return nil, shared.ErrInvalidInput.WithDetail("record without id")
	}
	row := make(map[string]any, len(record))
	for field, value := range record {
		if err := ValidateField(name, field); err != nil {
			return nil, err
		}
		switch v := value.(type) {
		case json.Number:
			row[field] = v.String()
		case map[string]any, []any:
			if field != "invoice_lines" {
				return nil, shared.ErrInvalidInput.WithDetail("field %q must be a scalar", field)
			}
			text, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			row[field] = string(text)
		default:
			row[field] = v
		}
	}
	return row, nil
}

func upsertOnID(row map[string]any) clause.OnConflict {
	columns := make([]string, 0, len(row))
	for field := range row {
		if field != "id" {
			columns = append(columns, field)
		}
	}
	slices.Sort(columns)
	if len(columns) == 0 {
		return clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}
	}
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}
}
