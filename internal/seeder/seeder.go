package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/overlord-seed/internal/config"
	"github.com/Lumos-Labs-HQ/overlord-seed/internal/database/sqlite"
	"github.com/Masterminds/squirrel"
)

const createClientsTable = `CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	hwid TEXT,
	role TEXT,
	host TEXT,
	os TEXT,
	arch TEXT,
	version TEXT,
	user TEXT,
	monitors INTEGER,
	country TEXT,
	last_seen INTEGER,
	online INTEGER,
	ping_ms INTEGER
)`

// Store is the datastore surface the Seeder writes through.
type Store interface {
	ExecuteMigration(ctx context.Context, ddl string) error
	CheckTableExists(ctx context.Context, tableName string) (bool, error)
	InsertRows(ctx context.Context, tableName string, columns []string, rows [][]interface{}) error
	DeleteAll(ctx context.Context, tableName string) (int64, error)
	GetTableRowCount(ctx context.Context, tableName string) (int64, error)
	Query(ctx context.Context, builder squirrel.SelectBuilder) ([]map[string]interface{}, error)
	Close() error
}

type Seeder struct {
	store     Store
	generator *DataGenerator
	now       func() time.Time
}

// New wraps an already connected store. A nil generator gets a clock-seeded one.
func New(store Store, generator *DataGenerator) *Seeder {
	if generator == nil {
		generator = NewDataGenerator()
	}
	return &Seeder{
		store:     store,
		generator: generator,
		now:       time.Now,
	}
}

// Open connects to the SQLite file at dbPath and returns a Seeder owning that
// connection. Callers must Close it.
func Open(ctx context.Context, dbPath string, generator *DataGenerator) (*Seeder, error) {
	adapter := sqlite.New()
	if err := adapter.Connect(ctx, dbPath); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(adapter, generator), nil
}

func (s *Seeder) Close() error {
	return s.store.Close()
}

// EnsureSchema creates the clients table when it does not exist yet.
func (s *Seeder) EnsureSchema(ctx context.Context) error {
	if err := s.store.ExecuteMigration(ctx, createClientsTable); err != nil {
		return fmt.Errorf("failed to ensure %s schema: %w", ClientsTable, err)
	}
	return nil
}

// TableExists reports whether the clients table has been created.
func (s *Seeder) TableExists(ctx context.Context) (bool, error) {
	return s.store.CheckTableExists(ctx, ClientsTable)
}

// Count returns the number of rows in the clients table.
func (s *Seeder) Count(ctx context.Context) (int64, error) {
	return s.store.GetTableRowCount(ctx, ClientsTable)
}

// OnlineCount returns how many rows of the clients table are marked online.
func (s *Seeder) OnlineCount(ctx context.Context) (int64, error) {
	rows, err := s.store.Query(ctx, squirrel.Select("COUNT(*) AS n").
		From(ClientsTable).Where(squirrel.Eq{"online": 1}))
	if err != nil {
		return 0, fmt.Errorf("failed to count online clients: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, ok := rows[0]["n"].(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected online count type %T", rows[0]["n"])
	}
	return n, nil
}

func validate(cfg SeedConfig) error {
	if cfg.Count < 0 {
		return fmt.Errorf("%w, got %d", config.ErrInvalidCount, cfg.Count)
	}
	if cfg.OnlineRate < 0 || cfg.OnlineRate > 1 {
		return fmt.Errorf("%w, got %g", config.ErrInvalidOnlineRate, cfg.OnlineRate)
	}
	if cfg.Batch < 0 {
		return fmt.Errorf("%w, got %d", config.ErrInvalidBatchSize, cfg.Batch)
	}
	return nil
}

// Seed ensures the schema, optionally clears the table, then writes cfg.Count
// generated clients with one committed transaction per batch. A failed batch
// aborts the run; batches committed before it stay in place.
func (s *Seeder) Seed(ctx context.Context, cfg SeedConfig) (SeedResult, error) {
	var result SeedResult

	if err := validate(cfg); err != nil {
		return result, err
	}

	start := s.now()

	if err := s.EnsureSchema(ctx); err != nil {
		return result, err
	}

	if cfg.Truncate {
		deleted, err := s.store.DeleteAll(ctx, ClientsTable)
		if err != nil {
			return result, fmt.Errorf("failed to truncate %s: %w", ClientsTable, err)
		}
		result.Deleted = deleted
	}

	batchSize := cfg.Batch
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}

	nowMs := start.UnixMilli()
	// capped by count: a batch size above it never fills
	rows := make([][]interface{}, 0, bufferSize(cfg.Count, batchSize))

	err := s.generator.Batches(cfg.Count, batchSize, nowMs, cfg.OnlineRate, func(batch []ClientRecord) error {
		rows = rows[:0]
		for _, record := range batch {
			rows = append(rows, record.Values())
		}

		if err := s.store.InsertRows(ctx, ClientsTable, ClientColumns, rows); err != nil {
			return fmt.Errorf("failed to insert batch %d: %w", result.Batches+1, err)
		}

		result.Inserted += len(batch)
		result.Batches++
		if cfg.Progress != nil {
			cfg.Progress(result.Inserted, cfg.Count)
		}
		return nil
	})

	result.Duration = s.now().Sub(start)
	return result, err
}

func bufferSize(count, batchSize int) int {
	if count < batchSize {
		return count
	}
	return batchSize
}
