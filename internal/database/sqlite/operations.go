package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/Masterminds/squirrel"
)

// validIdentifier guards table and column names that end up in SQL text.
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func isValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// ExecuteMigration runs a single DDL statement outside of any batch.
func (s *Adapter) ExecuteMigration(ctx context.Context, ddl string) error {
	if s.db == nil {
		return ErrNotConnected
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

func (s *Adapter) CheckTableExists(ctx context.Context, tableName string) (bool, error) {
	if s.db == nil {
		return false, ErrNotConnected
	}
	query, args, err := s.qb.Select("COUNT(*) > 0").From("sqlite_master").
		Where(squirrel.Eq{"type": "table", "name": tableName}).ToSql()
	if err != nil {
		return false, err
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", tableName, err)
	}
	return exists, nil
}

// InsertRows writes rows into tableName inside one committed transaction.
// Each row must hold one value per column, in column order.
func (s *Adapter) InsertRows(ctx context.Context, tableName string, columns []string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	if !isValidIdentifier(tableName) {
		return fmt.Errorf("invalid table name: %s", tableName)
	}
	for _, col := range columns {
		if !isValidIdentifier(col) {
			return fmt.Errorf("invalid column name: %s", col)
		}
	}

	query, _, err := s.qb.Insert(tableName).Columns(columns...).
		Values(make([]interface{}, len(columns))...).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, row := range rows {
			if len(row) != len(columns) {
				return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(columns))
			}
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return fmt.Errorf("failed to insert row %d: %w", i, err)
			}
		}
		return nil
	})
}

// DeleteAll removes every row of tableName and returns how many were deleted.
func (s *Adapter) DeleteAll(ctx context.Context, tableName string) (int64, error) {
	if !isValidIdentifier(tableName) {
		return 0, fmt.Errorf("invalid table name: %s", tableName)
	}

	query, args, err := s.qb.Delete(tableName).ToSql()
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to delete from %s: %w", tableName, err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

func (s *Adapter) GetTableRowCount(ctx context.Context, tableName string) (int64, error) {
	if s.db == nil {
		return 0, ErrNotConnected
	}
	if !isValidIdentifier(tableName) {
		return 0, fmt.Errorf("invalid table name: %s", tableName)
	}

	query, args, err := s.qb.Select("COUNT(*)").From(tableName).ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in table %s: %w", tableName, err)
	}
	return count, nil
}

// Query runs a read query and returns the rows as column-keyed maps.
func (s *Adapter) Query(ctx context.Context, builder squirrel.SelectBuilder) ([]map[string]interface{}, error) {
	if s.db == nil {
		return nil, ErrNotConnected
	}
	query, args, err := builder.PlaceholderFormat(squirrel.Question).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}
