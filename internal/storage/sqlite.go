package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"khata/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements Store and Exporter on a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Add(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (date, time, amount_cents, category, description)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Date.ISO(), e.TimeOfDay, e.Amount.Cents, e.Category, e.Description,
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, time, amount_cents, category, description
		 FROM expenses
		 ORDER BY date DESC, time DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent expenses: %w", err)
	}
	defer rows.Close()
	return scanExpenses(rows)
}

func (r *SQLiteRepository) TotalForDate(ctx context.Context, date core.Date) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE date = ?`,
		date.ISO(),
	).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("query day total: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func (r *SQLiteRepository) TotalsByCategory(ctx context.Context) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COALESCE(SUM(amount_cents), 0) AS total
		 FROM expenses
		 GROUP BY category
		 ORDER BY total DESC`)
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()
	return scanCategoryTotals(rows)
}

func (r *SQLiteRepository) CategoryTotalsBetween(ctx context.Context, from, to core.Date) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COALESCE(SUM(amount_cents), 0) AS total
		 FROM expenses
		 WHERE date BETWEEN ? AND ?
		 GROUP BY category
		 ORDER BY total DESC`,
		from.ISO(), to.ISO())
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()
	return scanCategoryTotals(rows)
}

func (r *SQLiteRepository) DailyTotals(ctx context.Context, from, to core.Date) ([]core.DayTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, COALESCE(SUM(amount_cents), 0) AS total
		 FROM expenses
		 WHERE date BETWEEN ? AND ?
		 GROUP BY date
		 ORDER BY date`,
		from.ISO(), to.ISO())
	if err != nil {
		return nil, fmt.Errorf("query daily totals: %w", err)
	}
	defer rows.Close()

	var totals []core.DayTotal
	for rows.Next() {
		var iso string
		var cents int64
		if err := rows.Scan(&iso, &cents); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		date, err := core.ParseDate(iso)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", iso, err)
		}
		totals = append(totals, core.DayTotal{Date: date, Total: core.Money{Cents: cents}})
	}
	return totals, rows.Err()
}

func (r *SQLiteRepository) DeleteLast(ctx context.Context) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, date, time, amount_cents, category, description
		 FROM expenses
		 ORDER BY date DESC, time DESC, id DESC
		 LIMIT 1`)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNoExpenses
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("query last expense: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, e.ID); err != nil {
		return core.Expense{}, fmt.Errorf("delete expense %d: %w", e.ID, err)
	}
	return e, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete expense %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) PendingExport(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, time, amount_cents, category, description
		 FROM expenses
		 WHERE export_state = 'pending'
		 ORDER BY id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending export: %w", err)
	}
	defer rows.Close()
	return scanExpenses(rows)
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET export_state = 'exported', exported_at = datetime('now') WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark expense %d exported: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET export_state = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark expense %d export error: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var e core.Expense
	var iso string
	var cents int64
	if err := row.Scan(&e.ID, &iso, &e.TimeOfDay, &cents, &e.Category, &e.Description); err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(iso)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse stored date %q: %w", iso, err)
	}
	e.Date = date
	e.Amount = core.Money{Cents: cents}
	return e, nil
}

func scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func scanCategoryTotals(rows *sql.Rows) ([]core.CategoryTotal, error) {
	var totals []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		var cents int64
		if err := rows.Scan(&ct.Category, &cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		ct.Total = core.Money{Cents: cents}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}
