// Package sqlite is the device-local mirror of the remote data set. The
// mirror worker replays record mutations into it; amounts are stored as
// decimal text, dates as RFC 3339.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/Carlos-Bolano/Pocka/internal/core"
	"github.com/Carlos-Bolano/Pocka/internal/remote"
	"github.com/Carlos-Bolano/Pocka/internal/seed"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (creating if needed) the database at dbPath, runs migrations,
// and seeds the default category catalog on first use.
func New(dbPath string) (*Store, error) {
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

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.seedCategories(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) seedCategories(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	now := s.now().UTC().Format(time.RFC3339Nano)
	for _, c := range seed.Categories() {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO categories (id, name, icon_family, icon_name, kind, user_defined, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
			uuid.NewString(), c.Name, c.Icon.Family, c.Icon.Name, string(c.Kind), now, now)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, target_amount, current_amount, start_date, status,
		       icon_family, icon_name, color, description, created_at, updated_at
		FROM goals WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, target_amount, current_amount, start_date, status,
		       icon_family, icon_name, color, description, created_at, updated_at
		FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, remote.ErrNotFound
	}
	return g, err
}

func (s *Store) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = s.now().UTC()
	g.UpdatedAt = g.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (id, owner_id, name, target_amount, current_amount, start_date, status,
		                   icon_family, icon_name, color, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(),
		formatTime(g.StartDate), string(g.Status), g.Icon.Family, g.Icon.Name, g.Color,
		g.Description, formatTime(g.CreatedAt), formatTime(g.UpdatedAt))
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.UpdatedAt = s.now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE goals SET name = ?, target_amount = ?, current_amount = ?, start_date = ?,
		       status = ?, icon_family = ?, icon_name = ?, color = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), formatTime(g.StartDate),
		string(g.Status), g.Icon.Family, g.Icon.Name, g.Color, g.Description,
		formatTime(g.UpdatedAt), g.ID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Goal{}, remote.ErrNotFound
	}
	return s.GetGoal(ctx, g.ID)
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "goals", id)
}

func (s *Store) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, amount, type, category_id, date, description, created_at, updated_at
		FROM transactions WHERE owner_id = ? ORDER BY date DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, amount, type, category_id, date, description, created_at, updated_at
		FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, remote.ErrNotFound
	}
	return t, err
}

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = s.now().UTC()
	t.UpdatedAt = t.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_id, amount, type, category_id, date, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Amount.String(), string(t.Type), t.CategoryID,
		formatTime(t.Date), t.Description, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.UpdatedAt = s.now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET amount = ?, type = ?, category_id = ?, date = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		t.Amount.String(), string(t.Type), t.CategoryID, formatTime(t.Date),
		t.Description, formatTime(t.UpdatedAt), t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, remote.ErrNotFound
	}
	return s.GetTransaction(ctx, t.ID)
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "transactions", id)
}

func (s *Store) ListCategories(ctx context.Context, filter remote.CategoryFilter) ([]core.Category, error) {
	query := `SELECT id, name, icon_family, icon_name, kind, user_defined, created_at, updated_at FROM categories`
	var (
		conds []string
		args  []any
	)
	if filter.Kind != nil {
		conds = append(conds, "kind = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.UserDefined != nil {
		conds = append(conds, "user_defined = ?")
		args = append(args, boolToInt(*filter.UserDefined))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, icon_family, icon_name, kind, user_defined, created_at, updated_at
		FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, remote.ErrNotFound
	}
	return c, err
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = s.now().UTC()
	c.UpdatedAt = c.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon_family, icon_name, kind, user_defined, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon.Family, c.Icon.Name, string(c.Kind),
		boolToInt(c.UserDefined), formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	prev, err := s.GetCategory(ctx, c.ID)
	if err != nil {
		return core.Category{}, err
	}
	if c.Kind != prev.Kind {
		return core.Category{}, remote.ErrImmutableKind
	}
	c.UpdatedAt = s.now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, icon_family = ?, icon_name = ?, user_defined = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Icon.Family, c.Icon.Name, boolToInt(c.UserDefined),
		formatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return s.GetCategory(ctx, c.ID)
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "categories", id)
}

func (s *Store) deleteRow(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return remote.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(row scanner) (core.Goal, error) {
	var (
		g                                          core.Goal
		target, current, start, createdAt, updated string
		status                                     string
	)
	err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &target, &current, &start, &status,
		&g.Icon.Family, &g.Icon.Name, &g.Color, &g.Description, &createdAt, &updated)
	if err != nil {
		return core.Goal{}, err
	}
	g.Status = core.GoalStatus(status)
	if g.TargetAmount, err = decimal.NewFromString(target); err != nil {
		return core.Goal{}, fmt.Errorf("parse target amount: %w", err)
	}
	if g.CurrentAmount, err = decimal.NewFromString(current); err != nil {
		return core.Goal{}, fmt.Errorf("parse current amount: %w", err)
	}
	if g.StartDate, err = parseTime(start); err != nil {
		return core.Goal{}, err
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Goal{}, err
	}
	if g.UpdatedAt, err = parseTime(updated); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		t                                  core.Transaction
		amount, date, createdAt, updatedAt string
		typ                                string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &amount, &typ, &t.CategoryID, &date,
		&t.Description, &createdAt, &updatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	if t.Date, err = parseTime(date); err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Transaction{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func scanCategory(row scanner) (core.Category, error) {
	var (
		c                    core.Category
		kind                 string
		userDefined          int
		createdAt, updatedAt string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Icon.Family, &c.Icon.Name, &kind,
		&userDefined, &createdAt, &updatedAt)
	if err != nil {
		return core.Category{}, err
	}
	c.Kind = core.CategoryKind(kind)
	c.UserDefined = userDefined != 0
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Category{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return time.Time{}.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
