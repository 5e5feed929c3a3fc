package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db   *sql.DB
	path string
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens (or creates) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	if err := MigrateUp(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	repo.path = path
	return repo, nil
}

func (r *SQLiteRepository) Path() string {
	return r.path
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (Setting, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM settings WHERE key = ?`, key)
	item, err := scanSetting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Setting{}, ErrNotFound
		}
		return Setting{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) PutSetting(ctx context.Context, in Setting) error {
	if strings.TrimSpace(in.Key) == "" {
		return errors.New("storage: setting key is required")
	}
	updated := in.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		in.Key, in.Value, mustTime(updated),
	)
	return err
}

func (r *SQLiteRepository) CreateResult(ctx context.Context, in Result) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO test_results (id, test_id, label, category, eye, value, unit, notes, distance_cm, recorded_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.TestID, in.Label, in.Category, in.Eye, in.Value, in.Unit, in.Notes,
		nullFloat(in.DistanceCM), mustTime(in.RecordedAt), mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) ListResults(ctx context.Context, filter ResultListFilter) ([]Result, error) {
	query := `SELECT id, test_id, label, category, eye, value, unit, notes, distance_cm, recorded_at, created_at FROM test_results`
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Eye != "" {
		clauses = append(clauses, "eye = ?")
		args = append(args, filter.Eye)
	}
	if text := strings.TrimSpace(filter.Text); text != "" {
		clauses = append(clauses, "LOWER(label) LIKE ?")
		args = append(args, "%"+strings.ToLower(text)+"%")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY recorded_at DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0)
	for rows.Next() {
		item, scanErr := scanResult(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteResults(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM test_results`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpsertCheckin stores in under its day, replacing an earlier entry for the
// same day but keeping its created_at.
func (r *SQLiteRepository) UpsertCheckin(ctx context.Context, in Checkin) error {
	if strings.TrimSpace(in.Day) == "" {
		return errors.New("storage: checkin day is required")
	}
	updated := in.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	created := in.CreatedAt
	if created.IsZero() {
		created = updated
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checkins (day, mood, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			mood = excluded.mood,
			note = excluded.note,
			updated_at = excluded.updated_at`,
		in.Day, in.Mood, in.Note, mustTime(created), mustTime(updated),
	)
	return err
}

// ListCheckins returns entries on or after sinceDay, oldest first. An empty
// sinceDay lists everything.
func (r *SQLiteRepository) ListCheckins(ctx context.Context, sinceDay string) ([]Checkin, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT day, mood, note, created_at, updated_at FROM checkins WHERE day >= ? ORDER BY day ASC`,
		sinceDay,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Checkin, 0)
	for rows.Next() {
		item, scanErr := scanCheckin(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSetting(s scanner) (Setting, error) {
	var out Setting
	var updated string
	if err := s.Scan(&out.Key, &out.Value, &updated); err != nil {
		return Setting{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return Setting{}, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}

func scanResult(s scanner) (Result, error) {
	var out Result
	var distance sql.NullFloat64
	var recorded string
	var created string
	if err := s.Scan(&out.ID, &out.TestID, &out.Label, &out.Category, &out.Eye, &out.Value, &out.Unit, &out.Notes, &distance, &recorded, &created); err != nil {
		return Result{}, err
	}
	recordedAt, err := parseRequiredTime(recorded)
	if err != nil {
		return Result{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Result{}, err
	}
	if distance.Valid {
		d := distance.Float64
		out.DistanceCM = &d
	}
	out.RecordedAt = recordedAt
	out.CreatedAt = createdAt
	return out, nil
}

func scanCheckin(s scanner) (Checkin, error) {
	var out Checkin
	var created, updated string
	if err := s.Scan(&out.Day, &out.Mood, &out.Note, &created, &updated); err != nil {
		return Checkin{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Checkin{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return Checkin{}, err
	}
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return out, nil
}
