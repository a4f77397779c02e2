package repository

import (
	"context"
	"database/sql"

	"github.com/jsbarre1/jwt-pizza/internal/model"
)

// MenuRepo reads the pizza catalog. The catalog is externally
// supplied: rows are seeded at startup and never written through
// the API.
type MenuRepo struct{ DB *sql.DB }

func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{DB: db} }

// List returns the full catalog ordered by id.
func (r *MenuRepo) List(ctx context.Context) ([]model.MenuItem, error) {
	return retryRead(ctx, func() ([]model.MenuItem, error) { return r.list(ctx) })
}

func (r *MenuRepo) list(ctx context.Context) ([]model.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, title, image, price, description FROM menu ORDER BY id ASC")
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	items := []model.MenuItem{}
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.Title, &m.Image, &m.Price, &m.Description); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// Seed inserts the given catalog entries when the menu table is
// empty. Called once at startup; a populated table is left as is.
func (r *MenuRepo) Seed(ctx context.Context, items []model.MenuItem) error {
	var n int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM menu").Scan(&n); err != nil {
		return storageErr(err)
	}
	if n > 0 {
		return nil
	}
	for _, m := range items {
		if _, err := r.DB.ExecContext(ctx,
			"INSERT INTO menu (title, image, price, description) VALUES (?,?,?,?)",
			m.Title, m.Image, m.Price, m.Description); err != nil {
			return storageErr(err)
		}
	}
	return nil
}
