package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jsbarre1/jwt-pizza/internal/model"
)

// FranchiseRepo owns franchises, their admin references and their
// stores. Store rows carry the authoritative total_revenue
// accumulator; the order repository credits it, this repository
// only ever reads it.
type FranchiseRepo struct{ DB *sql.DB }

func NewFranchiseRepo(db *sql.DB) *FranchiseRepo { return &FranchiseRepo{DB: db} }

var ErrNameExists = errors.New("franchise name already exists")

// Create inserts a franchise, records its admin users and grants
// each of them a franchisee role scoped to the new franchise. All
// admin ids must resolve to existing users.
func (r *FranchiseRepo) Create(ctx context.Context, name string, adminIDs []uint64) (model.Franchise, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Franchise{}, storageErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "INSERT INTO franchises (name) VALUES (?)", name)
	if err != nil {
		if isDuplicate(err) {
			return model.Franchise{}, ErrNameExists
		}
		return model.Franchise{}, storageErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Franchise{}, err
	}
	fid := uint64(id)

	admins := make([]model.UserRef, 0, len(adminIDs))
	for _, uid := range adminIDs {
		var ref model.UserRef
		err := tx.QueryRowContext(ctx,
			"SELECT id,name,email FROM users WHERE id=? LIMIT 1", uid).
			Scan(&ref.ID, &ref.Name, &ref.Email)
		if errors.Is(err, sql.ErrNoRows) {
			return model.Franchise{}, ErrNotFound
		}
		if err != nil {
			return model.Franchise{}, storageErr(err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO franchise_admins (franchise_id, user_id) VALUES (?,?)", fid, uid); err != nil {
			return model.Franchise{}, storageErr(err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_roles (user_id, role, object_id) VALUES (?,?,?)",
			uid, model.RoleFranchisee, fid); err != nil {
			return model.Franchise{}, storageErr(err)
		}
		admins = append(admins, ref)
	}
	if err := tx.Commit(); err != nil {
		return model.Franchise{}, storageErr(err)
	}

	return model.Franchise{ID: fid, Name: name, Admins: admins, Stores: []model.Store{}}, nil
}

// GetByID returns a single franchise with its admins and stores.
func (r *FranchiseRepo) GetByID(ctx context.Context, id uint64) (model.Franchise, error) {
	return retryRead(ctx, func() (model.Franchise, error) { return r.getByID(ctx, id) })
}

func (r *FranchiseRepo) getByID(ctx context.Context, id uint64) (model.Franchise, error) {
	var f model.Franchise
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name FROM franchises WHERE id=? LIMIT 1", id).Scan(&f.ID, &f.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Franchise{}, ErrNotFound
	}
	if err != nil {
		return model.Franchise{}, storageErr(err)
	}

	admins, err := r.adminsFor(ctx, f.ID)
	if err != nil {
		return model.Franchise{}, err
	}
	f.Admins = admins

	byFranchise, err := r.storesForIDs(ctx, []uint64{f.ID})
	if err != nil {
		return model.Franchise{}, err
	}
	f.Stores = byFranchise[f.ID]
	if f.Stores == nil {
		f.Stores = []model.Store{}
	}
	return f, nil
}

// List returns one page of franchises with their stores embedded.
// Filter and pagination semantics match UserRepo.List; admins are
// omitted from listing responses.
func (r *FranchiseRepo) List(ctx context.Context, page, pageSize int, filter string) ([]model.Franchise, bool, error) {
	var more bool
	franchises, err := retryRead(ctx, func() ([]model.Franchise, error) {
		var err error
		var f []model.Franchise
		f, more, err = r.list(ctx, page, pageSize, filter)
		return f, err
	})
	return franchises, more, err
}

func (r *FranchiseRepo) list(ctx context.Context, page, pageSize int, filter string) ([]model.Franchise, bool, error) {
	page, pageSize = clampPage(page, pageSize, 10)
	cond := "1=1"
	args := []any{}
	if pattern, ok := nameLike(filter); ok {
		cond = "LOWER(name) LIKE ?"
		args = append(args, pattern)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM franchises WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, false, storageErr(err)
	}

	dataArgs := append(append([]any{}, args...), pageSize, page*pageSize)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name FROM franchises WHERE "+cond+" ORDER BY id ASC LIMIT ? OFFSET ?",
		dataArgs...)
	if err != nil {
		return nil, false, storageErr(err)
	}
	defer rows.Close()

	franchises := make([]model.Franchise, 0, pageSize)
	ids := make([]uint64, 0, pageSize)
	for rows.Next() {
		var f model.Franchise
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, false, err
		}
		franchises = append(franchises, f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, false, storageErr(err)
	}

	byFranchise, err := r.storesForIDs(ctx, ids)
	if err != nil {
		return nil, false, err
	}
	for i := range franchises {
		franchises[i].Stores = byFranchise[franchises[i].ID]
		if franchises[i].Stores == nil {
			franchises[i].Stores = []model.Store{}
		}
	}
	return franchises, hasMore(page, pageSize, total), nil
}

// CreateStore adds a store under an existing franchise with a zero
// revenue accumulator.
func (r *FranchiseRepo) CreateStore(ctx context.Context, franchiseID uint64, name string) (model.Store, error) {
	var exists uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM franchises WHERE id=? LIMIT 1", franchiseID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Store{}, ErrNotFound
	}
	if err != nil {
		return model.Store{}, storageErr(err)
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO stores (franchise_id, name, total_revenue) VALUES (?,?,0)",
		franchiseID, name)
	if err != nil {
		return model.Store{}, storageErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Store{}, err
	}
	return model.Store{ID: uint64(id), FranchiseID: franchiseID, Name: name}, nil
}

// Close deletes a franchise and cascades to its stores, admin
// references and the franchisee roles scoped to it, all in one
// transaction. Orders are untouched; they keep their franchise and
// store ids as historical references. Returns ErrNotFound when the
// franchise is already gone.
func (r *FranchiseRepo) Close(ctx context.Context, franchiseID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM user_roles WHERE role=? AND object_id=?", model.RoleFranchisee, franchiseID); err != nil {
		return storageErr(err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM franchise_admins WHERE franchise_id=?", franchiseID); err != nil {
		return storageErr(err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM stores WHERE franchise_id=?", franchiseID); err != nil {
		return storageErr(err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM franchises WHERE id=?", franchiseID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return storageErr(tx.Commit())
}

func (r *FranchiseRepo) adminsFor(ctx context.Context, franchiseID uint64) ([]model.UserRef, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT u.id, u.name, u.email
		 FROM franchise_admins fa
		 JOIN users u ON u.id = fa.user_id
		 WHERE fa.franchise_id=?
		 ORDER BY fa.id ASC`, franchiseID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	admins := []model.UserRef{}
	for rows.Next() {
		var ref model.UserRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Email); err != nil {
			return nil, err
		}
		admins = append(admins, ref)
	}
	return admins, rows.Err()
}

func (r *FranchiseRepo) storesForIDs(ctx context.Context, ids []uint64) (map[uint64][]model.Store, error) {
	out := make(map[uint64][]model.Store, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := "SELECT id, franchise_id, name, total_revenue FROM stores WHERE franchise_id IN ("
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += ") ORDER BY id ASC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var s model.Store
		if err := rows.Scan(&s.ID, &s.FranchiseID, &s.Name, &s.TotalRevenue); err != nil {
			return nil, err
		}
		out[s.FranchiseID] = append(out[s.FranchiseID], s)
	}
	return out, rows.Err()
}
