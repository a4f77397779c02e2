package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jsbarre1/jwt-pizza/internal/model"
)

// OrderRepo persists orders. Order creation is the one operation in
// the service with a real transactional boundary: the order insert,
// its items and the store revenue credit commit together or not at
// all.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// ErrInvalidStore is returned when the store does not exist or does
// not belong to the named franchise. Nothing is persisted.
var ErrInvalidStore = errors.New("store does not belong to franchise")

// ErrInvalidMenuItem is returned when an ordered menu id does not
// resolve to a catalog entry. Nothing is persisted.
var ErrInvalidMenuItem = errors.New("unknown menu item")

// Create validates referential integrity, persists the order with
// its items and credits the store's revenue accumulator by the
// order total, all within a single transaction. Item descriptions
// and prices are copied from the catalog at this moment so the
// stored order is immune to later menu changes.
func (r *OrderRepo) Create(ctx context.Context, dinerID, franchiseID, storeID uint64, menuIDs []uint64) (model.Order, error) {
	if len(menuIDs) == 0 {
		return model.Order{}, ErrInvalidMenuItem
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, storageErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	var sid uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM stores WHERE id=? AND franchise_id=? LIMIT 1",
		storeID, franchiseID).Scan(&sid)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrInvalidStore
	}
	if err != nil {
		return model.Order{}, storageErr(err)
	}

	items := make([]model.OrderItem, 0, len(menuIDs))
	var total float64
	for _, mid := range menuIDs {
		var (
			title string
			price float64
		)
		err := tx.QueryRowContext(ctx,
			"SELECT title, price FROM menu WHERE id=? LIMIT 1", mid).Scan(&title, &price)
		if errors.Is(err, sql.ErrNoRows) {
			return model.Order{}, ErrInvalidMenuItem
		}
		if err != nil {
			return model.Order{}, storageErr(err)
		}
		items = append(items, model.OrderItem{MenuID: mid, Description: title, Price: price})
		total += price
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (diner_id, franchise_id, store_id, created_at) VALUES (?,?,?,?)",
		dinerID, franchiseID, storeID, now)
	if err != nil {
		return model.Order{}, storageErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Order{}, err
	}

	query := "INSERT INTO order_items (order_id, menu_id, description, price) VALUES "
	args := make([]any, 0, len(items)*4)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?)"
		args = append(args, id, it.MenuID, it.Description, it.Price)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return model.Order{}, storageErr(err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE stores SET total_revenue = total_revenue + ? WHERE id=?",
		total, storeID); err != nil {
		return model.Order{}, storageErr(err)
	}

	if err := tx.Commit(); err != nil {
		return model.Order{}, storageErr(err)
	}

	return model.Order{
		ID:          uint64(id),
		DinerID:     dinerID,
		FranchiseID: franchiseID,
		StoreID:     storeID,
		Items:       items,
		Date:        now,
	}, nil
}

// ListForDiner returns one page of the diner's orders with items
// attached, newest first.
func (r *OrderRepo) ListForDiner(ctx context.Context, dinerID uint64, page, pageSize int) ([]model.Order, error) {
	return retryRead(ctx, func() ([]model.Order, error) {
		return r.listForDiner(ctx, dinerID, page, pageSize)
	})
}

func (r *OrderRepo) listForDiner(ctx context.Context, dinerID uint64, page, pageSize int) ([]model.Order, error) {
	page, pageSize = clampPage(page, pageSize, 10)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, diner_id, franchise_id, store_id, created_at
		 FROM orders WHERE diner_id=?
		 ORDER BY id DESC LIMIT ? OFFSET ?`,
		dinerID, pageSize, page*pageSize)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	orders := []model.Order{}
	index := map[uint64]int{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.DinerID, &o.FranchiseID, &o.StoreID, &o.Date); err != nil {
			return nil, err
		}
		o.Items = []model.OrderItem{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	query := "SELECT order_id, menu_id, description, price FROM order_items WHERE order_id IN ("
	args := make([]any, 0, len(orders))
	for i, o := range orders {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, o.ID)
	}
	query += ") ORDER BY id ASC"

	itemRows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var (
			orderID uint64
			it      model.OrderItem
		)
		if err := itemRows.Scan(&orderID, &it.MenuID, &it.Description, &it.Price); err != nil {
			return nil, err
		}
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return orders, itemRows.Err()
}
