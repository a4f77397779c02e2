package database

import (
	"context"
	"database/sql"
)

// schema holds the table definitions in dependency order. Orders
// deliberately carry no foreign keys to stores or franchises: they
// are historical records that survive franchise closure and user
// deletion.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS user_roles (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		role VARCHAR(32) NOT NULL,
		object_id BIGINT UNSIGNED NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		KEY idx_user_roles_user (user_id),
		KEY idx_user_roles_scope (role, object_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS franchises (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_franchises_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS franchise_admins (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		franchise_id BIGINT UNSIGNED NOT NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		KEY idx_franchise_admins_franchise (franchise_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS stores (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		franchise_id BIGINT UNSIGNED NOT NULL,
		name VARCHAR(255) NOT NULL,
		total_revenue DOUBLE NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		KEY idx_stores_franchise (franchise_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS menu (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title VARCHAR(255) NOT NULL,
		image VARCHAR(255) NOT NULL DEFAULT '',
		price DOUBLE NOT NULL,
		description TEXT,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		diner_id BIGINT UNSIGNED NOT NULL,
		franchise_id BIGINT UNSIGNED NOT NULL,
		store_id BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_orders_diner (diner_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		order_id BIGINT UNSIGNED NOT NULL,
		menu_id BIGINT UNSIGNED NOT NULL,
		description VARCHAR(255) NOT NULL,
		price DOUBLE NOT NULL,
		PRIMARY KEY (id),
		KEY idx_order_items_order (order_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Init creates all tables when they do not exist yet.
func Init(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
