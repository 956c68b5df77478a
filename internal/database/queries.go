package database

// Migration bookkeeping
const (
	CreateMigrationsTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`

	SelectAppliedMigrationsSQL = `SELECT migration_name FROM schema_migrations`

	InsertMigrationSQL = `INSERT INTO schema_migrations (migration_name) VALUES ($1)`
)

// Catalog queries
const (
	ListAvailableItemsSQL = `
		SELECT item_id, name, description, price, is_available
		FROM items
		WHERE is_available = TRUE
		ORDER BY item_id`

	GetItemsByIDsSQL = `
		SELECT item_id, name, description, price, is_available
		FROM items
		WHERE item_id = ANY($1)`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (table_number, status, total_amount)
		VALUES ($1, $2, $3)
		RETURNING order_id, created_at, updated_at`

	InsertOrderLineSQL = `
		INSERT INTO order_lines (order_id, item_id, quantity, notes, subtotal)
		VALUES ($1, $2, $3, $4, $5)`

	GetOrderLinesSQL = `
		SELECT ol.line_id, ol.order_id, ol.item_id, i.name, ol.quantity, ol.notes, ol.subtotal
		FROM order_lines ol
		JOIN items i ON i.item_id = ol.item_id
		WHERE ol.order_id = $1
		ORDER BY ol.line_id`

	GetLinesForOrdersSQL = `
		SELECT ol.line_id, ol.order_id, ol.item_id, i.name, ol.quantity, ol.notes, ol.subtotal
		FROM order_lines ol
		JOIN items i ON i.item_id = ol.item_id
		WHERE ol.order_id = ANY($1)
		ORDER BY ol.order_id, ol.line_id`

	GetOrderByIDSQL = `
		SELECT order_id, table_number, status, total_amount, created_at, updated_at
		FROM orders
		WHERE order_id = $1`

	GetOrderStatusSQL = `SELECT status FROM orders WHERE order_id = $1`

	// UpdateOrderStatusSQL only touches the row when its current status is one
	// of $3, so the transition check and the write are a single statement.
	UpdateOrderStatusSQL = `
		UPDATE orders o
		SET status = $2, updated_at = NOW()
		FROM (SELECT order_id, status FROM orders WHERE order_id = $1 FOR UPDATE) prev
		WHERE o.order_id = prev.order_id AND prev.status = ANY($3)
		RETURNING prev.status, o.updated_at`

	ListOrdersByStatusSQL = `
		SELECT order_id, table_number, status, total_amount, created_at, updated_at
		FROM orders
		WHERE status = ANY($1)
		ORDER BY created_at ASC, order_id ASC
		LIMIT $2`
)
