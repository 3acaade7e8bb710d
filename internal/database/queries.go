package database

// Migration bookkeeping
const (
	createMigrationsTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`

	selectAppliedMigrationsSQL = `SELECT migration_name FROM schema_migrations`

	insertMigrationSQL = `INSERT INTO schema_migrations (migration_name) VALUES ($1)`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (table_label, total, status, payment_method)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, menu_item_id, special_dish_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`

	GetOrderByIDSQL = `
		SELECT id, table_label, total, status, payment_method, created_at
		FROM orders WHERE id = $1`

	GetOrderItemsSQL = `
		SELECT id, menu_item_id, special_dish_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC`
)

// Catalog queries
const (
	GetMenuItemSQL = `
		SELECT m.name, m.price, COALESCE(c.name, ''), m.available
		FROM menu_items m
		LEFT JOIN categories c ON c.id = m.category_id
		WHERE m.id = $1`

	// A special dish is only available inside its validity window.
	GetSpecialDishSQL = `
		SELECT name, price,
			   available AND starts_on <= CURRENT_DATE AND (ends_on IS NULL OR ends_on >= CURRENT_DATE)
		FROM special_dishes
		WHERE id = $1`
)

// Table queries
const (
	ListTableOccupancySQL = `
		SELECT t.number::text, t.capacity, t.location,
			   COUNT(o.id) AS pending_orders,
			   COALESCE(SUM(o.total), 0) AS pending_total
		FROM dining_tables t
		LEFT JOIN orders o
			   ON o.table_label = t.number::text
			  AND o.status = ANY($1)
		WHERE t.active = true
		GROUP BY t.id, t.number, t.capacity, t.location
		ORDER BY t.number ASC`
)

// Report queries. The Select*SQL fragments end in a WHERE clause that
// callers extend with AND predicates.
const (
	// ProductNameExpr and CategoryExpr resolve a line item through whichever
	// catalog it references.
	ProductNameExpr = `COALESCE(m.name, s.name)`
	CategoryExpr    = `CASE WHEN oi.special_dish_id IS NOT NULL THEN 'Special' ELSE COALESCE(c.name, '') END`

	productJoins = `
		LEFT JOIN menu_items m ON m.id = oi.menu_item_id
		LEFT JOIN special_dishes s ON s.id = oi.special_dish_id
		LEFT JOIN categories c ON c.id = m.category_id`

	SelectSalesRowsSQL = `
		SELECT o.id, o.table_label, o.total, o.status, o.payment_method, o.created_at,
			   oi.menu_item_id, oi.special_dish_id,
			   ` + ProductNameExpr + ` AS product_name,
			   ` + CategoryExpr + ` AS category_name,
			   oi.quantity, oi.unit_price
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id` + productJoins + `
		WHERE o.status = 'delivered'`

	SalesRowsOrderBy = `
		ORDER BY o.created_at DESC, o.id DESC, oi.id ASC`

	SelectPopularProductsSQL = `
		SELECT oi.menu_item_id, oi.special_dish_id,
			   ` + ProductNameExpr + ` AS product_name,
			   COALESCE(m.price, s.price) AS price,
			   ` + CategoryExpr + ` AS category_name,
			   SUM(oi.quantity)::bigint AS total_sold,
			   SUM(oi.quantity * oi.unit_price) AS total_revenue,
			   COUNT(DISTINCT o.id) AS order_count
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id` + productJoins + `
		WHERE o.status = 'delivered'`

	// First appearance order keeps ties deterministic.
	PopularProductsGroupBy = `
		GROUP BY oi.menu_item_id, oi.special_dish_id, m.name, s.name, m.price, s.price, c.name
		ORDER BY MIN(oi.id) ASC`

	TopProductGroupBy = `
		GROUP BY oi.menu_item_id, oi.special_dish_id, m.name, s.name, m.price, s.price, c.name
		ORDER BY SUM(oi.quantity) DESC, MIN(oi.id) ASC
		LIMIT 1`

	SelectTableSalesSQL = `
		SELECT o.table_label,
			   COUNT(*) AS order_count,
			   SUM(o.total) AS revenue,
			   SUM(items.quantity)::bigint AS total_items
		FROM orders o
		JOIN (
			SELECT order_id, SUM(quantity) AS quantity
			FROM order_items
			GROUP BY order_id
		) items ON items.order_id = o.id
		WHERE o.status = 'delivered'`

	TableSalesGroupBy = `
		GROUP BY o.table_label
		ORDER BY revenue DESC, o.table_label ASC`

	CountOrdersSQL = `SELECT COUNT(*) FROM orders o WHERE true`

	SumDeliveredRevenueSQL = `SELECT COALESCE(SUM(o.total), 0) FROM orders o WHERE o.status = 'delivered'`

	CountOpenOrdersSQL = `SELECT COUNT(*) FROM orders WHERE status = ANY($1)`

	CountAvailableMenuItemsSQL = `SELECT COUNT(*) FROM menu_items WHERE available = true`
)
