package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create conversations and messages",
		SQL: `
			CREATE TABLE conversations (
				id          TEXT PRIMARY KEY,
				customer    TEXT NOT NULL,
				phone       TEXT NOT NULL,
				status      TEXT NOT NULL DEFAULT 'active',
				created_at  TEXT NOT NULL
			);

			CREATE UNIQUE INDEX idx_conversations_phone ON conversations (phone);

			CREATE TABLE messages (
				id               INTEGER PRIMARY KEY AUTOINCREMENT,
				conversation_id  TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
				sender           TEXT NOT NULL,
				text             TEXT NOT NULL,
				timestamp        TEXT NOT NULL
			);

			CREATE INDEX idx_messages_conversation ON messages (conversation_id, id);
		`,
	},
	{
		Version: 2,
		Name:    "create carts and orders",
		SQL: `
			CREATE TABLE carts (
				id            TEXT PRIMARY KEY,
				customer      TEXT NOT NULL,
				email         TEXT NOT NULL,
				phone         TEXT NOT NULL,
				total         REAL NOT NULL DEFAULT 0,
				abandoned_at  TEXT NOT NULL,
				recovered     INTEGER NOT NULL DEFAULT 0
			);

			CREATE INDEX idx_carts_recovered ON carts (recovered, abandoned_at);

			CREATE TABLE cart_items (
				id        INTEGER PRIMARY KEY AUTOINCREMENT,
				cart_id   TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
				product   TEXT NOT NULL,
				price     REAL NOT NULL,
				quantity  INTEGER NOT NULL
			);

			CREATE INDEX idx_cart_items_cart ON cart_items (cart_id, id);

			CREATE TABLE orders (
				id        TEXT PRIMARY KEY,
				customer  TEXT NOT NULL,
				product   TEXT NOT NULL,
				price     REAL NOT NULL,
				date      TEXT NOT NULL,
				status    TEXT NOT NULL DEFAULT 'Pendente'
			);

			CREATE INDEX idx_orders_date ON orders (date);
		`,
	},
}
