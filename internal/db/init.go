package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username TEXT UNIQUE NOT NULL,
    password_hash BYTEA NOT NULL,
    salt BYTEA NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('admin', 'user')),
    status TEXT NOT NULL CHECK (status IN ('pending', 'approved')),
    contact_info JSONB NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS categories (
    id BIGSERIAL PRIMARY KEY,
    name TEXT UNIQUE NOT NULL,
    attributes_template JSONB NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS items (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
    owner_id BIGINT NOT NULL REFERENCES users(id),
    buyer_id BIGINT REFERENCES users(id),
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'sold')),
    price NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (price >= 0),
    can_bargain BOOLEAN NOT NULL DEFAULT FALSE,
    address TEXT NOT NULL DEFAULT '',
    specific_attributes JSONB NOT NULL DEFAULT '{}',
    image_paths JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS item_wants (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    offer_price NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (offer_price >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, item_id)
);

CREATE TABLE IF NOT EXISTS messages (
    id BIGSERIAL PRIMARY KEY,
    item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    sender_id BIGINT NOT NULL REFERENCES users(id),
    content TEXT NOT NULL,
    reply_to_id BIGINT REFERENCES messages(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// defaultCategories is fixture data inserted once, when the categories
// table is empty.
var defaultCategories = []struct {
	Name       string
	Attributes []string
}{
	{"Books", []string{"Author", "Publisher", "ISBN", "Year"}},
	{"Electronics", []string{"Brand", "Model", "Purchase Date", "Warranty"}},
	{"Food", []string{"Expiry Date", "Production Date", "Net Weight", "Ingredients"}},
	{"Clothing", []string{"Size", "Material", "Gender", "Color"}},
}

// InitPostgres opens a PostgreSQL connection, verifies it, creates the
// schema if missing, and seeds the default categories into an empty
// categories table.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if err := seedCategories(db); err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}

	return db, nil
}

func seedCategories(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, c := range defaultCategories {
		attrs, err := json.Marshal(c.Attributes)
		if err != nil {
			return err
		}
		if _, err := db.Exec(
			`INSERT INTO categories (name, attributes_template) VALUES ($1, $2)`,
			c.Name, attrs,
		); err != nil {
			return err
		}
	}
	return nil
}
