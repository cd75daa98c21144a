// Package repository provides PostgreSQL persistence for users, categories,
// items, purchase intents and messages.
package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors surfaced by the repositories. Services and handlers
// branch on these with errors.Is.
var (
	// ErrNotFound reports a failed lookup of a user, category, item or
	// message during an operation that requires it to exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername reports a username collision on registration.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateCategory reports a category name collision.
	ErrDuplicateCategory = errors.New("category already exists")
	// ErrDuplicateWant reports a second intent for the same (user, item)
	// pair.
	ErrDuplicateWant = errors.New("want already recorded")
	// ErrCategoryInUse reports a category delete blocked by existing items.
	ErrCategoryInUse = errors.New("category is referenced by items")
)

// Postgres error codes, per the SQLSTATE standard.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeForeignKeyViolation
}
