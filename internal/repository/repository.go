// Package repository holds the GORM-backed data access layer. Services depend
// on the interfaces declared here, never on *gorm.DB queries directly.
package repository

import (
	"strings"

	"gorm.io/gorm"
)

// pick returns tx when the caller runs inside a transaction, db otherwise.
func pick(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// Page normalizes page/limit pairs and returns the row offset.
func Page(page, limit, maxLimit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere in
// the column. Use it with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
