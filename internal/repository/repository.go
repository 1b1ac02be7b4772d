package repository

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

// dialect builds the dynamic list queries; everything fixed-shape is plain
// SQL next to the method that runs it.
var dialect = goqu.Dialect("sqlite3")

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 15
	}
	return page, perPage
}
