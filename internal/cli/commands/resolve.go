package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/pkg/core"
)

// resolveDatabase finds a database by its position in the catalog or by name.
// A numeric argument is tried as a position first.
func resolveDatabase(ctx context.Context, cache *catalog.Cache, arg string) (int, *core.Database, error) {
	cat, err := cache.Snapshot(ctx)
	if err != nil {
		return 0, nil, err
	}

	if id, convErr := strconv.Atoi(arg); convErr == nil {
		if db, ok := cat.Database(id); ok {
			return id, db, nil
		}
	}
	if id, db, ok := cat.FindDatabase(arg); ok {
		return id, db, nil
	}
	return 0, nil, fmt.Errorf("%w: database %q", catalog.ErrNotFound, arg)
}

// resolveTable finds a table of a database by its position or by name.
func resolveTable(db *core.Database, arg string) (int, *core.Table, error) {
	if id, convErr := strconv.Atoi(arg); convErr == nil && id >= 0 && id < len(db.Tables) {
		return id, &db.Tables[id], nil
	}
	for i := range db.Tables {
		if db.Tables[i].Name == arg {
			return i, &db.Tables[i], nil
		}
	}
	return 0, nil, fmt.Errorf("%w: table %q in database %q", catalog.ErrNotFound, arg, db.Name)
}
