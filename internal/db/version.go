package db

import (
	"io/fs"

	"github.com/persistorai/kinship/internal/db/migrations"
)

// SchemaVersion returns the number of migration files, which equals the
// current schema version. Both engines carry the same number of migrations.
// It is embedded in export files so that imports can detect version
// mismatches between the exporting and importing instance.
func SchemaVersion() int {
	entries, err := fs.ReadDir(migrations.Postgres(), ".")
	if err != nil {
		return 0
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() {
			count++
		}
	}

	return count
}
