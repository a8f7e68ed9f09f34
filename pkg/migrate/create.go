package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const sqlSkeleton = `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s
-- +goose StatementEnd
`

// CreateSQLMigration scaffolds <dir>/<version>_<name>.sql with empty Up and
// Down blocks. It never overwrites an existing file.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", errors.New("migration dir is required")
	}
	slug := sanitizeName(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, time.Now().UTC().Format(versionLayout)+"_"+slug+".sql")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	_, werr := fmt.Fprintf(f, sqlSkeleton, slug)
	if err := errors.Join(werr, f.Close()); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// sanitizeName lowercases name and joins its alphanumeric runs with
// underscores: "Add Supplier-Email" becomes "add_supplier_email".
func sanitizeName(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	return strings.Join(words, "_")
}
