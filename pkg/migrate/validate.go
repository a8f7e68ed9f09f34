package migrate

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

// ValidateDir checks the migrations in dir. See ValidateFS.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir))
}

// ValidateFS checks every .sql file at the root of fsys: the name must be
// <YYYYMMDDHHMMSS>_<snake_name>.sql with a unique version, and the body must
// hold an Up section followed by a Down section with balanced statement
// blocks.
func ValidateFS(fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	versions := make(map[string]string, len(names))
	for _, name := range names {
		version, err := parseMigrationName(name)
		if err != nil {
			return err
		}
		if prev, dup := versions[version]; dup {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		versions[version] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		if err := checkAnnotations(body); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}
	return nil
}

func parseMigrationName(name string) (string, error) {
	version, rest, ok := strings.Cut(strings.TrimSuffix(path.Base(name), ".sql"), "_")
	if !ok || rest == "" || sanitizeName(rest) != rest {
		return "", fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
	}
	if _, err := time.Parse(versionLayout, version); err != nil {
		return "", fmt.Errorf("invalid migration version in %q: %w", name, err)
	}
	return version, nil
}

func checkAnnotations(body []byte) error {
	var sawUp, sawDown, inBlock bool
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for line := 1; scanner.Scan(); line++ {
		annotation, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "-- +goose ")
		if !ok {
			continue
		}
		switch strings.TrimSpace(annotation) {
		case "Up":
			if sawUp || sawDown {
				return fmt.Errorf("line %d: unexpected Up section", line)
			}
			sawUp = true
		case "Down":
			if !sawUp || sawDown || inBlock {
				return fmt.Errorf("line %d: Down must follow a closed Up section", line)
			}
			sawDown = true
		case "StatementBegin":
			if inBlock {
				return fmt.Errorf("line %d: nested StatementBegin", line)
			}
			inBlock = true
		case "StatementEnd":
			if !inBlock {
				return fmt.Errorf("line %d: StatementEnd without StatementBegin", line)
			}
			inBlock = false
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	switch {
	case !sawUp:
		return fmt.Errorf(`missing "-- +goose Up"`)
	case !sawDown:
		return fmt.Errorf(`missing "-- +goose Down"`)
	case inBlock:
		return fmt.Errorf("unterminated StatementBegin")
	}
	return nil
}
