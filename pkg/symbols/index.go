// Package symbols stores the symbols extracted from source comments in a
// sqlite database, and answers which index categories currently have
// anything worth indexing.
package symbols

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/scrybe/scrybe/pkg/entry"
)

// Symbol is one documented symbol extracted from a source file.
type Symbol struct {
	Name     string
	File     string
	Line     int
	Category entry.Category
}

// Index manages the symbol database.
type Index struct {
	db *sql.DB
}

// Open opens or creates the symbol index at dbPath.
func Open(dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	idx := &Index{db: db}
	if err := idx.init(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS symbols (
		name TEXT NOT NULL,
		file TEXT NOT NULL,
		line INTEGER,
		category INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file);
	CREATE INDEX IF NOT EXISTS idx_symbols_category ON symbols(category);
	`
	if _, err := idx.db.Exec(schema); err != nil {
		return fmt.Errorf("create symbol schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// ReplaceFile swaps the recorded symbols of one file for a fresh set, in a
// single transaction.
func (idx *Index) ReplaceFile(file string, syms []Symbol) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM symbols WHERE file = ?", file); err != nil {
		tx.Rollback()
		return err
	}
	for _, s := range syms {
		_, err := tx.Exec(
			"INSERT INTO symbols (name, file, line, category) VALUES (?, ?, ?, ?)",
			s.Name, file, s.Line, int(s.Category),
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// RemoveFile drops every symbol recorded for a file.
func (idx *Index) RemoveFile(file string) error {
	_, err := idx.db.Exec("DELETE FROM symbols WHERE file = ?", file)
	return err
}

// Prune drops the symbols of every file not in keep. Without this a deleted
// source file would keep its categories alive in the index forever.
func (idx *Index) Prune(keep map[string]bool) error {
	rows, err := idx.db.Query("SELECT DISTINCT file FROM symbols")
	if err != nil {
		return err
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return err
		}
		if !keep[f] {
			stale = append(stale, f)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, f := range stale {
		if err := idx.RemoveFile(f); err != nil {
			return err
		}
	}
	return nil
}

// CategoriesWithSymbols filters the candidate categories down to those that
// currently have at least one symbol. The general category has symbols
// whenever anything at all is indexed.
func (idx *Index) CategoriesWithSymbols(candidates []entry.Category) ([]entry.Category, error) {
	rows, err := idx.db.Query("SELECT DISTINCT category FROM symbols")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	have := make(map[entry.Category]bool)
	for rows.Next() {
		var c int
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		have[entry.Category(c)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []entry.Category
	for _, c := range candidates {
		if c == entry.CategoryGeneral {
			if len(have) > 0 {
				out = append(out, c)
			}
			continue
		}
		if have[c] {
			out = append(out, c)
		}
	}
	return out, nil
}
