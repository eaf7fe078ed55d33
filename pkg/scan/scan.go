// Package scan walks the configured source directories and extracts the
// structured comments the documentation is generated from. It is a
// deliberately thin stand-in for full language parsers: it finds files with
// documentable content, computes their default titles, and records their
// symbols in the symbol index.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/scrybe/scrybe/pkg/entry"
	"github.com/scrybe/scrybe/pkg/symbols"
)

var (
	frontmatterPattern = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n?(.*)`)
	markdownHeading    = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	topicPattern       = regexp.MustCompile(`^\s*(?://|#)\s*([A-Za-z]+):\s+(\S.*)$`)
)

// sourceExtensions are the file types scanned for topic comments. Markdown
// files are documentation in their own right and always have content.
var sourceExtensions = map[string]bool{
	".go": true, ".c": true, ".h": true, ".cpp": true, ".hpp": true,
	".py": true, ".rb": true, ".pl": true, ".pm": true, ".js": true,
	".ts": true, ".sh": true,
}

type frontmatter struct {
	Title string `yaml:"title"`
}

// FileDoc is what the scanner learned about one file.
type FileDoc struct {
	Path    string // slash-separated, relative to the scan root
	Title   string
	Symbols []symbols.Symbol
}

// Result holds every file that produces documentation, keyed by path.
type Result struct {
	Files map[string]*FileDoc
}

// Scanner extracts documentable content from source trees.
type Scanner struct {
	log *logrus.Logger
	idx *symbols.Index
}

// New creates a scanner that records symbols into idx.
func New(log *logrus.Logger, idx *symbols.Index) *Scanner {
	return &Scanner{log: log, idx: idx}
}

// Scan walks each directory under root, parses every recognized file and
// refreshes the symbol index for the files it saw.
func (s *Scanner) Scan(root string, dirs []string) (*Result, error) {
	res := &Result{Files: make(map[string]*FileDoc)}
	for _, dir := range dirs {
		base := filepath.Join(root, dir)
		err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && p != base {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			doc, err := s.scanFile(p, filepath.ToSlash(rel))
			if err != nil {
				return err
			}
			if doc != nil {
				res.Files[doc.Path] = doc
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
	}

	keep := make(map[string]bool, len(res.Files))
	for path, doc := range res.Files {
		if err := s.idx.ReplaceFile(path, doc.Symbols); err != nil {
			return nil, fmt.Errorf("index %s: %w", path, err)
		}
		keep[path] = true
	}
	if err := s.idx.Prune(keep); err != nil {
		return nil, fmt.Errorf("prune symbol index: %w", err)
	}
	return res, nil
}

func (s *Scanner) scanFile(fullPath, relPath string) (*FileDoc, error) {
	ext := strings.ToLower(filepath.Ext(relPath))
	isMarkdown := ext == ".md" || ext == ".markdown"
	if !isMarkdown && !sourceExtensions[ext] {
		return nil, nil
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}
	content := string(data)

	if isMarkdown {
		if strings.TrimSpace(content) == "" {
			return nil, nil
		}
		return &FileDoc{Path: relPath, Title: markdownTitle(content, relPath)}, nil
	}

	doc := &FileDoc{Path: relPath, Title: relPath}
	for i, line := range strings.Split(content, "\n") {
		m := topicPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		keyword, name := m[1], strings.TrimSpace(m[2])
		if strings.EqualFold(keyword, "title") {
			doc.Title = name
			continue
		}
		cat, ok := entry.ParseCategory(keyword)
		if !ok || cat == entry.CategoryGeneral {
			continue
		}
		doc.Symbols = append(doc.Symbols, symbols.Symbol{
			Name:     name,
			File:     relPath,
			Line:     i + 1,
			Category: cat,
		})
	}
	if len(doc.Symbols) == 0 && doc.Title == relPath {
		// Nothing documentable in this source file.
		return nil, nil
	}
	s.log.WithFields(logrus.Fields{
		"file":    relPath,
		"symbols": len(doc.Symbols),
	}).Debug("scanned file")
	return doc, nil
}

// markdownTitle prefers the frontmatter title, then the first heading, then
// the file path itself.
func markdownTitle(content, relPath string) string {
	if m := frontmatterPattern.FindStringSubmatch(content); len(m) == 3 {
		var fm frontmatter
		if err := yaml.Unmarshal([]byte(m[1]), &fm); err == nil && fm.Title != "" {
			return fm.Title
		}
	}
	if m := markdownHeading.FindStringSubmatch(content); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	return relPath
}
