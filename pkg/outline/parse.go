package outline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/scrybe/scrybe/pkg/entry"
)

// ParseError is one problem found in the menu file, addressed by its
// 1-based line number.
type ParseError struct {
	Line    int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParseResult carries everything Parse extracts from a menu file.
type ParseResult struct {
	Doc       *Document
	Errors    []ParseError
	FileIndex map[string]*entry.Entry

	// LegacyLockedTitles maps file targets to the titles a pre-1.0 menu
	// file gave them. Legacy files lock every title by default, but the
	// lock is not applied here: the caller compares these against freshly
	// generated titles and locks only the ones that actually differ, so
	// pre-automation titles that happen to match the generator are quietly
	// released.
	LegacyLockedTitles map[string]string
}

type scope struct {
	group  *entry.Entry
	braced bool
}

type parser struct {
	res *ParseResult

	stack []scope
	// awaitingBrace is true while an opening brace is still legal, i.e.
	// since the most recent Group line only blank and comment lines have
	// been seen.
	awaitingBrace bool
	sawContent    bool
	line          int
}

// Parse reads a menu file. It never returns an error value: IO problems
// from the reader surface as a final ParseError, and syntax problems are
// collected per line while parsing continues best-effort.
func Parse(r io.Reader) *ParseResult {
	res := &ParseResult{
		Doc:                NewDocument(),
		FileIndex:          make(map[string]*entry.Entry),
		LegacyLockedTitles: make(map[string]string),
	}
	res.Doc.FormatVersion = "" // set by the Format line or the legacy default
	p := &parser{res: res}
	p.stack = []scope{{group: res.Doc.Root, braced: true}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line++
		p.parseLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		p.errorf("could not read menu file: %v", err)
	}
	p.finish()
	if res.Doc.FormatVersion == "" {
		res.Doc.FormatVersion = LegacyFormatVersion
	}
	return res
}

func (p *parser) errorf(format string, args ...interface{}) {
	p.res.Errors = append(p.res.Errors, ParseError{Line: p.line, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) top() *scope {
	return &p.stack[len(p.stack)-1]
}

// stripComment cuts a # comment off a line. Link targets may legitimately
// contain #, which parseLink repairs from the raw line afterward.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func (p *parser) parseLine(raw string) {
	text := strings.TrimSpace(stripComment(raw))
	if text == "" {
		return
	}

	switch text {
	case "{":
		p.openBrace()
		return
	case "}":
		p.closeBrace()
		return
	}

	colon := strings.IndexByte(text, ':')
	if colon < 0 {
		p.markContent()
		p.errorf("expected a \"Keyword: value\" line")
		return
	}
	head := strings.Fields(text[:colon])
	value := strings.TrimSpace(text[colon+1:])
	if len(head) == 0 {
		p.markContent()
		p.errorf("expected a keyword before the colon")
		return
	}
	keyword := strings.ToLower(head[len(head)-1])
	modifier := strings.ToLower(strings.Join(head[:len(head)-1], " "))

	if keyword == "format" {
		if p.sawContent {
			p.errorf("Format must be the first line in the file")
			return
		}
		p.sawContent = true
		p.res.Doc.FormatVersion = value
		return
	}
	if p.res.Doc.FormatVersion == "" {
		// No leading Format line means a pre-1.0 file.
		p.res.Doc.FormatVersion = LegacyFormatVersion
	}

	if keyword == "group" {
		p.markContent()
		p.parseGroup(modifier, value)
		return
	}
	p.markContent()
	p.awaitingBrace = false

	if keyword != "index" && modifier != "" {
		p.errorf("keyword %q does not take a %q modifier", head[len(head)-1], modifier)
		return
	}

	switch keyword {
	case "title":
		p.res.Doc.Title = value
	case "subtitle", "sub-title":
		p.res.Doc.SubTitle = value
	case "footer", "copyright":
		p.res.Doc.Footer = value
	case "file", "files":
		p.parseFile(value)
	case "text":
		p.top().group.Add(entry.NewText(value))
	case "link", "url":
		p.parseLink(raw, value)
	case "index":
		p.parseIndex(modifier, value)
	default:
		if p.res.Doc.FromFuture() {
			return // permissive: an unknown keyword from a newer format
		}
		p.errorf("unrecognized keyword %q", head[len(head)-1])
	}
}

// markContent records that a real content line was seen, which settles the
// legacy-format question and ends any window where a brace could open.
func (p *parser) markContent() {
	p.sawContent = true
	if p.res.Doc.FormatVersion == "" {
		p.res.Doc.FormatVersion = LegacyFormatVersion
	}
}

func (p *parser) parseGroup(modifier, value string) {
	if modifier != "" {
		p.errorf("keyword \"Group\" does not take a %q modifier", modifier)
	}
	braced := false
	if strings.HasSuffix(value, "{") {
		braced = true
		value = strings.TrimSpace(strings.TrimSuffix(value, "{"))
	}
	if value == "" {
		p.errorf("group entries must have a title")
	}

	// A new group at this level implicitly closes any open braceless group.
	for !p.top().braced {
		p.stack = p.stack[:len(p.stack)-1]
	}

	g := entry.NewGroup(value)
	p.top().group.Add(g)
	p.stack = append(p.stack, scope{group: g, braced: braced})
	p.awaitingBrace = !braced
}

func (p *parser) openBrace() {
	if !p.awaitingBrace {
		p.errorf("an opening brace may only follow a group")
		return
	}
	p.top().braced = true
	p.awaitingBrace = false
}

func (p *parser) closeBrace() {
	p.awaitingBrace = false
	// The brace belongs to the nearest braced group; braceless groups in
	// between close implicitly.
	n := len(p.stack) - 1
	for n > 0 && !p.stack[n].braced {
		n--
	}
	if n == 0 {
		p.errorf("unmatched closing brace")
		// Drop any braceless groups anyway so later entries land sanely.
		for !p.top().braced {
			p.stack = p.stack[:len(p.stack)-1]
		}
		return
	}
	p.stack = p.stack[:n]
}

func (p *parser) finish() {
	p.line++ // errors below address end-of-input
	unclosed := 0
	for _, s := range p.stack[1:] {
		if s.braced {
			unclosed++
		}
	}
	if unclosed == 1 {
		p.errorf("there is one group left unclosed at the end of the file")
	} else if unclosed > 1 {
		p.errorf("there are %d groups left unclosed at the end of the file", unclosed)
	}
	p.stack = p.stack[:1]
}

func (p *parser) parseFile(value string) {
	if !strings.HasSuffix(value, ")") || !strings.Contains(value, "(") {
		p.errorf("file entries must name their target in parentheses")
		return
	}
	open := strings.LastIndexByte(value, '(')
	title := strings.TrimSpace(value[:open])
	inner := strings.TrimSpace(value[open+1 : len(value)-1])
	if title == "" {
		p.errorf("file entries must have a title")
		return
	}

	locked := false
	autoExplicit := false
	if comma := strings.IndexByte(inner, ','); comma >= 0 {
		switch strings.ToLower(strings.TrimSpace(inner[:comma])) {
		case "no auto-title":
			locked = true
			inner = strings.TrimSpace(inner[comma+1:])
		case "auto-title":
			autoExplicit = true
			inner = strings.TrimSpace(inner[comma+1:])
		}
	}
	if inner == "" {
		p.errorf("file entries must have a target")
		return
	}
	if _, dup := p.res.FileIndex[inner]; dup {
		p.errorf("the file %q appears in the menu more than once", inner)
		return
	}

	if p.res.Doc.Legacy() && !locked && !autoExplicit {
		// Pre-1.0 files locked every title by default. Defer the decision:
		// the caller locks only titles that differ from what the generator
		// would produce today.
		p.res.LegacyLockedTitles[inner] = title
	}

	f := entry.NewFile(title, inner, locked)
	p.top().group.Add(f)
	p.res.FileIndex[inner] = f
}

func (p *parser) parseLink(raw, value string) {
	// A # inside the target truncates the stripped value mid-URL, e.g.
	// (http://host/page#fragment). When the raw line's last paren group
	// spans the first #, that group is the target and the title sits before
	// it; a # past the group is an ordinary comment.
	colon := strings.IndexByte(raw, ':')
	rawValue := raw[colon+1:]
	if hash := strings.IndexByte(rawValue, '#'); hash >= 0 {
		if ro, re, rok := lastParenGroup(rawValue); rok && ro < hash && hash < re {
			p.addLink(strings.TrimSpace(rawValue[:ro]), strings.TrimSpace(rawValue[ro+1:re]))
			return
		}
	}

	open, end, ok := lastParenGroup(value)
	if !ok {
		if strings.ContainsRune(value, '(') {
			p.errorf("unterminated link target")
			return
		}
		// Bare form: the whole value is the URL and doubles as the title.
		if value == "" {
			p.errorf("link entries must have a target")
			return
		}
		p.top().group.Add(entry.NewLink("", value))
		return
	}
	p.addLink(strings.TrimSpace(value[:open]), strings.TrimSpace(value[open+1:end]))
}

func (p *parser) addLink(title, url string) {
	if url == "" {
		p.errorf("link entries must have a target")
		return
	}
	p.top().group.Add(entry.NewLink(title, url))
}

// lastParenGroup locates the last balanced parenthesis group of a line by
// walking backward from the final closing paren. Taking the last group, not
// the first, lets titles contain parentheses of their own.
func lastParenGroup(s string) (open, end int, ok bool) {
	end = strings.LastIndexByte(s, ')')
	if end < 0 {
		return 0, 0, false
	}
	depth := 0
	for i := end; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return i, end, true
			}
		}
	}
	return 0, 0, false
}

func (p *parser) parseIndex(modifier, value string) {
	switch modifier {
	case "don't", "dont":
		for _, word := range strings.FieldsFunc(value, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		}) {
			cat, ok := entry.ParseCategory(word)
			if !ok {
				p.errorf("unrecognized index type %q", word)
				continue
			}
			p.res.Doc.Banned[cat] = true
		}
		return
	case "":
		if value == "" {
			value = entry.CategoryGeneral.DefaultIndexTitle()
		}
		p.top().group.Add(entry.NewIndex(value, entry.CategoryGeneral))
		return
	}
	cat, ok := entry.ParseCategory(modifier)
	if !ok {
		p.errorf("unrecognized index modifier %q", modifier)
		return
	}
	if value == "" {
		value = cat.DefaultIndexTitle()
	}
	p.top().group.Add(entry.NewIndex(value, cat))
}
