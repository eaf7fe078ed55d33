package outline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrybe/scrybe/pkg/entry"
)

func parseString(t *testing.T, text string) *ParseResult {
	t.Helper()
	return Parse(strings.NewReader(text))
}

func TestParseBasics(t *testing.T) {
	res := parseString(t, `
Format: 1.4

# a comment
Title: My Project
SubTitle: The Docs
Footer: Copyright 2026

File: Parser  (src/parser.go)
File: Lexer  (no auto-title, src/lexer.go)
Text: Some free text
Link: Website  (https://example.com)
Index: Everything
Function Index: Functions
`)
	require.Empty(t, res.Errors)
	doc := res.Doc
	assert.Equal(t, "1.4", doc.FormatVersion)
	assert.Equal(t, "My Project", doc.Title)
	assert.Equal(t, "The Docs", doc.SubTitle)
	assert.Equal(t, "Copyright 2026", doc.Footer)

	children := doc.Root.Children
	require.Len(t, children, 6)

	assert.Equal(t, entry.KindFile, children[0].Kind)
	assert.Equal(t, "Parser", children[0].Title)
	assert.Equal(t, "src/parser.go", children[0].Target)
	assert.False(t, children[0].Locked)

	assert.True(t, children[1].Locked, "no auto-title must lock the entry")

	assert.Equal(t, entry.KindText, children[2].Kind)
	assert.Equal(t, "Some free text", children[2].Body)

	assert.Equal(t, entry.KindLink, children[3].Kind)
	assert.Equal(t, "https://example.com", children[3].Target)

	assert.Equal(t, entry.CategoryGeneral, children[4].Category)
	assert.Equal(t, entry.CategoryFunction, children[5].Category)

	assert.Len(t, res.FileIndex, 2)
}

func TestParseGroups(t *testing.T) {
	res := parseString(t, `
Format: 1.4

Group: Outer  {
   File: A  (a.go)
   Group: Inner  {
      File: B  (sub/b.go)
      }  # Group: Inner
   }  # Group: Outer
File: C  (c.go)
`)
	require.Empty(t, res.Errors)
	children := res.Doc.Root.Children
	require.Len(t, children, 2)

	outer := children[0]
	require.Equal(t, entry.KindGroup, outer.Kind)
	assert.Equal(t, "Outer", outer.Title)
	require.Len(t, outer.Children, 2)
	inner := outer.Children[1]
	require.Equal(t, entry.KindGroup, inner.Kind)
	assert.Equal(t, "Inner", inner.Title)
	require.Len(t, inner.Children, 1)
	assert.Equal(t, "sub/b.go", inner.Children[0].Target)
}

func TestParseBracelessGroups(t *testing.T) {
	// Braceless groups close at the next sibling-level group.
	res := parseString(t, `
Format: 1.4

Group: First
File: A  (a.go)
Group: Second
File: B  (b.go)
`)
	require.Empty(t, res.Errors)
	children := res.Doc.Root.Children
	require.Len(t, children, 2)
	assert.Equal(t, "First", children[0].Title)
	require.Len(t, children[0].Children, 1)
	assert.Equal(t, "a.go", children[0].Children[0].Target)
	assert.Equal(t, "Second", children[1].Title)
	require.Len(t, children[1].Children, 1)
	assert.Equal(t, "b.go", children[1].Children[0].Target)
}

func TestParseBraceOnFollowingLine(t *testing.T) {
	res := parseString(t, `
Format: 1.4

Group: G
# a comment does not end the brace window
{
   File: A  (a.go)
}
`)
	require.Empty(t, res.Errors)
	children := res.Doc.Root.Children
	require.Len(t, children, 1)
	require.Len(t, children[0].Children, 1)
}

func TestParseBraceErrors(t *testing.T) {
	res := parseString(t, `Format: 1.4
File: A  (a.go)
{
`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Message, "opening brace")

	res = parseString(t, `Format: 1.4
}
`)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "unmatched closing brace")
}

func TestParseUnclosedGroups(t *testing.T) {
	res := parseString(t, `Format: 1.4
Group: A  {
Group: B  {
File: F  (f.go)
`)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "2 groups")

	// Braceless groups close silently at end of input.
	res = parseString(t, `Format: 1.4
Group: A
File: F  (f.go)
`)
	assert.Empty(t, res.Errors)
}

func TestParseContinuesAfterErrors(t *testing.T) {
	res := parseString(t, `Format: 1.4
Bogus: nope
File: A
File: B  (b.go)
`)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 2, res.Errors[0].Line)
	assert.Equal(t, 3, res.Errors[1].Line)
	// The good entry after the errors still parses.
	require.Len(t, res.Doc.Root.Children, 1)
	assert.Equal(t, "b.go", res.Doc.Root.Children[0].Target)
}

func TestParseLegacyFormat(t *testing.T) {
	// No Format line means a pre-1.0 file: titles are locked by default,
	// but the lock decision is deferred to the caller.
	res := parseString(t, `
Title: Old Project
File: My Parser  (src/parser.go)
File: Lexer  (auto-title, src/lexer.go)
`)
	require.Empty(t, res.Errors)
	assert.Equal(t, LegacyFormatVersion, res.Doc.FormatVersion)
	assert.True(t, res.Doc.Legacy())

	assert.Equal(t, map[string]string{"src/parser.go": "My Parser"}, res.LegacyLockedTitles)
	// Explicit auto-title opts out of the legacy lock.
	f := res.FileIndex["src/lexer.go"]
	require.NotNil(t, f)
	assert.False(t, f.Locked)
}

func TestParseFormatMustBeFirst(t *testing.T) {
	res := parseString(t, `Title: X
Format: 1.4
`)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "first line")
}

func TestParseLinkWithFragmentParen(t *testing.T) {
	// The URL contains a # so comment stripping eats its tail; the parser
	// must reconstruct it from the raw line.
	res := parseString(t, `Format: 1.4
Link: Manual  (https://example.com/doc#section)
`)
	require.Empty(t, res.Errors)
	require.Len(t, res.Doc.Root.Children, 1)
	l := res.Doc.Root.Children[0]
	assert.Equal(t, "Manual", l.Title)
	assert.Equal(t, "https://example.com/doc#section", l.Target)
}

func TestParseLinkWithNestedParenAndFragment(t *testing.T) {
	res := parseString(t, `Format: 1.4
Link: Page  (https://example.com/w/Foo_(bar)#History)
`)
	require.Empty(t, res.Errors)
	l := res.Doc.Root.Children[0]
	assert.Equal(t, "https://example.com/w/Foo_(bar)#History", l.Target)
}

func TestParseLinkTitleWithParens(t *testing.T) {
	// Only the last paren group is the target; earlier parens belong to
	// the title.
	res := parseString(t, `Format: 1.4
Link: My (old) docs  (https://example.com/archive)
`)
	require.Empty(t, res.Errors)
	require.Len(t, res.Doc.Root.Children, 1)
	l := res.Doc.Root.Children[0]
	assert.Equal(t, "My (old) docs", l.Title)
	assert.Equal(t, "https://example.com/archive", l.Target)
}

func TestParseLinkParenTitleWithFragment(t *testing.T) {
	res := parseString(t, `Format: 1.4
Link: Docs (2019)  (https://example.com/doc#intro)
`)
	require.Empty(t, res.Errors)
	l := res.Doc.Root.Children[0]
	assert.Equal(t, "Docs (2019)", l.Title)
	assert.Equal(t, "https://example.com/doc#intro", l.Target)
}

func TestParseBareLink(t *testing.T) {
	res := parseString(t, `Format: 1.4
Link: https://example.com
`)
	require.Empty(t, res.Errors)
	l := res.Doc.Root.Children[0]
	assert.Equal(t, "https://example.com", l.Title)
	assert.Equal(t, "https://example.com", l.Target)
}

func TestParseDontIndex(t *testing.T) {
	res := parseString(t, `Format: 1.4
Don't Index: Functions, Variables
Don't Index: general
`)
	require.Empty(t, res.Errors)
	assert.True(t, res.Doc.Banned[entry.CategoryFunction])
	assert.True(t, res.Doc.Banned[entry.CategoryVariable])
	assert.True(t, res.Doc.Banned[entry.CategoryGeneral])
	assert.Empty(t, res.Doc.Root.Children, "don't index produces no entries")
}

func TestParseDuplicateFile(t *testing.T) {
	res := parseString(t, `Format: 1.4
File: A  (a.go)
File: A again  (a.go)
`)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "more than once")
	assert.Len(t, res.Doc.Root.Children, 1)
}

func TestParseFutureVersionIsPermissive(t *testing.T) {
	res := parseString(t, `Format: 9.9
Hologram: something from the future
File: A  (a.go)
`)
	assert.Empty(t, res.Errors, "unknown keywords from a future format must not error")
	assert.Len(t, res.Doc.Root.Children, 1)
}

func TestParseCaseInsensitiveKeywords(t *testing.T) {
	res := parseString(t, `FORMAT: 1.4
file: A  (a.go)
TEXT: hello
url: https://example.com
Copyright: 2026
`)
	require.Empty(t, res.Errors)
	assert.Equal(t, "2026", res.Doc.Footer)
	assert.Len(t, res.Doc.Root.Children, 3)
}
