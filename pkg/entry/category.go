package entry

import "strings"

// Category classifies indexable symbols. CategoryGeneral is the all-symbols
// index and is distinct from CategoryNone, which means no category has been
// selected yet and only ever appears transiently during parsing.
type Category int

const (
	CategoryNone Category = iota
	CategoryGeneral
	CategoryFunction
	CategoryVariable
	CategoryType
	CategoryClass
	CategoryConstant
	CategoryProperty
	CategoryFile
)

// AllCategories lists every real category, general first.
var AllCategories = []Category{
	CategoryGeneral,
	CategoryFunction,
	CategoryVariable,
	CategoryType,
	CategoryClass,
	CategoryConstant,
	CategoryProperty,
	CategoryFile,
}

// categorySynonyms maps the words accepted in the menu format to a
// category. Lookups are case-insensitive.
var categorySynonyms = map[string]Category{
	"general":    CategoryGeneral,
	"everything": CategoryGeneral,
	"function":   CategoryFunction,
	"functions":  CategoryFunction,
	"func":       CategoryFunction,
	"funcs":      CategoryFunction,
	"variable":   CategoryVariable,
	"variables":  CategoryVariable,
	"var":        CategoryVariable,
	"vars":       CategoryVariable,
	"type":       CategoryType,
	"types":      CategoryType,
	"class":      CategoryClass,
	"classes":    CategoryClass,
	"constant":   CategoryConstant,
	"constants":  CategoryConstant,
	"const":      CategoryConstant,
	"consts":     CategoryConstant,
	"property":   CategoryProperty,
	"properties": CategoryProperty,
	"prop":       CategoryProperty,
	"props":      CategoryProperty,
	"file":       CategoryFile,
	"files":      CategoryFile,
}

// ParseCategory resolves a modifier word to a category.
func ParseCategory(word string) (Category, bool) {
	c, ok := categorySynonyms[strings.ToLower(strings.TrimSpace(word))]
	return c, ok
}

// String returns the canonical singular name used when serializing an index
// modifier. The general category has no modifier word in entry position and
// serializes as "General" only inside a Don't Index list.
func (c Category) String() string {
	switch c {
	case CategoryGeneral:
		return "General"
	case CategoryFunction:
		return "Function"
	case CategoryVariable:
		return "Variable"
	case CategoryType:
		return "Type"
	case CategoryClass:
		return "Class"
	case CategoryConstant:
		return "Constant"
	case CategoryProperty:
		return "Property"
	case CategoryFile:
		return "File"
	default:
		return "None"
	}
}

// DefaultIndexTitle returns the title given to an automatically added index
// entry for the category.
func (c Category) DefaultIndexTitle() string {
	switch c {
	case CategoryGeneral:
		return "Everything"
	case CategoryClass:
		return "Classes"
	case CategoryProperty:
		return "Properties"
	default:
		return c.String() + "s"
	}
}
