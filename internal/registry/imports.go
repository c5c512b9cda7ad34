package registry

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// LocalName returns the identifier an import is referenced by.
func (i Import) LocalName() string {
	if i.Name != "" {
		return i.Name
	}
	return assumedName(i.Path)
}

var versionElem = regexp.MustCompile(`^v[0-9]+$`)

// assumedName guesses the package name from an import path: the last
// element, skipping a major version suffix, without a "go-" prefix and cut
// at the first character that is not valid in an identifier.
func assumedName(path string) string {
	elems := strings.Split(path, "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && versionElem.MatchString(name) {
		name = elems[len(elems)-2]
	}
	name = strings.TrimPrefix(name, "go-")
	if i := strings.IndexFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	}); i >= 0 {
		name = name[:i]
	}
	return name
}

var qualifier = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\.[A-Za-z_]`)

// Qualifiers returns the package names referenced by a type expression.
func Qualifiers(typeText string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range qualifier.FindAllStringSubmatch(typeText, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

func unquoteImport(lit string) string {
	if s, err := strconv.Unquote(lit); err == nil {
		return s
	}
	return strings.Trim(lit, "\"`")
}
