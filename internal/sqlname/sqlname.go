// Package sqlname checks table names that the stores interpolate into SQL text.
package sqlname

import (
	"regexp"
	"strings"
)

var qualified = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)?$`)

// Valid reports whether name is a bare identifier or a schema.table pair of [A-Za-z0-9_] parts.
func Valid(name string) bool {
	return qualified.MatchString(name)
}

// Flatten joins the parts of a qualified name with underscores, for derived object names.
func Flatten(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
