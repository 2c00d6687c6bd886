package errors

import (
	"strings"
	"unicode"
)

// rule rejects a value when bad reports true.
type rule struct {
	bad func(string) bool
	msg string
}

func hasControl(s string) bool { return strings.IndexFunc(s, unicode.IsControl) >= 0 }

const (
	maxPathLen    = 500
	maxDocNameLen = 256
)

// pathRules apply to document paths sent by remote callers and resolved
// below a source directory.
var pathRules = []rule{
	{func(p string) bool { return p == "" }, "path cannot be empty"},
	{func(p string) bool { return len(p) > maxPathLen }, "path too long (max 500 characters)"},
	{hasControl, "path contains invalid characters"},
	{func(p string) bool { return strings.HasPrefix(p, "/") }, "path must be relative"},
	{func(p string) bool { return strings.Contains(p, "..") }, "path cannot contain .."},
	{func(p string) bool { return strings.Contains(p, `\`) }, "path cannot contain backslashes"},
}

// docNameRules apply to document keys: file stems of a directory source and
// _id values of a MongoDB source.
var docNameRules = []rule{
	{func(n string) bool { return strings.TrimSpace(n) == "" }, "document name cannot be empty"},
	{func(n string) bool { return len(n) > maxDocNameLen }, "document name too long (max 256 characters)"},
	{hasControl, "document name contains control characters"},
	{func(n string) bool { return strings.ContainsAny(n, `/\`) }, "document name cannot contain path separators"},
}

func check(rules []rule, code Code, v string) error {
	for _, r := range rules {
		if r.bad(v) {
			return New(code, "%s", r.msg)
		}
	}
	return nil
}

// ValidatePath rejects empty, absolute and traversing paths. Errors carry
// ErrCodeInvalidPath.
func ValidatePath(path string) error { return check(pathRules, ErrCodeInvalidPath, path) }

// ValidateDocName rejects document keys that are blank, overly long or
// contain separators. Errors carry ErrCodeInvalidInput.
func ValidateDocName(name string) error { return check(docNameRules, ErrCodeInvalidInput, name) }
