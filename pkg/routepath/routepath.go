// Package routepath holds the path arithmetic used by route registration and
// matching: trailing-slash normalization, segment splitting, base-path
// prefixing and stripping, and extraction of paths from absolute URLs.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Separator is the path segment separator.
const Separator = "/"

// Path validation errors.
var (
	ErrInvalidPath     = errors.New("invalid path")
	ErrBackslashInPath = errors.New("path contains backslash")
	ErrNullByteInPath  = errors.New("path contains null byte")
	ErrPathEscapesRoot = errors.New("path escapes root via ..")
)

// SplitPathAndQuery splits input into the path and the raw query (without
// "?"). A fragment is dropped.
func SplitPathAndQuery(input string) (path, query string) {
	input, _, _ = strings.Cut(input, "#")
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

// Normalize drops query and fragment and removes a single trailing
// separator except for the root. An empty path normalizes to the root.
func Normalize(p string) string {
	p, _ = SplitPathAndQuery(p)
	if p == "" {
		return Separator
	}
	if len(p) > 1 && strings.HasSuffix(p, Separator) {
		p = p[:len(p)-1]
	}
	return p
}

// Split returns the segments of a normalized path. The root has none.
func Split(p string) []string {
	p = strings.TrimPrefix(Normalize(p), Separator)
	if p == "" {
		return nil
	}
	return strings.Split(p, Separator)
}

// Prefixes returns every segment-boundary prefix of p from the root to p
// itself: "/a/b" → ["/", "/a", "/a/b"].
func Prefixes(p string) []string {
	segments := Split(p)
	out := make([]string, 0, len(segments)+1)
	out = append(out, Separator)
	for i := range segments {
		out = append(out, Separator+strings.Join(segments[:i+1], Separator))
	}
	return out
}

// Parent returns the path one segment up. The parent of the root is the
// root, reported with ok=false.
func Parent(p string) (parent string, ok bool) {
	p = Normalize(p)
	if p == Separator {
		return Separator, false
	}
	i := strings.LastIndex(p, Separator)
	if i <= 0 {
		return Separator, true
	}
	return p[:i], true
}

// NormalizeBase normalizes a base path: ensures a leading separator, drops
// a trailing one, and maps "" to the root.
func NormalizeBase(base string) string {
	if base == "" || base == Separator {
		return Separator
	}
	if !strings.HasPrefix(base, Separator) {
		base = Separator + base
	}
	return strings.TrimRight(base, Separator)
}

// HasBase reports whether p starts with base on a segment boundary.
// Query and fragment boundaries count.
func HasBase(base, p string) bool {
	if base == Separator {
		return true
	}
	if !strings.HasPrefix(p, base) {
		return false
	}
	if len(p) == len(base) {
		return true
	}
	switch p[len(base)] {
	case '/', '?', '#':
		return true
	}
	return false
}

// JoinBase prefixes p with base unless base is the root or p already
// carries it. Query and fragment are preserved; the root maps to base.
//
//	JoinBase("/app", "/")            == "/app"
//	JoinBase("/app", "/users?p=1")   == "/app/users?p=1"
//	JoinBase("/app", "/app/users")   == "/app/users"
func JoinBase(base, p string) string {
	if base == Separator || HasBase(base, p) {
		return p
	}
	if p == "" || p == Separator {
		return base
	}
	if strings.HasPrefix(p, "?") || strings.HasPrefix(p, "#") {
		return base + p
	}
	if strings.HasPrefix(p, Separator+"?") || strings.HasPrefix(p, Separator+"#") {
		return base + p[1:]
	}
	if !strings.HasPrefix(p, Separator) {
		p = Separator + p
	}
	return base + p
}

// StripBase removes base from the front of p. Paths without the prefix are
// returned normalized but otherwise unchanged.
func StripBase(base, p string) string {
	p = Normalize(p)
	if base == Separator || !HasBase(base, p) {
		return p
	}
	rest := p[len(base):]
	if rest == "" {
		return Separator
	}
	return Normalize(rest)
}

// FromURL extracts the path from a relative or absolute URL and strips
// base from it.
func FromURL(base, raw string) string {
	p := raw
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil {
			p = u.EscapedPath()
		}
	}
	return StripBase(base, p)
}

// Clean validates and canonicalizes an inbound navigation path: it must be
// relative to the origin, may not contain a backslash or NUL byte, and dot
// segments are resolved without escaping the root. The query is preserved.
func Clean(input string) (string, error) {
	if strings.HasPrefix(input, "//") || strings.Contains(input, "://") {
		return "", ErrInvalidPath
	}
	if !strings.HasPrefix(input, Separator) {
		return "", ErrInvalidPath
	}

	path, query, hasQuery := strings.Cut(input, "?")
	if strings.Contains(path, "\\") {
		return "", ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", ErrNullByteInPath
	}

	var kept []string
	for _, seg := range strings.Split(path, Separator) {
		switch seg {
		case "", ".":
		case "..":
			if len(kept) == 0 {
				return "", ErrPathEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}

	out := Separator + strings.Join(kept, Separator)
	if hasQuery {
		out += "?" + query
	}
	return out, nil
}
