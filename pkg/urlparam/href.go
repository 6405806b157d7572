package urlparam

import (
	"net/url"
	"strings"
)

// dummyBase lets relative hrefs parse with net/url.
const dummyBase = "http://dummy.base"

// Href is a resolved link target.
type Href struct {
	// URL is the path (or origin+path for absolute hrefs) plus the encoded
	// query, with a single trailing slash removed except at the root.
	URL string

	// Path is the decoded path component.
	Path string

	// Query holds the href's own query merged with the extra params.
	Query Params
}

// Resolve combines an href that may carry its own query string with extra
// params. Extra params win over params already present in the href.
//
//	Resolve("/users?page=1", Params{"sort": "name"}).URL == "/users?page=1&sort=name"
func Resolve(to string, params Params) Href {
	base, _ := url.Parse(dummyBase)
	u, err := base.Parse(to)
	if err != nil {
		u = &url.URL{Path: to}
	}

	query := ParseQuery(u.RawQuery)
	for k, v := range params {
		if v == nil {
			delete(query, k)
			continue
		}
		query[k] = v
	}

	prefix := u.EscapedPath()
	if prefix == "" {
		prefix = "/"
	}
	if IsAbsolute(to) {
		prefix = u.Scheme + "://" + u.Host + prefix
	}
	if len(prefix) > 1 && strings.HasSuffix(prefix, "/") {
		prefix = strings.TrimSuffix(prefix, "/")
	}

	out := prefix
	if search := Encode(query); search != "" {
		out += "?" + search
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return Href{URL: out, Path: path, Query: query}
}

// IsAbsolute reports whether href carries an http(s) scheme.
func IsAbsolute(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// IsExternal reports whether href points outside origin. Relative and
// unparsable hrefs are internal.
func IsExternal(href, origin string) bool {
	o, err := url.Parse(origin)
	if err != nil {
		return false
	}
	u, err := o.Parse(href)
	if err != nil {
		return false
	}
	return u.Scheme != o.Scheme || u.Host != o.Host
}
