package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vango-dev/stacknav/pkg/routepath"
)

// captureRe matches a [name] capture inside a pattern segment.
var captureRe = regexp.MustCompile(`\[([^\[\]/]+)\]`)

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenParam             // the whole segment is one capture
	tokenMixed             // literal text and captures in one segment
)

// token matches one path segment.
type token struct {
	kind    tokenKind
	literal string
	name    string         // tokenParam
	names   []string       // tokenMixed, in pattern order
	re      *regexp.Regexp // tokenMixed
}

// pattern is a compiled route path.
type pattern struct {
	source     string
	tokens     []token
	paramNames []string
}

// compilePattern compiles a normalized route path into segment tokens.
func compilePattern(path string) (*pattern, error) {
	p := &pattern{source: path}
	seen := make(map[string]bool)

	addName := func(name string) error {
		if seen[name] {
			return fmt.Errorf("parameter %q declared twice", name)
		}
		seen[name] = true
		p.paramNames = append(p.paramNames, name)
		return nil
	}

	for _, seg := range routepath.Split(path) {
		if seg == "" {
			return nil, fmt.Errorf("empty segment")
		}

		locs := captureRe.FindAllStringSubmatchIndex(seg, -1)
		if len(locs) == 0 {
			if strings.ContainsAny(seg, "[]") {
				return nil, fmt.Errorf("unbalanced brackets in segment %q", seg)
			}
			p.tokens = append(p.tokens, token{kind: tokenLiteral, literal: seg})
			continue
		}

		if len(locs) == 1 && locs[0][0] == 0 && locs[0][1] == len(seg) {
			name := seg[locs[0][2]:locs[0][3]]
			if err := addName(name); err != nil {
				return nil, err
			}
			p.tokens = append(p.tokens, token{kind: tokenParam, name: name})
			continue
		}

		var expr strings.Builder
		var names []string
		expr.WriteString("^")
		last := 0
		for _, loc := range locs {
			lit := seg[last:loc[0]]
			if strings.ContainsAny(lit, "[]") {
				return nil, fmt.Errorf("unbalanced brackets in segment %q", seg)
			}
			expr.WriteString(regexp.QuoteMeta(lit))
			expr.WriteString("([^/]+)")

			name := seg[loc[2]:loc[3]]
			if err := addName(name); err != nil {
				return nil, err
			}
			names = append(names, name)
			last = loc[1]
		}
		tail := seg[last:]
		if strings.ContainsAny(tail, "[]") {
			return nil, fmt.Errorf("unbalanced brackets in segment %q", seg)
		}
		expr.WriteString(regexp.QuoteMeta(tail))
		expr.WriteString("$")

		p.tokens = append(p.tokens, token{
			kind:  tokenMixed,
			names: names,
			re:    regexp.MustCompile(expr.String()),
		})
	}
	return p, nil
}

// match tests the segments of a normalized path. Captured values are
// returned verbatim.
func (p *pattern) match(segments []string) (map[string]string, bool) {
	if len(segments) != len(p.tokens) {
		return nil, false
	}

	params := make(map[string]string, len(p.paramNames))
	for i, tok := range p.tokens {
		seg := segments[i]
		switch tok.kind {
		case tokenLiteral:
			if seg != tok.literal {
				return nil, false
			}
		case tokenParam:
			if seg == "" {
				return nil, false
			}
			params[tok.name] = seg
		case tokenMixed:
			m := tok.re.FindStringSubmatch(seg)
			if m == nil {
				return nil, false
			}
			for j, name := range tok.names {
				params[name] = m[j+1]
			}
		}
	}
	return params, true
}
