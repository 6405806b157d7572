package stack

import "github.com/vango-dev/stacknav/pkg/view"

// OpenView is an open view matched by Open.
type OpenView struct {
	View   view.ViewDef      `json:"view"`
	Params map[string]string `json:"params"`
	Active bool              `json:"active"`
}

// Open returns the open views whose route has meta type typ and whose
// captured params include every entry of params. A nil params matches any
// view of the type.
func Open(m Matcher, st view.State, typ string, params map[string]string) []OpenView {
	var out []OpenView
	for _, def := range st.Views {
		match, ok := m.Match(def.Path())
		if !ok || match.Meta.Type != typ {
			continue
		}
		if !includes(match.Params, params) {
			continue
		}
		out = append(out, OpenView{
			View:   def,
			Params: match.Params,
			Active: def.ID == st.ActiveID,
		})
	}
	return out
}

func includes(have, want map[string]string) bool {
	for k, v := range want {
		if got, ok := have[k]; !ok || got != v {
			return false
		}
	}
	return true
}
