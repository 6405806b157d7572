// Package script runs scripted sequences of navigation operations against
// an in-memory session. Scripts are YAML documents:
//
//	width: 1280
//	initialUrl: /
//	steps:
//	  - go: {href: /inbox/1}
//	  - navigate: {from: active, path: /inbox/2, append: true}
//	  - resize: 640
//	  - close: active
//	  - settle: true
//	  - back: true
//
// View ids are assigned sequentially ("v1", "v2", ...) so runs are
// reproducible. The id "active" names the active view at the time the step
// runs; a navigate step without from starts at the active view.
// Disappearing views stay in frames until a settle step.
package script

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/stacknav/internal/errors"
	"github.com/vango-dev/stacknav/pkg/urlparam"
	"github.com/vango-dev/stacknav/pkg/view"
)

// ActiveID stands for the active view in step ids.
const ActiveID = "active"

// Script is a sequence of steps.
type Script struct {
	Width      float64 `yaml:"width,omitempty" validate:"gte=0"`
	InitialURL string  `yaml:"initialUrl,omitempty" validate:"omitempty,startswith=/"`
	Steps      []Step  `yaml:"steps" validate:"required,dive"`
}

// Step is one operation. Exactly one field besides Name is set.
type Step struct {
	Name string `yaml:"name,omitempty"`

	Navigate *NavigateStep `yaml:"navigate,omitempty"`
	Go       *GoStep       `yaml:"go,omitempty"`
	Close    string        `yaml:"close,omitempty"`
	Active   string        `yaml:"active,omitempty"`
	Query    *UpdateStep   `yaml:"query,omitempty"`
	Props    *UpdateStep   `yaml:"props,omitempty"`
	Back     bool          `yaml:"back,omitempty"`
	Forward  bool          `yaml:"forward,omitempty"`
	Resize   float64       `yaml:"resize,omitempty" validate:"gte=0"`
	Settle   bool          `yaml:"settle,omitempty"`
}

// NavigateStep calls Navigate.
type NavigateStep struct {
	From   string          `yaml:"from"`
	Path   string          `yaml:"path" validate:"required"`
	Query  urlparam.Params `yaml:"query,omitempty"`
	Props  urlparam.Params `yaml:"props,omitempty"`
	Append bool            `yaml:"append,omitempty"`
	Target view.Target     `yaml:"target,omitempty" validate:"omitempty,oneof=_self _top _blank _void"`
	Layout string          `yaml:"layout,omitempty"`
}

// GoStep follows a link from the active view.
type GoStep struct {
	Href    string `yaml:"href" validate:"required"`
	Replace bool   `yaml:"replace,omitempty"`
}

// UpdateStep merges query params or props into a view.
type UpdateStep struct {
	ID         string          `yaml:"id" validate:"required"`
	Params     urlparam.Params `yaml:"params"`
	ReplaceAll bool            `yaml:"replaceAll,omitempty"`
}

// Op returns the operation name of the step, or "" when the step sets no
// operation or more than one.
func (s Step) Op() string {
	var ops []string
	if s.Navigate != nil {
		ops = append(ops, "navigate")
	}
	if s.Go != nil {
		ops = append(ops, "go")
	}
	if s.Close != "" {
		ops = append(ops, "close")
	}
	if s.Active != "" {
		ops = append(ops, "active")
	}
	if s.Query != nil {
		ops = append(ops, "query")
	}
	if s.Props != nil {
		ops = append(ops, "props")
	}
	if s.Back {
		ops = append(ops, "back")
	}
	if s.Forward {
		ops = append(ops, "forward")
	}
	if s.Resize > 0 {
		ops = append(ops, "resize")
	}
	if s.Settle {
		ops = append(ops, "settle")
	}
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("X002").WithDetail(path).Wrap(err)
	}
	return Parse(data)
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.New("X002").
			WithDetail("Failed to parse script: " + err.Error())
	}

	if err := validate.Struct(&s); err != nil {
		return nil, errors.New("X002").
			WithDetail("Invalid script: " + err.Error())
	}
	for i, st := range s.Steps {
		if st.Op() == "" {
			return nil, errors.New("X002").
				WithDetailf("step %d must set exactly one operation", i+1).
				WithSuggestion("Split combined operations into separate steps.")
		}
	}
	return &s, nil
}

// Describe returns a one-line summary of the step.
func (s Step) Describe() string {
	var d string
	switch s.Op() {
	case "navigate":
		d = fmt.Sprintf("navigate from=%s path=%s", s.Navigate.From, s.Navigate.Path)
		if s.Navigate.Append {
			d += " append"
		}
		if s.Navigate.Target != "" {
			d += " target=" + string(s.Navigate.Target)
		}
	case "go":
		d = "go " + s.Go.Href
		if s.Go.Replace {
			d += " replace"
		}
	case "close":
		d = "close " + s.Close
	case "active":
		d = "active " + s.Active
	case "query":
		d = fmt.Sprintf("query %s %s", s.Query.ID, urlparam.Encode(s.Query.Params))
	case "props":
		d = fmt.Sprintf("props %s %s", s.Props.ID, urlparam.Encode(s.Props.Params))
	case "resize":
		d = fmt.Sprintf("resize %g", s.Resize)
	default:
		d = s.Op()
	}
	if s.Name != "" {
		d = s.Name + ": " + d
	}
	return d
}
