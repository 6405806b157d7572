package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/stacknav/internal/errors"
	"github.com/vango-dev/stacknav/pkg/allocation"
	"github.com/vango-dev/stacknav/pkg/router"
)

// ConfigFileNames are the configuration files looked up by Load, in order.
var ConfigFileNames = []string{"stacknav.json", "stacknav.yaml", "stacknav.yml"}

const (
	// DefaultBasePath is the default application base path.
	DefaultBasePath = "/"

	// DefaultDuplicates is the default duplicate route policy.
	DefaultDuplicates = "last-wins"

	// DefaultTransitionWindow is the default transition window.
	DefaultTransitionWindow = "300ms"

	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 1280

	// DefaultInspectAddr is the default inspector listen address.
	DefaultInspectAddr = ":7070"

	// DefaultSnapshotKey is the default S3 object key for history snapshots.
	DefaultSnapshotKey = "stacknav/history.json"
)

// Config represents the complete stacknav.json (or stacknav.yaml)
// configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// BasePath is the path the application is mounted at.
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty" validate:"omitempty,startswith=/"`

	// Strict rejects malformed routes instead of skipping them.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`

	// Duplicates is the duplicate route policy: last-wins, first-wins or
	// reject.
	Duplicates string `json:"duplicates,omitempty" yaml:"duplicates,omitempty" validate:"omitempty,oneof=last-wins first-wins reject"`

	// Routes are the route definitions in matching order.
	Routes []RouteConfig `json:"routes" yaml:"routes" validate:"dive"`

	// Layouts maps "/path" or "/path#variant" to a layout component.
	Layouts map[string]string `json:"layouts,omitempty" yaml:"layouts,omitempty" validate:"dive,keys,startswith=/,endkeys,required"`

	// Errors maps a path to the error view of its subtree.
	Errors map[string]string `json:"errors,omitempty" yaml:"errors,omitempty" validate:"dive,keys,startswith=/,endkeys,required"`

	// Transition contains transition settings.
	Transition TransitionConfig `json:"transition,omitempty" yaml:"transition,omitempty"`

	// Viewport contains allocation settings.
	Viewport ViewportConfig `json:"viewport,omitempty" yaml:"viewport,omitempty"`

	// Inspect contains inspector server settings.
	Inspect InspectConfig `json:"inspect,omitempty" yaml:"inspect,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RouteConfig is one route definition.
type RouteConfig struct {
	Path      string `json:"path" yaml:"path" validate:"required,startswith=/"`
	Component string `json:"component" yaml:"component" validate:"required"`

	// Layouts lists the layout chain explicitly. When absent the chain is
	// derived from the layouts table.
	Layouts []string `json:"layouts,omitempty" yaml:"layouts,omitempty" validate:"dive,required"`

	// Type is the view type used to find open views.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	Breakpoints []BreakpointConfig `json:"breakpoints,omitempty" yaml:"breakpoints,omitempty" validate:"dive"`
}

// BreakpointConfig is a minimum-width rule.
type BreakpointConfig struct {
	Breakpoint float64 `json:"breakpoint" yaml:"breakpoint" validate:"gte=0"`
	MinVW      float64 `json:"minVw" yaml:"minVw" validate:"gte=0,lte=100"`
}

// TransitionConfig contains transition settings.
type TransitionConfig struct {
	// Window is how long disappearing views are kept (e.g., "300ms").
	Window string `json:"window,omitempty" yaml:"window,omitempty"`
}

// ViewportConfig contains allocation settings.
type ViewportConfig struct {
	// Width is the viewport width in pixels.
	Width float64 `json:"width,omitempty" yaml:"width,omitempty" validate:"gte=0"`
}

// InspectConfig contains inspector server settings.
type InspectConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// InitialURL is the first location of the inspected session.
	InitialURL string `json:"initialUrl,omitempty" yaml:"initialUrl,omitempty" validate:"omitempty,startswith=/"`

	// Snapshot persists the session history to S3 when Bucket is set.
	Snapshot SnapshotConfig `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

// SnapshotConfig configures S3 history snapshots.
type SnapshotConfig struct {
	Bucket       string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Key          string `json:"key,omitempty" yaml:"key,omitempty"`
	Region       string `json:"region,omitempty" yaml:"region,omitempty" validate:"required_with=Bucket"`
	Endpoint     string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" validate:"omitempty,url"`
	UsePathStyle bool   `json:"usePathStyle,omitempty" yaml:"usePathStyle,omitempty"`
}

// Enabled reports whether snapshots are configured.
func (s SnapshotConfig) Enabled() bool {
	return s.Bucket != ""
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory. It looks for
// stacknav.json, stacknav.yaml and stacknav.yml, in that order.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("C001").
		WithDetail("No stacknav.json or stacknav.yaml found in " + dir).
		WithSuggestion("Create stacknav.yaml with a routes list")
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").WithDetail("No configuration at " + path)
		}
		return nil, errors.New("C002").Wrap(err)
	}

	cfg, err := Parse(data, isYAML(path))
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes, defaults and validates a configuration document.
func Parse(data []byte, asYAML bool) (*Config, error) {
	cfg := &Config{}
	if asYAML {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.New("C002").
				WithDetail("Failed to parse YAML: " + err.Error()).
				WithSuggestion("Check the indentation and field names")
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, errors.New("C002").
				WithDetail("Failed to parse JSON: " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// by extension.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("C002").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C002").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Duplicates == "" {
		c.Duplicates = DefaultDuplicates
	}
	if c.Transition.Window == "" {
		c.Transition.Window = DefaultTransitionWindow
	}
	if c.Viewport.Width == 0 {
		c.Viewport.Width = DefaultWidth
	}
	if c.Inspect.Addr == "" {
		c.Inspect.Addr = DefaultInspectAddr
	}
	if c.Inspect.InitialURL == "" {
		c.Inspect.InitialURL = "/"
	}
	if c.Inspect.Snapshot.Key == "" {
		c.Inspect.Snapshot.Key = DefaultSnapshotKey
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.New("C003").
				WithDetailf("%s failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value()).
				Wrap(err)
		}
		return errors.New("C003").Wrap(err)
	}

	if _, err := time.ParseDuration(c.Transition.Window); err != nil {
		return errors.New("C003").
			WithDetailf("transition.window %q is not a duration", c.Transition.Window).
			WithSuggestion(`Use a Go duration such as "300ms" or "1s".`)
	}
	return nil
}

// TransitionWindow returns the parsed transition window.
func (c *Config) TransitionWindow() time.Duration {
	d, err := time.ParseDuration(c.Transition.Window)
	if err != nil {
		return 300 * time.Millisecond
	}
	return d
}

// RouterConfig converts the route tables to registry input.
func (c *Config) RouterConfig() router.Config {
	out := router.Config{
		Routes:  make([]router.Route, len(c.Routes)),
		Layouts: make(map[string]router.Handle, len(c.Layouts)),
		Errors:  make(map[string]router.Handle, len(c.Errors)),
	}
	for i, rc := range c.Routes {
		r := router.Route{
			Path:      rc.Path,
			Component: router.Handle(rc.Component),
			Meta:      router.Meta{Type: rc.Type},
		}
		if rc.Layouts != nil {
			r.Layouts = make([]router.Handle, len(rc.Layouts))
			for j, l := range rc.Layouts {
				r.Layouts[j] = router.Handle(l)
			}
		}
		for _, bp := range rc.Breakpoints {
			r.Meta.Breakpoints = append(r.Meta.Breakpoints, allocation.Breakpoint{
				Threshold: bp.Breakpoint,
				MinVW:     bp.MinVW,
			})
		}
		out.Routes[i] = r
	}
	for k, v := range c.Layouts {
		out.Layouts[k] = router.Handle(v)
	}
	for k, v := range c.Errors {
		out.Errors[k] = router.Handle(v)
	}
	return out
}

// RouterOptions converts the registry settings to options.
func (c *Config) RouterOptions() ([]router.Option, error) {
	policy, ok := router.ParseDuplicatePolicy(c.Duplicates)
	if !ok {
		return nil, errors.New("C003").
			WithDetailf("unknown duplicate policy %q", c.Duplicates).
			WithSuggestion("Use last-wins, first-wins or reject.")
	}
	return []router.Option{
		router.WithBasePath(c.BasePath),
		router.WithStrict(c.Strict),
		router.WithDuplicates(policy),
	}, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a configuration file, or an error if
// not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("C001").
				WithDetail(fmt.Sprintf("No stacknav configuration found in %s or any parent directory", startDir))
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest ancestor holding one.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
