package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category    Category
	Message     string
	Explanation string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Registration (R001-R009)
	"R001": {
		Category:    CategoryRegistration,
		Message:     "Route path is empty",
		Explanation: "Every route needs a path pattern such as \"/\" or \"/users/[id]\".",
	},
	"R002": {
		Category:    CategoryRegistration,
		Message:     `Route path must start with "/"`,
		Explanation: "Route, layout and error paths are absolute within the base path.",
	},
	"R003": {
		Category:    CategoryRegistration,
		Message:     "Route component is missing",
		Explanation: "A route must name the component rendered when it matches.",
	},
	"R004": {
		Category:    CategoryRegistration,
		Message:     "Duplicate route path",
		Explanation: "The same path pattern was registered twice while the duplicate policy is \"reject\".",
	},
	"R005": {
		Category:    CategoryRegistration,
		Message:     "Invalid route pattern",
		Explanation: "Dynamic segments are written as [name] with a non-empty name and no nesting.",
	},
	"R006": {
		Category:    CategoryRegistration,
		Message:     "Layout or error handler is missing",
		Explanation: "Layout and error entries must map a path to a component.",
	},

	// Navigation and history store (N001-N019)
	"N001": {
		Category:    CategoryNavigation,
		Message:     "View not found",
		Explanation: "No view in the current stack has the given id.",
	},
	"N002": {
		Category:    CategoryNavigation,
		Message:     "Invalid navigation path",
		Explanation: "Navigation paths are absolute, contain no backslash or NUL byte and do not escape the root.",
	},
	"N010": {
		Category:    CategoryNavigation,
		Message:     "History store write failed",
		Explanation: "The history store rejected a push or replace of the navigation record.",
	},
	"N011": {
		Category:    CategoryNavigation,
		Message:     "Navigation state encoding failed",
		Explanation: "The view stack could not be serialized to its persisted form.",
	},

	// Configuration (C001-C009)
	"C001": {
		Category:    CategoryConfig,
		Message:     "Configuration file not found",
		Explanation: "Expected stacknav.json, stacknav.yaml or stacknav.yml in the project directory.",
	},
	"C002": {
		Category:    CategoryConfig,
		Message:     "Configuration file is malformed",
		Explanation: "The configuration could not be parsed as JSON or YAML.",
	},
	"C003": {
		Category:    CategoryConfig,
		Message:     "Configuration is invalid",
		Explanation: "A configuration field failed validation.",
	},

	// Snapshots (S001-S009)
	"S001": {
		Category:    CategorySnapshot,
		Message:     "History snapshot failed",
		Explanation: "The history snapshot could not be saved to or loaded from its backing store.",
	},

	// CLI (X001-X009)
	"X001": {
		Category:    CategoryCLI,
		Message:     "Invalid command arguments",
		Explanation: "The command was called with missing or malformed arguments.",
	},
	"X002": {
		Category:    CategoryCLI,
		Message:     "Invalid simulation script",
		Explanation: "The script could not be parsed, or a step does not name exactly one operation.",
	},
	"X003": {
		Category:    CategoryCLI,
		Message:     "Simulation step failed",
		Explanation: "A scripted navigation operation returned an error or named an unknown view.",
	},
}

// Codes returns every registered code in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
