package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func matchCmd() *cobra.Command {
	var (
		asJSON bool
		layout string
	)

	cmd := &cobra.Command{
		Use:   "match <path>",
		Short: "Resolve a path to its route",
		Long: `Resolve a path (with or without the base path) to its component,
layout chain, captured parameters and meta. Unmatched paths report the
error view of the nearest path that registers one.

Examples:
  stacknav match /users/42
  stacknav match /users/42 --layout compact
  stacknav match "/app/inbox/7?tab=all" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := loadRegistry(newLogger())
			if err != nil {
				return err
			}

			path := reg.PathFromURL(args[0])
			m, ok := reg.Match(path)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if !ok {
					h, _ := reg.ErrorFor(path)
					return enc.Encode(map[string]any{"found": false, "path": path, "errorView": h})
				}
				return enc.Encode(map[string]any{"found": true, "path": path, "match": m})
			}

			if !ok {
				h, found := reg.ErrorFor(path)
				fmt.Fprintf(out, "404  %s\n", path)
				if found {
					fmt.Fprintf(out, "  Error view: %s\n", h)
				} else {
					fmt.Fprintln(out, "  Error view: (none)")
				}
				return nil
			}

			fmt.Fprintf(out, "%s  →  %s\n", path, m.Pattern)
			fmt.Fprintf(out, "  Component: %s\n", m.Component)
			fmt.Fprintf(out, "  Layouts:   %s\n", formatLayouts(m.LayoutsFor(layout)))
			fmt.Fprintf(out, "  Params:    %s\n", formatParams(m.Params))
			fmt.Fprintf(out, "  Type:      %s\n", dash(m.Meta.Type))
			fmt.Fprintf(out, "  Breakpoints: %s\n", formatBreakpoints(m.Meta.Breakpoints))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.Flags().StringVar(&layout, "layout", "", "Layout variant key")

	return cmd
}

func formatParams(params map[string]string) string {
	if len(params) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k]
	}
	return strings.Join(parts, " ")
}
