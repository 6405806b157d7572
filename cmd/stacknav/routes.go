package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/stacknav/pkg/allocation"
	"github.com/vango-dev/stacknav/pkg/router"
)

func routesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List registered routes",
		Long: `List the registered routes in matching order with their resolved
layout chains (outermost first), parameters and meta.

Examples:
  stacknav routes
  stacknav routes --config ./app --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := loadRegistry(newLogger())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				type entry struct {
					router.Route
					Resolved []router.Layout `json:"resolvedLayouts"`
				}
				entries := make([]entry, 0, reg.Len())
				for _, r := range reg.Routes() {
					layouts, _ := reg.RouteLayouts(r.Path)
					entries = append(entries, entry{Route: r, Resolved: layouts})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tCOMPONENT\tLAYOUTS\tTYPE\tBREAKPOINTS")
			for _, r := range reg.Routes() {
				layouts, _ := reg.RouteLayouts(r.Path)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					reg.FullPath(r.Path),
					r.Component,
					formatLayouts(layouts),
					dash(r.Meta.Type),
					formatBreakpoints(r.Meta.Breakpoints),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}

func formatLayouts(layouts []router.Layout) string {
	if len(layouts) == 0 {
		return "-"
	}
	parts := make([]string, len(layouts))
	for i, l := range layouts {
		parts[i] = string(l.Component)
		if l.Key != "" {
			parts[i] += "#" + l.Key
		}
	}
	return strings.Join(parts, " > ")
}

func formatBreakpoints(bps []allocation.Breakpoint) string {
	if len(bps) == 0 {
		return "-"
	}
	parts := make([]string, len(bps))
	for i, bp := range bps {
		parts[i] = fmt.Sprintf("%g:%g", bp.Threshold, bp.MinVW)
	}
	return strings.Join(parts, ",")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
