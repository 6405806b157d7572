package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/stacknav/pkg/allocation"
	"github.com/vango-dev/stacknav/pkg/stack"
	"github.com/vango-dev/stacknav/pkg/view"
)

func allocateCmd() *cobra.Command {
	var (
		width  float64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "allocate <path>...",
		Short: "Compute widths for a stack of views",
		Long: `Compute how the viewport is shared by a stack of views, leftmost
first. Each path is resolved through the route registry and sized by its
route's breakpoints. Views left of the visible range are marked hidden.

Examples:
  stacknav allocate --width 1440 / /inbox /inbox/7
  stacknav allocate -w 800 /inbox /inbox/7 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, reg, err := loadRegistry(newLogger())
			if err != nil {
				return err
			}
			if width <= 0 {
				width = cfg.Viewport.Width
			}

			st := view.State{Views: make([]view.ViewDef, len(args))}
			for i, p := range args {
				st.Views[i] = view.ViewDef{ID: strconv.Itoa(i + 1), URL: reg.FullPath(p)}
			}
			st.ActiveID = st.Views[len(st.Views)-1].ID

			views := stack.ResolveState(reg, st)
			allocs := allocation.Allocate(width, stack.Inputs(views), view.ModeDisappear)
			from := allocation.VisibleFrom(allocs)

			out := cmd.OutOrStdout()
			if asJSON {
				type entry struct {
					Path      string  `json:"path"`
					View      string  `json:"view"`
					VW        float64 `json:"vw"`
					PX        float64 `json:"px"`
					Visible   bool    `json:"visible"`
				}
				entries := make([]entry, len(views))
				for i, v := range views {
					entries[i] = entry{
						Path:      args[i],
						View:      stack.Describe(v),
						VW:        allocs[i].VW,
						PX:        allocs[i].VW * width / allocation.TotalVW,
						Visible:   i >= from,
					}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "PATH\tVIEW\tVW\tPX\t\n")
			for i, v := range views {
				hidden := ""
				if i < from {
					hidden = "hidden"
				}
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.0f\t%s\n",
					args[i],
					stack.Describe(v),
					allocs[i].VW,
					allocs[i].VW*width/allocation.TotalVW,
					hidden,
				)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nwidth %gpx, visible from #%d\n", width, from+1)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&width, "width", "w", 0, "Viewport width in pixels (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}
