package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/stacknav"
	"github.com/vango-dev/stacknav/internal/script"
	"github.com/vango-dev/stacknav/pkg/stack"
)

func simulateCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "simulate <script.yaml>",
		Short: "Replay a scripted navigation session",
		Long: `Run a YAML script of navigation operations against an in-memory
session and print the stack, transition and allocation after every step.

Script format:
  width: 1280
  steps:
    - go: {href: /inbox/1}
    - navigate: {from: active, path: /inbox/2, append: true}
    - query: {id: v2, params: {tab: all}}
    - close: active
    - settle: true
    - back: true
    - resize: 640

Examples:
  stacknav simulate flows/checkout.yaml
  stacknav simulate flows/checkout.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sc, err := script.Load(args[0])
			if err != nil {
				return err
			}
			if sc.Width == 0 {
				sc.Width = cfg.Viewport.Width
			}

			routerOpts, err := cfg.RouterOptions()
			if err != nil {
				return err
			}
			sess, err := script.NewSession(cfg.RouterConfig(), routerOpts, sc, logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				return sess.Run(sc, func(r script.Result) {
					enc.Encode(map[string]any{
						"step":    r.Index + 1,
						"op":      r.Step.Op(),
						"outcome": r.Outcome,
						"changed": r.Changed,
						"frame":   r.Frame,
					})
				})
			}

			printFrame(out, "start", sess.App.Frame())
			return sess.Run(sc, func(r script.Result) {
				title := fmt.Sprintf("#%d %s", r.Index+1, r.Step.Describe())
				if r.Outcome != "" {
					title += " → " + string(r.Outcome)
				}
				if !r.Changed {
					title += " (no change)"
				}
				printFrame(out, title, r.Frame)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per step")

	return cmd
}

// printFrame writes the stack of f, one view per line, marking the active
// view with "*" and views off screen with "~".
func printFrame(w io.Writer, title string, f stacknav.Frame) {
	fmt.Fprintln(w, title)
	for i, v := range f.Views {
		mark := " "
		switch {
		case v.Active:
			mark = "*"
		case i < f.VisibleFrom:
			mark = "~"
		}
		fmt.Fprintf(w, "  %s %-4s %-10s %6.2fvw  %s  %s\n",
			mark, v.Def.ID, v.Mode, f.Allocations[i].VW, v.Def.URL, stack.Describe(v))
	}
	for _, v := range f.Void {
		fmt.Fprintf(w, "  ∅ %-4s %-10s           %s  %s\n", v.Def.ID, v.Mode, v.Def.URL, stack.Describe(v))
	}
	if len(f.Transition) > 0 {
		parts := make([]string, len(f.Transition))
		for i, it := range f.Transition {
			parts[i] = it.View.ID + ":" + string(it.Mode)
		}
		fmt.Fprintf(w, "  transition: %s\n", strings.Join(parts, " "))
	}
}
