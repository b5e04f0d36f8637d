package main

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"

	"fxl/breakpoint"
	"fxl/matchmedia"
	"fxl/mediaquery"
	"fxl/state"
)

func breakpointsCommand() *cli.Command {
	return &cli.Command{
		Name:         "breakpoints",
		Usage:        "Lists configured breakpoints",
		OnUsageError: usageErrorHandler,
		Action:       listBreakpoints,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "by-alias", Usage: "sort by alias instead of priority"},
			&cli.FloatFlag{Name: "width", Usage: "mark breakpoints active for viewport `PIXELS` wide"},
			&cli.FloatFlag{Name: "height", Value: 800, Usage: "viewport height in `PIXELS` used with --width"},
		},
		ArgsUsage: "DESTINATION",
	}
}

func listBreakpoints(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	reg, err := env.Registry()
	if err != nil {
		return err
	}

	items := reg.Items()
	if cmd.Bool("by-alias") {
		sort.SliceStable(items, func(i, j int) bool { return natural.Less(items[i].Alias, items[j].Alias) })
	} else {
		slices.Reverse(items)
	}

	var active map[string]bool
	if cmd.IsSet("width") {
		active = map[string]bool{"": true}
		for _, alias := range matchmedia.AliasesFor(reg, mediaquery.Environment{Width: cmd.Float("width"), Height: cmd.Float("height")}) {
			active[alias] = true
		}
	}
	return writeOutput(cmd.Args().Get(0), true, []byte(formatBreakpoints(items, active)))
}

// formatBreakpoints renders table of items, active is nil when no viewport
// was given.
func formatBreakpoints(items []breakpoint.BreakPoint, active map[string]bool) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ALIAS\tSUFFIX\tPRIORITY\tOVERLAPPING\tACTIVE\tMEDIA QUERY")
	for _, bp := range items {
		priority := strconv.Itoa(bp.Priority)
		if bp.IsBase() {
			priority = "base"
		}
		mark := ""
		if active[bp.Alias] {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n", bp, bp.Suffix, priority, bp.Overlapping, mark, bp.MediaQuery)
	}
	tw.Flush()
	return sb.String()
}
