package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"fxl/ssr"
	"fxl/state"
)

func ssrCommand() *cli.Command {
	return &cli.Command{
		Name:         "ssr",
		Usage:        "Replaces layout directives with generated classes and static stylesheet with @media blocks",
		OnUsageError: usageErrorHandler,
		Action:       renderStatic,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "breakpoint", Aliases: []string{"b"}, Usage: "render only `ALIAS` (may be repeated), overrides configuration"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite destination if it exists"},
		},
		ArgsUsage: "SOURCE [DESTINATION]",
		CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to XHTML document carrying layout attributes

DESTINATION:
    file name for resulting document, if absent - STDOUT
`, cli.CommandHelpTemplate),
	}
}

func renderStatic(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	env.Overwrite = cmd.Bool("overwrite")
	src, dst := cmd.Args().Get(0), cmd.Args().Get(1)

	doc, err := loadDocument(env, src)
	if err != nil {
		return err
	}
	reg, err := env.Registry()
	if err != nil {
		return err
	}

	opts := env.Cfg.SSROptions()
	if cmd.IsSet("breakpoint") {
		opts.Aliases = cmd.StringSlice("breakpoint")
	}
	res, err := ssr.New(reg, opts, env.Log).Inject(doc)
	if err != nil {
		return fmt.Errorf("unable to generate static styles: %w", err)
	}
	env.Rpt.StoreData("ssr.css", []byte(res.Sheet.String()))

	if err := writeDocument(env, doc, "output.xhtml", dst); err != nil {
		return err
	}
	env.Log.Info("Static styles generated",
		zap.String("source", src),
		zap.String("destination", displayName(dst)),
		zap.Int("classes", len(res.Classes)),
		zap.Int("rules", len(res.Sheet.Items)))
	return nil
}
