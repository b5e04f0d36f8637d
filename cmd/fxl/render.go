package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"fxl/matchmedia"
	"fxl/state"
	"fxl/utils/debug"
)

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:         "render",
		Usage:        "Applies layout directives for a single viewport and writes resulting document",
		OnUsageError: usageErrorHandler,
		Action:       render,
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "width", Usage: "viewport width in `PIXELS` (default from configuration)"},
			&cli.FloatFlag{Name: "height", Usage: "viewport height in `PIXELS` (default from configuration)"},
			&cli.StringFlag{Name: "media", Usage: "media `TYPE` (screen or print)"},
			&cli.BoolFlag{Name: "server", Usage: "do not evaluate viewport, use frozen breakpoints instead"},
			&cli.StringSliceFlag{Name: "active", Usage: "with --server: `ALIAS` to consider active in addition to configured ones"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite destination if it exists"},
		},
		ArgsUsage: "SOURCE [DESTINATION]",
		CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to XHTML document carrying layout attributes (fxLayout, fxFlex, ...)

DESTINATION:
    file name for resulting document, if absent - STDOUT
`, cli.CommandHelpTemplate),
	}
}

func render(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	env.Overwrite = cmd.Bool("overwrite")

	if cmd.Args().Len() > 2 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	src, dst := cmd.Args().Get(0), cmd.Args().Get(1)

	doc, err := loadDocument(env, src)
	if err != nil {
		return err
	}

	var platform matchmedia.Platform
	if cmd.Bool("server") || env.Cfg.Layout.Server {
		srv, err := env.ServerPlatform(cmd.StringSlice("active")...)
		if err != nil {
			return err
		}
		env.Log.Info("Rendering with frozen breakpoints", zap.Strings("active", srv.Aliases()))
		platform = srv
	} else {
		vp := viewportFromFlags(env, cmd)
		doc.MatchEnvironment(vp.Environment())
		reg, err := env.Registry()
		if err != nil {
			return err
		}
		env.Log.Info("Rendering for viewport",
			zap.Float64("width", vp.Environment().Width),
			zap.Float64("height", vp.Environment().Height),
			zap.Strings("active", matchmedia.AliasesFor(reg, vp.Environment())))
		platform = vp
	}

	en, err := env.NewEngine(platform)
	if err != nil {
		return err
	}
	defer en.Close()

	n := en.Binder.Bind(doc)
	env.Log.Debug("Directives applied", zap.Int("elements", n), zap.Int("tracked", en.Marshaller.Elements()))
	if env.Rpt != nil {
		env.Rpt.StoreData("layout.txt", []byte(debug.LayoutTree(doc, en.Marshaller)))
	}

	if err := writeDocument(env, doc, "output.xhtml", dst); err != nil {
		return err
	}
	env.Log.Info("Document rendered", zap.String("source", src), zap.String("destination", displayName(dst)), zap.Int("elements", n))
	return nil
}

func viewportFromFlags(env *state.LocalEnv, cmd *cli.Command) *matchmedia.Viewport {
	w, h, media := env.Cfg.Viewport.Width, env.Cfg.Viewport.Height, env.Cfg.Viewport.MediaType
	if cmd.IsSet("width") {
		w = cmd.Float("width")
	}
	if cmd.IsSet("height") {
		h = cmd.Float("height")
	}
	if cmd.IsSet("media") {
		media = cmd.String("media")
	}
	return matchmedia.NewViewport(w, h, media, env.Log)
}
