package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rupor-github/gencfg"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"fxl/config"
	"fxl/loop"
	"fxl/matchmedia"
	"fxl/state"
	"fxl/utils/debug"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:         "watch",
		Usage:        "Keeps destination document up to date with viewport described in a file",
		OnUsageError: usageErrorHandler,
		Action:       watch,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "viewport", Required: true, Usage: "`FILE` (YAML) with width, height and media_type of the viewport"},
		},
		ArgsUsage: "SOURCE DESTINATION",
		CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to XHTML document carrying layout attributes

DESTINATION:
    file name for resulting document, rewritten every time viewport changes

Viewport file example:
    width: 800
    height: 600
    media_type: screen
`, cli.CommandHelpTemplate),
	}
}

// readViewport loads viewport description, missing values come from def.
func readViewport(path string, def config.ViewportConfig) (config.ViewportConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return def, fmt.Errorf("unable to read viewport file: %w", err)
	}
	vc := def
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&vc); err != nil {
		return def, fmt.Errorf("unable to decode viewport file: %w", err)
	}
	if err := gencfg.Validate(&vc); err != nil {
		return def, fmt.Errorf("viewport is not valid: %w", err)
	}
	return vc, nil
}

func watch(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	env.Overwrite = true

	if cmd.Args().Len() != 2 {
		return errors.New("both SOURCE and DESTINATION are required")
	}
	src, dst := cmd.Args().Get(0), cmd.Args().Get(1)

	vpFile, err := filepath.Abs(cmd.String("viewport"))
	if err != nil {
		return err
	}
	current, err := readViewport(vpFile, env.Cfg.Viewport)
	if err != nil {
		return err
	}

	doc, err := loadDocument(env, src)
	if err != nil {
		return err
	}
	vp := matchmedia.NewViewport(current.Width, current.Height, current.MediaType, env.Log)
	doc.MatchEnvironment(vp.Environment())

	en, err := env.NewEngine(vp)
	if err != nil {
		return err
	}
	defer en.Close()
	reg, err := env.Registry()
	if err != nil {
		return err
	}

	generation := 0
	output := func() error {
		generation++
		if env.Rpt != nil {
			env.Rpt.StoreData(fmt.Sprintf("layout-%03d.txt", generation), []byte(debug.LayoutTree(doc, en.Marshaller)))
		}
		return writeDocument(env, doc, fmt.Sprintf("output-%03d.xhtml", generation), dst)
	}
	en.Binder.Bind(doc)
	if err := output(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to watch viewport file: %w", err)
	}
	defer watcher.Close()
	// editors often replace files, so the directory is watched
	if err := watcher.Add(filepath.Dir(vpFile)); err != nil {
		return fmt.Errorf("unable to watch viewport file: %w", err)
	}

	l := loop.New(env.Log)
	apply := func(vc config.ViewportConfig) {
		if vc == current {
			return
		}
		current = vc
		vp.SetMediaType(vc.MediaType)
		vp.Resize(vc.Width, vc.Height)
		doc.MatchEnvironment(vp.Environment())
		if err := output(); err != nil {
			env.Log.Error("Unable to write document", zap.Error(err))
			return
		}
		l.Defer(func() {
			env.Log.Info("Viewport changed",
				zap.Float64("width", vc.Width),
				zap.Float64("height", vc.Height),
				zap.String("media", vc.MediaType),
				zap.Strings("active", matchmedia.AliasesFor(reg, vp.Environment())))
		})
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != vpFile || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				vc, err := readViewport(vpFile, env.Cfg.Viewport)
				if err != nil {
					env.Log.Warn("Viewport change ignored", zap.Error(err))
					continue
				}
				if err := l.Post(func() { apply(vc) }); err != nil {
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				env.Log.Warn("Watcher error", zap.Error(err))
			}
		}
	}()

	env.Log.Info("Watching viewport", zap.String("file", vpFile), zap.String("destination", dst))
	if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	env.Log.Info("Stopped watching", zap.Int("generations", generation))
	return nil
}
