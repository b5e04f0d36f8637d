package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	validator "github.com/go-playground/validator/v10"
	"github.com/rupor-github/gencfg"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"fxl/breakpoint"
	"fxl/directive"
	"fxl/ssr"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	BreakpointConfig struct {
		Alias       string `yaml:"alias" validate:"required,excludesall=."`
		MediaQuery  string `yaml:"media_query,omitempty"`
		Priority    int    `yaml:"priority"`
		Overlapping bool   `yaml:"overlapping"`
	}

	LayoutConfig struct {
		Server              bool               `yaml:"server"`
		ServerBreakpoints   []string           `yaml:"server_breakpoints" validate:"dive,required"`
		DisableDefaults     bool               `yaml:"disable_defaults"`
		Orientations        bool               `yaml:"orientations"`
		Breakpoints         []BreakpointConfig `yaml:"breakpoints" validate:"dive"`
		AddFlexToParent     bool               `yaml:"add_flex_to_parent"`
		DetectLayoutDisplay bool               `yaml:"detect_layout_display"`
		UseColumnBasisZero  bool               `yaml:"use_column_basis_zero"`
		RTL                 bool               `yaml:"rtl"`
		MaxPasses           int                `yaml:"max_passes" validate:"min=1,max=100"`
	}

	ViewportConfig struct {
		Width     float64 `yaml:"width" validate:"gt=0"`
		Height    float64 `yaml:"height" validate:"gt=0"`
		MediaType string  `yaml:"media_type" validate:"omitempty,oneof=screen print all"`
	}

	SSRConfig struct {
		ClassPrefix string   `yaml:"class_prefix" validate:"required,excludesall=."`
		Breakpoints []string `yaml:"breakpoints" validate:"dive,required"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Layout    LayoutConfig   `yaml:"layout"`
		Viewport  ViewportConfig `yaml:"viewport"`
		SSR       SSRConfig      `yaml:"ssr"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// checkAliases rejects configurations defining the same breakpoint alias
// twice.
func checkAliases(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	seen := make(map[string]bool, len(cfg.Layout.Breakpoints))
	for i, bp := range cfg.Layout.Breakpoints {
		if seen[bp.Alias] {
			sl.ReportError(cfg.Layout.Breakpoints[i].Alias, fmt.Sprintf("Layout.Breakpoints[%d].Alias", i), "Alias", "unique_alias", bp.Alias)
		}
		seen[bp.Alias] = true
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we know about are accepted
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkAliases)); err != nil {
			return nil, fmt.Errorf("configuration is not valid: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads configuration file at path on top of the expanded
// embedded template and validates the result. Empty path gives defaults.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// lists from the file replace template ones
	cfg.Layout.Breakpoints = nil
	cfg.Layout.ServerBreakpoints = nil
	cfg.SSR.Breakpoints = nil
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare expands configuration template.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// Registry builds breakpoint registry: defaults (unless disabled),
// orientations when requested and configured breakpoints merged on top.
func (conf *LayoutConfig) Registry(log *zap.Logger) (*breakpoint.Registry, error) {
	custom := make([]breakpoint.BreakPoint, 0, len(conf.Breakpoints))
	for _, bp := range conf.Breakpoints {
		custom = append(custom, breakpoint.BreakPoint{
			Alias:       bp.Alias,
			MediaQuery:  bp.MediaQuery,
			Priority:    bp.Priority,
			Overlapping: bp.Overlapping,
		})
	}
	opts := []breakpoint.Option{breakpoint.WithLogger(log)}
	if conf.DisableDefaults {
		opts = append(opts, breakpoint.WithoutDefaults())
	}
	if conf.Orientations {
		opts = append(opts, breakpoint.WithOrientations())
	}
	reg, err := breakpoint.New(custom, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to build breakpoints: %w", err)
	}
	return reg, nil
}

// DirectiveOptions converts layout switches for directive binder.
func (conf *LayoutConfig) DirectiveOptions() directive.Options {
	return directive.Options{
		AddFlexToParent:     conf.AddFlexToParent,
		DetectLayoutDisplay: conf.DetectLayoutDisplay,
		ColumnBasisAuto:     !conf.UseColumnBasisZero,
		RTL:                 conf.RTL,
	}
}

// SSROptions converts SSR settings for the generator.
func (conf *Config) SSROptions() ssr.Options {
	return ssr.Options{
		Aliases:     conf.SSR.Breakpoints,
		ClassPrefix: conf.SSR.ClassPrefix,
		Directive:   conf.Layout.DirectiveOptions(),
	}
}
