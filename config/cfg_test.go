package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fxl/breakpoint"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fxl.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Layout.MaxPasses != 10 {
		t.Errorf("MaxPasses = %d, want 10", cfg.Layout.MaxPasses)
	}
	if !cfg.Layout.AddFlexToParent || !cfg.Layout.UseColumnBasisZero {
		t.Errorf("unexpected layout defaults: %+v", cfg.Layout)
	}
	if cfg.Viewport.Width != 1280 || cfg.Viewport.Height != 800 {
		t.Errorf("Viewport = %vx%v, want 1280x800", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if cfg.SSR.ClassPrefix != "fxl-ssr-" {
		t.Errorf("ClassPrefix = %q", cfg.SSR.ClassPrefix)
	}
	if cfg.Logging.FileLogger.Level != "none" || cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
layout:
  server: true
  server_breakpoints: [md, gt-sm]
  orientations: true
  breakpoints:
    - alias: sm
      media_query: "screen and (min-width: 640px) and (max-width: 959.98px)"
      priority: 900
    - alias: kiosk
      media_query: "screen and (min-width: 3000px)"
      priority: 3000
      overlapping: true
  use_column_basis_zero: false
  rtl: true
  max_passes: 5
viewport:
  width: 400
  height: 900
  media_type: print
logging:
  console:
    level: debug
  file:
    level: none
reporting:
  destination: report.zip
`)
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if !cfg.Layout.Server || len(cfg.Layout.ServerBreakpoints) != 2 {
		t.Errorf("server settings not loaded: %+v", cfg.Layout)
	}
	if cfg.Viewport.MediaType != "print" {
		t.Errorf("MediaType = %q, want print", cfg.Viewport.MediaType)
	}
	if !cfg.Layout.AddFlexToParent {
		t.Error("AddFlexToParent should keep template default")
	}

	opts := cfg.Layout.DirectiveOptions()
	if !opts.ColumnBasisAuto || !opts.RTL || !opts.AddFlexToParent {
		t.Errorf("DirectiveOptions() = %+v", opts)
	}

	reg, err := cfg.Layout.Registry(nil)
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	sm, ok := reg.FindByAlias("sm")
	if !ok || !strings.Contains(sm.MediaQuery, "640px") {
		t.Errorf("sm not overridden: %+v", sm)
	}
	if _, ok := reg.FindByAlias("kiosk"); !ok {
		t.Error("custom breakpoint missing")
	}
	if _, ok := reg.FindByAlias("handset"); !ok {
		t.Error("orientation breakpoints missing")
	}
}

func TestLayoutConfig_RegistryInheritsQuery(t *testing.T) {
	path := writeConfig(t, `version: 1
layout:
  breakpoints:
    - alias: md
      priority: 850
    - alias: kiosk
`)
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if _, err := cfg.Layout.Registry(nil); err == nil || !strings.Contains(err.Error(), "kiosk") {
		t.Errorf("expected error naming kiosk, got %v", err)
	}

	cfg.Layout.Breakpoints = cfg.Layout.Breakpoints[:1]
	reg, err := cfg.Layout.Registry(nil)
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	md, _ := reg.FindByAlias("md")
	if md.Priority != 850 || !strings.Contains(md.MediaQuery, "960px") {
		t.Errorf("md = %+v, want default query with new priority", md)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "version: 1\nunknown_field: value\n", "unknown_field"},
		{"bad yaml", "version: 1\nlayout:\n  server: true\n  invalid indent\n", "decode"},
		{"bad version", "version: 2\n", "Version"},
		{"bad passes", "version: 1\nlayout:\n  max_passes: 0\n", "MaxPasses"},
		{"bad media type", "version: 1\nviewport:\n  media_type: tv\n", "MediaType"},
		{"duplicate alias", `version: 1
layout:
  breakpoints:
    - alias: kiosk
      media_query: "screen"
    - alias: kiosk
      media_query: "print"
`, "unique_alias"},
		{"dotted alias", `version: 1
layout:
  breakpoints:
    - alias: gt.md
      media_query: "screen"
`, "Alias"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}

	if _, err := LoadConfiguration("/nonexistent/fxl.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestRegistry_MissingRequired(t *testing.T) {
	conf := LayoutConfig{DisableDefaults: true, Breakpoints: []BreakpointConfig{
		{Alias: "xs", MediaQuery: "screen and (max-width: 599.98px)", Priority: 1000},
	}}
	_, err := conf.Registry(nil)
	if !errors.Is(err, breakpoint.ErrMissingBreakpoint) {
		t.Errorf("Registry() error = %v, want ErrMissingBreakpoint", err)
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(data), "class_prefix: fxl-ssr-") {
		t.Errorf("Prepare() output misses ssr section:\n%s", data)
	}

	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	out, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"version: 1", "max_passes: 10", "media_type: screen"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Dump() output misses %q", want)
		}
	}

	// dumped configuration loads back
	cfg2, err := LoadConfiguration(writeConfig(t, string(out)))
	if err != nil {
		t.Fatalf("LoadConfiguration(dump) error = %v", err)
	}
	if cfg2.Layout.MaxPasses != cfg.Layout.MaxPasses || cfg2.Viewport != cfg.Viewport {
		t.Error("dumped configuration differs")
	}
}
