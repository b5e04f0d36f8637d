package state

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"fxl/config"
	"fxl/dom"
	"fxl/matchmedia"
)

func TestEnvFromContext(t *testing.T) {
	t.Run("valid context", func(t *testing.T) {
		env := EnvFromContext(ContextWithEnv(context.Background()))
		if env == nil {
			t.Fatal("Expected non-nil environment")
		}
		if env.start.IsZero() {
			t.Error("Environment start time not set")
		}
	})

	t.Run("panic on missing env", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic when env not in context")
			}
		}()
		EnvFromContext(context.Background())
	})
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := &LocalEnv{start: time.Now()}
	time.Sleep(10 * time.Millisecond)
	if uptime := env.Uptime(); uptime < 10*time.Millisecond {
		t.Errorf("Uptime() = %v, expected at least 10ms", uptime)
	}
}

func TestLocalEnv_RedirectStdLog(t *testing.T) {
	env := &LocalEnv{
		Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
	}
	for i := range 3 {
		env.RedirectStdLog()
		if env.restoreStdLog == nil {
			t.Errorf("Iteration %d: restoreStdLog not set", i)
		}
		env.RestoreStdLog()
	}

	empty := &LocalEnv{}
	empty.RedirectStdLog()
	if empty.restoreStdLog != nil {
		t.Error("Expected restoreStdLog to remain nil")
	}
	empty.RestoreStdLog()
}

func testEnv(t *testing.T) *LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return &LocalEnv{Cfg: cfg, Log: zaptest.NewLogger(t), start: time.Now()}
}

func TestLocalEnv_Registry(t *testing.T) {
	if _, err := (&LocalEnv{}).Registry(); err == nil {
		t.Error("Expected error without configuration")
	}

	env := testEnv(t)
	reg, err := env.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	again, _ := env.Registry()
	if reg != again {
		t.Error("Registry() should be built once")
	}
	if _, ok := reg.FindByAlias("gt-sm"); !ok {
		t.Error("default breakpoints missing")
	}
}

func TestLocalEnv_Engine(t *testing.T) {
	env := testEnv(t)
	env.Cfg.Layout.ServerBreakpoints = []string{"md"}

	srv, err := env.ServerPlatform("gt-sm")
	if err != nil {
		t.Fatalf("ServerPlatform() error = %v", err)
	}
	if got := srv.Aliases(); len(got) != 2 || got[0] != "md" || got[1] != "gt-sm" {
		t.Errorf("Aliases() = %v", got)
	}
	if _, err := env.ServerPlatform("nope"); err == nil {
		t.Error("Expected error for unknown alias")
	}

	en, err := env.NewEngine(srv)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer en.Close()

	doc, err := dom.ParseString(`<html><body><div id="d" fxLayout="row" fxLayout.md="column"/></body></html>`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n := en.Binder.Bind(doc); n != 1 {
		t.Fatalf("Bind() = %d, want 1", n)
	}
	if v, _ := doc.FindByID("d").Style("flex-direction"); v != "column" {
		t.Errorf("flex-direction = %q, want column", v)
	}

	vp := matchmedia.NewViewport(500, 800, "", env.Log)
	live, err := env.NewEngine(vp)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer live.Close()
	if live.Marshaller.IsServer() {
		t.Error("viewport engine reports server")
	}
}
