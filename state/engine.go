package state

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"fxl/breakpoint"
	"fxl/directive"
	"fxl/marshal"
	"fxl/matchmedia"
)

// Registry returns breakpoints built from configuration, the registry is
// built once and shared by every engine.
func (e *LocalEnv) Registry() (*breakpoint.Registry, error) {
	if e.reg != nil {
		return e.reg, nil
	}
	if e.Cfg == nil {
		return nil, errors.New("configuration is not loaded")
	}
	reg, err := e.Cfg.Layout.Registry(e.logger())
	if err != nil {
		return nil, err
	}
	e.reg = reg
	return reg, nil
}

// Engine is a marshaller and a directive binder sharing single platform.
type Engine struct {
	Observer   *matchmedia.Observer
	Marshaller *marshal.Marshaller
	Binder     *directive.Binder
}

// Close releases media subscriptions.
func (en *Engine) Close() {
	en.Marshaller.Close()
}

// NewEngine assembles engine over platform using layout configuration.
func (e *LocalEnv) NewEngine(platform matchmedia.Platform) (*Engine, error) {
	reg, err := e.Registry()
	if err != nil {
		return nil, err
	}
	log := e.logger()
	obs := matchmedia.NewObserver(platform, log)
	m := marshal.New(reg, obs, marshal.WithLogger(log), marshal.WithMaxPasses(e.Cfg.Layout.MaxPasses))
	if err := m.SubscriptionErr(); err != nil {
		log.Warn("Some breakpoints will never activate", zap.Error(err))
	}
	return &Engine{
		Observer:   obs,
		Marshaller: m,
		Binder:     directive.New(m, e.Cfg.Layout.DirectiveOptions(), log),
	}, nil
}

// ServerPlatform returns frozen platform for configured server breakpoints,
// extra aliases are added to them.
func (e *LocalEnv) ServerPlatform(extra ...string) (*matchmedia.Server, error) {
	reg, err := e.Registry()
	if err != nil {
		return nil, err
	}
	aliases := append(append([]string(nil), e.Cfg.Layout.ServerBreakpoints...), extra...)
	srv, err := matchmedia.NewServer(reg, aliases...)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare server breakpoints: %w", err)
	}
	return srv, nil
}

func (e *LocalEnv) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}
