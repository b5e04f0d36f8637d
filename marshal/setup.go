package marshal

import (
	"go.uber.org/zap"

	"fxl/dom"
)

// Setup collects keys and values of a single element without resolving
// them. Commit resolves every key once, so nothing is applied before all
// declared keys are known.
type Setup struct {
	m    *Marshaller
	es   *elementState
	done bool
}

// Setup starts two-phase registration for el. While setup is open
// breakpoint changes do not touch the element, Commit catches up.
func (m *Marshaller) Setup(el *dom.Element) *Setup {
	es := m.element(el)
	es.setup = true
	return &Setup{m: m, es: es}
}

func (s *Setup) Init(key string, update UpdateFunc, clear ClearFunc) {
	ks := s.es.key(key)
	ks.update, ks.clear = update, clear
}

func (s *Setup) SetValue(key, alias, value string) {
	s.m.store(s.es, key, alias, value)
}

// Commit closes setup and resolves all element keys in registration order.
// Calling it again is a no-op.
func (s *Setup) Commit() {
	if s.done {
		return
	}
	s.done = true
	s.es.setup = false

	if cur, ok := s.m.elements[s.es.el]; !ok || cur != s.es {
		// released while in setup
		return
	}
	s.m.log.Debug("Element committed", zap.String("element", s.es.el.Path()), zap.Strings("keys", s.es.order))
	for _, key := range s.m.Keys(s.es.el) {
		s.m.resolve(keyRef{el: s.es.el, key: key}, false)
	}
}
