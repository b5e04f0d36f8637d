package matchmedia

import (
	"fmt"

	"fxl/breakpoint"
	"fxl/mediaquery"
)

// Server is a platform without viewport. Active breakpoints are fixed when it
// is created and never change.
type Server struct {
	active  map[string]bool // media queries
	aliases []string
}

// NewServer freezes the breakpoints named by aliases as active.
func NewServer(reg *breakpoint.Registry, aliases ...string) (*Server, error) {
	s := &Server{active: map[string]bool{breakpoint.BaseQuery: true}}
	for _, alias := range aliases {
		bp, ok := reg.FindByAlias(alias)
		if !ok {
			return nil, fmt.Errorf("unknown breakpoint alias %q", alias)
		}
		s.active[bp.MediaQuery] = true
		s.aliases = append(s.aliases, alias)
	}
	return s, nil
}

func (s *Server) IsServer() bool {
	return true
}

// Aliases returns the frozen active set.
func (s *Server) Aliases() []string {
	return append([]string(nil), s.aliases...)
}

func (s *Server) MatchMedia(query string) (QueryList, error) {
	if _, err := mediaquery.Parse(query); err != nil {
		return nil, err
	}
	return frozenList{media: query, matches: s.active[query]}, nil
}

type frozenList struct {
	media   string
	matches bool
}

func (f frozenList) Media() string { return f.media }
func (f frozenList) Matches() bool { return f.matches }

func (f frozenList) AddListener(func(bool)) func() {
	return func() {}
}

// AliasesFor lists every breakpoint of reg matching env, overlapping ones
// included. It is used to derive a complete frozen set from a single screen
// size.
func AliasesFor(reg *breakpoint.Registry, env mediaquery.Environment) []string {
	var out []string
	for _, bp := range reg.Items() {
		if bp.IsBase() {
			continue
		}
		q, err := mediaquery.Parse(bp.MediaQuery)
		if err != nil {
			continue
		}
		if q.Matches(env) {
			out = append(out, bp.Alias)
		}
	}
	return out
}
