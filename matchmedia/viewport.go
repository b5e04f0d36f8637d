package matchmedia

import (
	"slices"

	"go.uber.org/zap"

	"fxl/mediaquery"
)

// Viewport is a simulated live screen. Resizing it or changing its media type
// notifies listeners of every query list whose match state flipped.
type Viewport struct {
	env   mediaquery.Environment
	log   *zap.Logger
	lists []*viewportList // lists with listeners in registration order
}

type viewportList struct {
	v         *Viewport
	media     string
	query     mediaquery.List
	matches   bool
	listeners []*listener
}

type listener struct {
	fn func(bool)
}

// NewViewport creates viewport of given size, empty media type means screen.
func NewViewport(width, height float64, mediaType string, log *zap.Logger) *Viewport {
	if log == nil {
		log = zap.NewNop()
	}
	return &Viewport{
		env: mediaquery.Environment{Width: width, Height: height, MediaType: mediaType},
		log: log.Named("viewport"),
	}
}

func (v *Viewport) IsServer() bool {
	return false
}

// Environment returns current viewport state.
func (v *Viewport) Environment() mediaquery.Environment {
	return v.env
}

func (v *Viewport) MatchMedia(query string) (QueryList, error) {
	q, err := mediaquery.Parse(query)
	if err != nil {
		return nil, err
	}
	return &viewportList{v: v, media: query, query: q, matches: q.Matches(v.env)}, nil
}

// Resize changes viewport dimensions and delivers resulting transitions.
func (v *Viewport) Resize(width, height float64) {
	v.log.Debug("Resize", zap.Float64("width", width), zap.Float64("height", height))
	v.env.Width, v.env.Height = width, height
	v.update()
}

// SetMediaType switches between "screen" and "print".
func (v *Viewport) SetMediaType(mediaType string) {
	v.log.Debug("Media type", zap.String("type", mediaType))
	v.env.MediaType = mediaType
	v.update()
}

// update re-evaluates all listened lists. Deactivations are delivered before
// activations, so at no point in time subscribers see two mutually exclusive
// ranges active; within each group lists are notified in registration order.
func (v *Viewport) update() {
	var off, on []*viewportList
	for _, l := range v.lists {
		m := l.query.Matches(v.env)
		if m == l.matches {
			continue
		}
		l.matches = m
		if m {
			on = append(on, l)
		} else {
			off = append(off, l)
		}
	}
	for _, l := range append(off, on...) {
		l.notify()
	}
}

func (l *viewportList) notify() {
	for _, ln := range slices.Clone(l.listeners) {
		if !slices.Contains(l.listeners, ln) {
			// removed by an earlier listener
			continue
		}
		ln.fn(l.matches)
	}
}

func (l *viewportList) Media() string {
	return l.media
}

func (l *viewportList) Matches() bool {
	return l.query.Matches(l.v.env)
}

func (l *viewportList) AddListener(fn func(bool)) func() {
	ln := &listener{fn: fn}
	if len(l.listeners) == 0 {
		// catch up with changes made while nobody was listening
		l.matches = l.query.Matches(l.v.env)
		l.v.lists = append(l.v.lists, l)
	}
	l.listeners = append(l.listeners, ln)

	return func() {
		i := slices.Index(l.listeners, ln)
		if i < 0 {
			return
		}
		l.listeners = slices.Delete(l.listeners, i, i+1)
		if len(l.listeners) == 0 {
			if j := slices.Index(l.v.lists, l); j >= 0 {
				l.v.lists = slices.Delete(l.v.lists, j, j+1)
			}
		}
	}
}

// Listeners returns number of query lists currently listened to.
func (v *Viewport) Listeners() int {
	return len(v.lists)
}
