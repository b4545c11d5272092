package route

import (
	"sync"

	"mlstudio/internal/domain/guide"

	"github.com/sirupsen/logrus"
)

// Speaker is the narration controller as seen by the binding.
type Speaker interface {
	Speak(text string)
}

// Binding narrates the canned text of a route when the user navigates to it.
// It fires once per change of route key, never on a repeated notification for
// the route already shown.
type Binding struct {
	speaker Speaker
	texts   guide.Texts

	mu      sync.Mutex
	current string
	seen    bool
}

func NewBinding(speaker Speaker, texts guide.Texts) *Binding {
	return &Binding{speaker: speaker, texts: texts}
}

// OnNavigate is the host's navigation hook.
func (b *Binding) OnNavigate(routeKey string) {
	b.mu.Lock()
	if b.seen && b.current == routeKey {
		b.mu.Unlock()
		return
	}
	b.current = routeKey
	b.seen = true
	b.mu.Unlock()

	text, ok := b.texts[routeKey]
	if !ok {
		logrus.WithField("route", routeKey).Debug("no narration for route")
		return
	}
	b.speaker.Speak(text)
}

// NavigatePath derives the route key from a location path and navigates to it.
func (b *Binding) NavigatePath(path string) {
	b.OnNavigate(guide.KeyFromPath(path))
}

// Current returns the last route key seen.
func (b *Binding) Current() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
