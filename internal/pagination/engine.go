package pagination

import (
	"sync"

	"github.com/vampirenirmal/lumina/internal/manuscript"
)

// Engine memoises the most recent pagination. The pages are recomputed
// only when the composed stream differs from the previous call.
type Engine struct {
	mu     sync.Mutex
	stream string
	layout Layout
	valid  bool
	runs   int
}

func NewEngine() *Engine {
	return &Engine{}
}

// Layout returns the pagination of chapters. The returned Layout owns its
// Pages slice.
func (e *Engine) Layout(chapters []manuscript.Chapter) Layout {
	stream := Compose(chapters)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.valid || stream != e.stream {
		e.stream = stream
		e.layout = layoutOf(Split(stream, ChunkSize))
		e.valid = true
		e.runs++
	}

	out := e.layout
	out.Pages = append([]string(nil), e.layout.Pages...)
	return out
}

// Recomputations reports how many times the pages were actually rebuilt.
func (e *Engine) Recomputations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runs
}
