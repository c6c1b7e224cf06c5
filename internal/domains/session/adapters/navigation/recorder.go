package navigation

import (
	"sync"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
)

// Call is one recorded navigation.
type Call struct {
	External bool
	Target   string
}

// Recorder records navigations instead of performing them. API handlers use
// it so JSON clients see the state rather than a redirect.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Replace(path string) error {
	if err := SameOriginPath(path); err != nil {
		return err
	}
	r.record(Call{Target: path})
	return nil
}

func (r *Recorder) Assign(url string) error {
	r.record(Call{External: true, Target: url})
	return nil
}

// Calls returns a copy of every navigation so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

var _ ports.Navigator = (*Recorder)(nil)
