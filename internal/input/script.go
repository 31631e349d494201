package input

import "sync"

// ScriptStep holds controls that stay active for a number of ticks.
type ScriptStep struct {
	Ticks    int
	Controls Controls
}

// Script replays a fixed control sequence, which keeps scenario tests and
// demo drivers deterministic. After the final step it repeats the last
// controls indefinitely.
type Script struct {
	mu        sync.Mutex
	steps     []ScriptStep
	index     int
	remaining int
}

// NewScript builds a script source from the ordered steps.
func NewScript(steps ...ScriptStep) *Script {
	s := &Script{steps: steps}
	if len(steps) > 0 {
		s.remaining = steps[0].Ticks
	}
	return s
}

// Poll returns the controls for the current tick and advances the cursor.
func (s *Script) Poll(string) (Controls, bool) {
	if s == nil {
		return Controls{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.steps) == 0 {
		return Controls{}, false
	}
	if s.index >= len(s.steps) {
		//1.- Hold the final step once the script is exhausted.
		return s.steps[len(s.steps)-1].Controls.Clamped(), true
	}
	step := s.steps[s.index]
	s.remaining--
	if s.remaining <= 0 {
		s.index++
		if s.index < len(s.steps) {
			s.remaining = s.steps[s.index].Ticks
		}
	}
	return step.Controls.Clamped(), true
}
