package services

import (
	"fmt"
	"time"

	"github.com/deployhub/deployhub-backend/pkg/domain/entities"
)

// runLog accumulates the human-readable trace of one orchestration run and
// tracks which phase the run is in. It is returned to the caller on both
// success and failure and never persisted beyond the run's deployment record.
type runLog struct {
	now   func() time.Time
	state entities.RunState
	lines []string
}

func newRunLog(now func() time.Time) *runLog {
	if now == nil {
		now = time.Now
	}
	return &runLog{now: now, state: entities.RunStateIdle}
}

// Transition moves the run into the given phase and records it.
func (l *runLog) Transition(state entities.RunState) {
	l.state = state
	l.Append("entering %s", state)
}

func (l *runLog) State() entities.RunState {
	return l.state
}

func (l *runLog) Append(format string, args ...interface{}) {
	line := fmt.Sprintf("[%s] %s", l.now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
	l.lines = append(l.lines, line)
}

func (l *runLog) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
