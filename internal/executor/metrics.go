package executor

import (
	"sync"
	"time"
)

// ExecutorMetrics tracks statistics about program runs.
type ExecutorMetrics struct {
	RunsExecuted    int
	RunsSuccessful  int
	RunsFailed      int
	PlotsRendered   int
	TotalDuration   time.Duration
	LongestRunTime  time.Duration
	ShortestRunTime time.Duration

	mu sync.Mutex
}

func (m *ExecutorMetrics) record(d time.Duration, err error, plot bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RunsExecuted++
	if err != nil {
		m.RunsFailed++
	} else {
		m.RunsSuccessful++
		if plot {
			m.PlotsRendered++
		}
	}
	m.TotalDuration += d
	if d > m.LongestRunTime {
		m.LongestRunTime = d
	}
	if m.ShortestRunTime == 0 || d < m.ShortestRunTime {
		m.ShortestRunTime = d
	}
}

// Copy returns a snapshot without the mutex.
func (m *ExecutorMetrics) Copy() ExecutorMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	return ExecutorMetrics{
		RunsExecuted:    m.RunsExecuted,
		RunsSuccessful:  m.RunsSuccessful,
		RunsFailed:      m.RunsFailed,
		PlotsRendered:   m.PlotsRendered,
		TotalDuration:   m.TotalDuration,
		LongestRunTime:  m.LongestRunTime,
		ShortestRunTime: m.ShortestRunTime,
	}
}
