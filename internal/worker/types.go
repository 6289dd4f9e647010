package worker

import (
	"time"
)

// Task is one page source. Index is its position in the input list and is
// used to put results back in order.
type Task struct {
	Index    int
	Source   string
	Throttle bool
}

type Result struct {
	Task  Task
	Data  any
	Error error
	Time  time.Duration
}

type Stats struct {
	Total       int
	Completed   int
	Failed      int
	SuccessRate float64
	AvgTime     time.Duration
	StartTime   time.Time
}

func NewTask(index int, source string, throttle bool) Task {
	return Task{
		Index:    index,
		Source:   source,
		Throttle: throttle,
	}
}
