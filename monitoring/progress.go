package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/ipcscan/scanning"
)

// A ProgressBar tracks how many bytes of a log have been scanned.
type ProgressBar struct {
	sync.Mutex
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// snapshot copies the bar so that it can be encoded without holding the lock.
func (b *ProgressBar) snapshot() progressRsp {
	b.Lock()
	defer b.Unlock()

	return progressRsp{
		ID:        b.ID,
		Name:      b.Name,
		StartTime: b.StartTime,
		Total:     b.Total,
		Finished:  b.Finished,
	}
}

type progressRsp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// ProgressHook advances a progress bar by the number of bytes of every line a
// scanner reads.
type ProgressHook struct {
	bar *ProgressBar
}

// NewProgressHook creates a hook that drives bar.
func NewProgressHook(bar *ProgressBar) *ProgressHook {
	return &ProgressHook{bar: bar}
}

// Func advances the bar.
func (h *ProgressHook) Func(ctx scanning.HookCtx) {
	if ctx.Pos != scanning.HookPosLineRead {
		return
	}

	line := ctx.Item.(scanning.LineRead)
	h.bar.IncrementFinished(uint64(line.Bytes))
}
