package datarecording

import (
	"github.com/rs/xid"

	"github.com/sarchlab/ipcscan/scanning"
)

// Table names used by the SampleRecorder.
const (
	SampleTableName  = "ipc_samples"
	SummaryTableName = "ipc_summary"
)

// SampleEntry is a row of the sample table.
type SampleEntry struct {
	RunID string
	Line  int
	Value float64
}

// SummaryEntry is a row of the summary table.
type SummaryEntry struct {
	RunID   string
	Path    string
	Count   int
	Max     float64
	MaxLine int
}

// SampleRecorder is a hook that writes every IPC sample and the final result
// of a scan into a DataRecorder.
type SampleRecorder struct {
	runID    string
	recorder DataRecorder
	exec     *execRecorder
}

// NewSampleRecorder creates the tables of a SampleRecorder.
func NewSampleRecorder(recorder DataRecorder) *SampleRecorder {
	recorder.CreateTable(SampleTableName, SampleEntry{})
	recorder.CreateTable(SummaryTableName, SummaryEntry{})

	r := &SampleRecorder{
		runID:    xid.New().String(),
		recorder: recorder,
		exec:     newExecRecorder(recorder),
	}
	r.exec.Start()

	return r
}

// RunID returns the ID that tags every row written by this recorder.
func (r *SampleRecorder) RunID() string {
	return r.runID
}

// Func records samples and scan results.
func (r *SampleRecorder) Func(ctx scanning.HookCtx) {
	switch ctx.Pos {
	case scanning.HookPosSample:
		r.recordSample(ctx.Item.(scanning.Sample))
	case scanning.HookPosScanDone:
		path, _ := ctx.Detail.(string)
		r.recordResult(ctx.Item.(scanning.Result), path)
	}
}

func (r *SampleRecorder) recordSample(s scanning.Sample) {
	r.recorder.InsertData(SampleTableName, SampleEntry{
		RunID: r.runID,
		Line:  s.Line,
		Value: s.Value,
	})
}

func (r *SampleRecorder) recordResult(res scanning.Result, path string) {
	r.recorder.InsertData(SummaryTableName, SummaryEntry{
		RunID:   r.runID,
		Path:    path,
		Count:   res.Count,
		Max:     res.Max,
		MaxLine: res.MaxLine,
	})

	r.exec.End()
	r.recorder.Flush()
}
