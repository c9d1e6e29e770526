package datarecording

import (
	"os"
	"strings"
	"time"
)

const execTableName = "exec_info"

// execInfo is one property of the program execution.
type execInfo struct {
	Property string
	Value    string
}

// execRecorder records when and how the program ran.
type execRecorder struct {
	recorder DataRecorder
	entries  []execInfo
}

func newExecRecorder(recorder DataRecorder) *execRecorder {
	recorder.CreateTable(execTableName, execInfo{})

	return &execRecorder{recorder: recorder}
}

// Start logs the current execution.
func (e *execRecorder) Start() {
	e.add("Start Time", timestamp())
	e.add("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err == nil {
		e.add("Working Directory", cwd)
	}
}

// End writes the execution properties along with the exit time.
func (e *execRecorder) End() {
	e.add("End Time", timestamp())

	for _, entry := range e.entries {
		e.recorder.InsertData(execTableName, entry)
	}

	e.entries = nil
}

func (e *execRecorder) add(property, value string) {
	e.entries = append(e.entries, execInfo{Property: property, Value: value})
}

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05.000000000")
}
