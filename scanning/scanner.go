// Package scanning reads performance logs and reduces the IPC values they
// carry to a maximum.
package scanning

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	// HookPosLineRead is triggered after every line is read. The item is a
	// LineRead.
	HookPosLineRead = &HookPos{Name: "LineRead"}

	// HookPosSample is triggered for every IPC value parsed. The item is a
	// Sample.
	HookPosSample = &HookPos{Name: "Sample"}

	// HookPosScanDone is triggered once a scan completes successfully. The
	// item is the Result and the detail is the scanned path, if known.
	HookPosScanDone = &HookPos{Name: "ScanDone"}
)

// A Sample is one IPC value and the 1-based line it was read from.
type Sample struct {
	Line  int
	Value float64
}

// LineRead describes a line that the scanner consumed.
type LineRead struct {
	Number int
	Bytes  int
}

// Result is the outcome of a successful scan.
type Result struct {
	Max     float64
	MaxLine int
	Count   int

	// Values holds every parsed value in file order. It is only filled when
	// the scanner retains values.
	Values []float64
}

// Status is a snapshot of a scan in progress.
type Status struct {
	Path       string  `json:"path"`
	LinesRead  int     `json:"lines_read"`
	BytesRead  uint64  `json:"bytes_read"`
	Samples    int     `json:"samples"`
	RunningMax float64 `json:"running_max"`
	Done       bool    `json:"done"`
}

// Scanner finds the maximum IPC value in a log.
type Scanner struct {
	retainValues bool
	hooks        []Hook

	lock   sync.Mutex
	status Status
}

// Scan reads r line by line and returns the maximum IPC value. The first
// line whose value cannot be parsed aborts the scan.
func (s *Scanner) Scan(r io.Reader) (Result, error) {
	return s.scan(r, "")
}

// ScanFile scans the log at path.
func (s *Scanner) ScanFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	res, err := s.scan(f, path)
	if errors.Is(err, ErrNoIPCValues) {
		return res, fmt.Errorf("%w in %s", err, path)
	}

	return res, err
}

// Status returns the progress of the current or last scan.
func (s *Scanner) Status() Status {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.status
}

func (s *Scanner) scan(r io.Reader, path string) (Result, error) {
	s.resetStatus(path)

	res := Result{}
	reader := bufio.NewReader(r)
	lineNo := 0

	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return Result{}, readErr
		}

		if len(line) > 0 {
			lineNo++
			s.consumeLine(line, lineNo)

			sample, ok, err := ParseValue(line, lineNo)
			if err != nil {
				return Result{}, err
			}

			if ok {
				s.addSample(&res, sample)
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	if res.Count == 0 {
		return Result{}, ErrNoIPCValues
	}

	s.lock.Lock()
	s.status.Done = true
	s.lock.Unlock()

	s.invokeHook(HookPosScanDone, res, path)

	return res, nil
}

func (s *Scanner) resetStatus(path string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.status = Status{Path: path}
}

func (s *Scanner) consumeLine(line string, lineNo int) {
	s.lock.Lock()
	s.status.LinesRead = lineNo
	s.status.BytesRead += uint64(len(line))
	s.lock.Unlock()

	s.invokeHook(HookPosLineRead,
		LineRead{Number: lineNo, Bytes: len(line)}, nil)
}

func (s *Scanner) addSample(res *Result, sample Sample) {
	if res.Count == 0 || sample.Value > res.Max {
		res.Max = sample.Value
		res.MaxLine = sample.Line
	}

	res.Count++

	if s.retainValues {
		res.Values = append(res.Values, sample.Value)
	}

	s.lock.Lock()
	s.status.Samples = res.Count
	s.status.RunningMax = res.Max
	s.lock.Unlock()

	s.invokeHook(HookPosSample, sample, nil)
}
