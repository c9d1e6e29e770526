package scanning

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Marker is the label that identifies lines carrying an IPC value.
const Marker = "IPC:"

var (
	// ErrNoIPCValues is returned when a scan finishes without a single line
	// carrying the marker, so there is no maximum to report.
	ErrNoIPCValues = errors.New("no IPC values found")

	// ErrNotNumeric is the cause of a ParseError when the text after the
	// marker is not a number.
	ErrNotNumeric = errors.New("not a numeric value")
)

var numberPattern = regexp.MustCompile(
	`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// A ParseError reports a line that carries the marker but whose value cannot
// be read as a finite number.
type ParseError struct {
	Line  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid IPC value %q: %v",
		e.Line, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExtractToken returns the text after the marker with every whitespace rune
// removed, so spacing and line terminators do not matter. It returns false if
// the line does not contain the marker.
func ExtractToken(line string) (string, bool) {
	idx := strings.Index(line, Marker)
	if idx < 0 {
		return "", false
	}

	return strings.Join(strings.Fields(line[idx+len(Marker):]), ""), true
}

// ParseValue extracts and parses the IPC value of a line. The second return
// value is false for lines without the marker, which are not errors.
func ParseValue(line string, lineNo int) (Sample, bool, error) {
	token, ok := ExtractToken(line)
	if !ok {
		return Sample{}, false, nil
	}

	if !numberPattern.MatchString(token) {
		return Sample{}, true, &ParseError{
			Line:  lineNo,
			Token: token,
			Err:   ErrNotNumeric,
		}
	}

	// Out-of-range values come back as ±Inf together with ErrRange.
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return Sample{}, true, &ParseError{Line: lineNo, Token: token, Err: err}
	}

	return Sample{Line: lineNo, Value: v}, true, nil
}
