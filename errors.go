package main

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyFile     = errors.New("empty file")
)

// DataFormatError reports a malformed or incomplete disadvantage dataset.
type DataFormatError struct {
	Path   string
	Line   int
	Column string
	Err    error
}

func (e *DataFormatError) Error() string {
	var b strings.Builder
	b.WriteString("cejst")
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// RemoteServiceError reports a failed or unusable Census API response for one
// jurisdiction. Status is zero when no HTTP response was received.
type RemoteServiceError struct {
	State  string
	Status int
	Err    error
}

func (e *RemoteServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("census state %s: status %d: %v", e.State, e.Status, e.Err)
	}
	return fmt.Sprintf("census state %s: %v", e.State, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// ComputationError reports statistics that cannot be rendered. Bin is -1
// when the problem is not tied to a single bin.
type ComputationError struct {
	Bin int
	Err error
}

func (e *ComputationError) Error() string {
	if e.Bin < 0 {
		return fmt.Sprintf("statistics: %v", e.Err)
	}
	return fmt.Sprintf("statistics bin %d: %v", e.Bin, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
