package timetable

import (
	"fmt"
	"io"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const (
	DefaultAreaPrefix     = "StopArea:"
	DefaultPlatformPrefix = "StopPoint:OCETrain"
)

// StopCandidate is the environment a StopFilter expression is evaluated against.
type StopCandidate struct {
	StopID   string
	StopName string
}

// StopFilter decides which stops.txt rows become routable stops. Area
// prefixes always exclude. When platform prefixes are set a stop must match
// one of them, and when an expression is set it must evaluate to true.
type StopFilter struct {
	AreaPrefixes     []string
	PlatformPrefixes []string

	expression string
	program    *vm.Program
}

func NewStopFilter(areaPrefixes []string, platformPrefixes []string, expression string) (*StopFilter, error) {
	filter := &StopFilter{
		AreaPrefixes:     areaPrefixes,
		PlatformPrefixes: platformPrefixes,
		expression:       expression,
	}

	if strings.TrimSpace(expression) != "" {
		program, err := expr.Compile(expression, expr.Env(StopCandidate{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compiling stop filter %q: %w", expression, err)
		}
		filter.program = program
	}

	return filter, nil
}

// DefaultStopFilter keeps rail platforms and drops stop areas.
func DefaultStopFilter() *StopFilter {
	return &StopFilter{
		AreaPrefixes:     []string{DefaultAreaPrefix},
		PlatformPrefixes: []string{DefaultPlatformPrefix},
	}
}

func (f *StopFilter) IsArea(stopID string) bool {
	return hasAnyPrefix(stopID, f.AreaPrefixes)
}

func (f *StopFilter) Keep(stopID string, stopName string) (bool, error) {
	if f == nil {
		return true, nil
	}

	if f.IsArea(stopID) {
		return false, nil
	}

	if len(f.PlatformPrefixes) > 0 && !hasAnyPrefix(stopID, f.PlatformPrefixes) {
		return false, nil
	}

	if f.program != nil {
		result, err := expr.Run(f.program, StopCandidate{StopID: stopID, StopName: stopName})
		if err != nil {
			return false, fmt.Errorf("evaluating stop filter %q: %w", f.expression, err)
		}

		keep, _ := result.(bool)
		return keep, nil
	}

	return true, nil
}

// writeFingerprint describes the filter's rules to w. A nil filter keeps
// every stop and writes its own marker.
func (f *StopFilter) writeFingerprint(w io.Writer) {
	if f == nil {
		io.WriteString(w, "filter:none\x00")
		return
	}

	fmt.Fprintf(w, "filter:%s\x00%s\x00%s\x00",
		strings.Join(f.AreaPrefixes, "\x1f"),
		strings.Join(f.PlatformPrefixes, "\x1f"),
		f.expression)
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(value, prefix) {
			return true
		}
	}

	return false
}
