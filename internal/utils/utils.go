// Package utils holds the env value parsers shared by config types.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseDurationEnv accepts a Go duration ("10s", "1m30s") or a plain number of
// seconds, fractions included ("1.5" is 1500ms). Negative values are rejected.
func ParseDurationEnv(s string) (time.Duration, error) {
	s = unquote(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	var d time.Duration
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("duration %q is not a finite number", s)
		}
		d = time.Duration(secs * float64(time.Second))
	} else if d, err = time.ParseDuration(s); err != nil {
		return 0, fmt.Errorf("duration %q: want a number of seconds or a value like 10s", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q is negative", s)
	}
	return d, nil
}

// SplitList splits a comma separated env value, dropping blanks. An empty
// value yields nil.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(unquote(s), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// unquote trims whitespace and one pair of matching quotes, as left behind by
// some .env writers.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
