// Package pricing implements the price bucket labeling and price string
// parsing shared by the preference engine and the statistics pipeline.
//
// Buckets are derived from a strictly increasing breakpoint list (in yuan).
// Labels are human-readable ranges using the site's display convention:
// breakpoints below 10,000 render in thousands ("8K"), everything else in
// ten-thousands ("10W", "1.5W"). Prices below the first breakpoint map to
// "<first>以下", prices at or above the last to "<last>以上", and everything
// in between to the enclosing "lo-hi" range. The labeling is a total
// function: every non-negative price lands in exactly one bucket.
package pricing

import (
	"math"
	"strconv"
	"strings"
)

// DefaultBreakpoints is the fallback bucket boundary list used when the
// configured value is absent or malformed.
var DefaultBreakpoints = []float64{100000, 200000, 300000, 500000, 1000000, 2000000}

// ParseBreakpoints parses a comma-separated breakpoint list (e.g.
// "100000,200000,300000"). It returns nil unless the result is non-empty and
// strictly increasing, so callers can fall back to DefaultBreakpoints.
func ParseBreakpoints(s string) []float64 {
	parts := strings.Split(s, ",")
	var out []float64
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil
		}
		if len(out) > 0 && v <= out[len(out)-1] {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// FormatBreakpoint renders a breakpoint value using the display convention:
// thousands with a "K" suffix below 10,000, ten-thousands with a "W" suffix
// otherwise (one decimal place when the value is not a whole number of
// ten-thousands).
func FormatBreakpoint(v float64) string {
	if v < 10000 {
		return trimFloat(v/1000) + "K"
	}
	return trimFloat(v/10000) + "W"
}

// trimFloat formats with one decimal place, dropping a trailing ".0".
func trimFloat(v float64) string {
	r := math.Round(v*10) / 10
	if r == math.Trunc(r) {
		return strconv.FormatFloat(r, 'f', 0, 64)
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

// BucketLabel maps a price onto its bucket label for the given breakpoints.
// An empty breakpoint list falls back to DefaultBreakpoints.
func BucketLabel(price float64, breakpoints []float64) string {
	if len(breakpoints) == 0 {
		breakpoints = DefaultBreakpoints
	}
	if price < breakpoints[0] {
		return FormatBreakpoint(breakpoints[0]) + "以下"
	}
	last := breakpoints[len(breakpoints)-1]
	if price >= last {
		return FormatBreakpoint(last) + "以上"
	}
	for i := 0; i < len(breakpoints)-1; i++ {
		if price >= breakpoints[i] && price < breakpoints[i+1] {
			return FormatBreakpoint(breakpoints[i]) + "-" + FormatBreakpoint(breakpoints[i+1])
		}
	}
	// Unreachable for strictly increasing breakpoints.
	return FormatBreakpoint(last) + "以上"
}

// ParseAmount parses a display price string into yuan. Values carrying a
// "万" suffix are scaled by 10,000 ("8.98万" → 89800, "16万" → 160000); bare
// numbers are taken as yuan. Placeholder strings ("-", "") report ok=false.
func ParseAmount(s string) (amount float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	scale := 1.0
	if strings.HasSuffix(s, "万") {
		scale = 10000
		s = strings.TrimSuffix(s, "万")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v * scale, true
}
