// Package parser turns raw node output into typed records. Every function
// here is pure: no I/O, no retries, purely a function of its input.
//
// The parsers are deliberately lenient. Missing optional fields default to
// unknown/zero values and unrecognized status tokens are preserved verbatim
// on the record, so newer cluster versions do not hard-fail callers. Only
// structurally unusable input produces a gerrors.ParseError.
package parser

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// RejectionReason extracts the human-readable reason from the output of a
// refused command, e.g. "volume create: v1: failed: <reason>". The reason is
// surfaced verbatim; nothing is inferred from it.
func RejectionReason(output string) string {
	out := strings.TrimSpace(output)
	if out == "" {
		return "no reason given"
	}
	if i := strings.LastIndex(out, "failed: "); i >= 0 {
		return strings.TrimSpace(out[i+len("failed: "):])
	}
	for _, line := range strings.Split(out, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			return l
		}
	}
	return out
}

// parseSize turns a size token such as "1.0KB" or "0Bytes" into bytes.
// Unparsable tokens yield zero; sizes are best effort throughout.
func parseSize(tok string) uint64 {
	tok = strings.TrimSpace(tok)
	if tok == "" || tok == "N/A" {
		return 0
	}
	// the CLI prints "0Bytes", humanize wants "0B"
	if strings.HasSuffix(tok, "Bytes") {
		tok = strings.TrimSuffix(tok, "ytes")
	}
	n, err := humanize.ParseBytes(tok)
	if err != nil {
		return 0
	}
	return n
}

func parseCount(tok string) uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseInt(tok string) int {
	n, err := strconv.Atoi(strings.TrimSpace(tok))
	if err != nil {
		return 0
	}
	return n
}

// snippet bounds an offending fragment for ParseError reporting.
func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 80 {
		return s[:80]
	}
	return s
}
