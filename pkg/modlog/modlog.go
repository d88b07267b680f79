// Package modlog extracts mod mentions from a Factorio log file.
//
// While loading, the game writes one line per mod it loads:
//
//	   0.811 Loading mod core 0.0.0 (data.lua)
//	   0.845 Loading mod base 2.0.28 (data.lua)
//	   1.203 Loading mod settings flib 0.15.0 (settings.lua)
//
// [Mentions] turns such a log into a lazy sequence of [Mention] values in
// line order. Only lines containing " Loading mod " are considered; a line
// that contains the marker but does not have the expected structure aborts
// the sequence with an [errors.ParseError] carrying the raw line.
//
// Duplicate mentions are yielded as-is. Deduplication and conflict detection
// belong to the inventory package.
package modlog

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"regexp"
	"strings"

	"github.com/matzehuels/famtools/pkg/errors"
)

// Marker is the substring that makes a log line a mod mention candidate.
const Marker = " Loading mod "

// maxLineSize bounds how much of a single log line is kept. Longer lines,
// such as stack traces, are truncated rather than rejected; a real mention
// is far shorter.
const maxLineSize = 1 << 20

var mentionRE = regexp.MustCompile(`^([0-9.]+) Loading mod (?:settings )?([A-Za-z0-9._-]+) ([0-9.]+) \(([^()]+)\)`)

// Mention is a single (name, version) occurrence parsed from a log line.
type Mention struct {
	Name    string // mod name, case-sensitive
	Version string // dotted numeric version as logged
	Line    int    // 1-based line number in the log
}

// ParseLine parses a single log line.
//
// Returns ok=false with a nil error for lines that are not mod mention
// candidates. Candidate lines that do not match the mention structure
// return an *errors.ParseError with LineNo set to 0; [Mentions] fills in
// the real line number.
func ParseLine(line string) (m Mention, ok bool, err error) {
	if !strings.Contains(line, Marker) {
		return Mention{}, false, nil
	}
	groups := mentionRE.FindStringSubmatch(strings.TrimSpace(line))
	if groups == nil {
		return Mention{}, false, &errors.ParseError{Line: line}
	}
	return Mention{Name: groups[2], Version: groups[3]}, true, nil
}

// Mentions returns a lazy sequence of the mod mentions in r.
//
// The sequence yields at most one error: either a ParseError for the first
// malformed candidate line or a read error from r. No mention is yielded
// after an error. Ranging over the sequence reads r at most once.
func Mentions(r io.Reader) iter.Seq2[Mention, error] {
	return func(yield func(Mention, error) bool) {
		br := bufio.NewReader(r)

		lineNo := 0
		for {
			line, err := readLine(br)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Mention{}, fmt.Errorf("read log: %w", err))
				return
			}
			lineNo++

			m, ok, err := ParseLine(line)
			if err != nil {
				if pe, isParse := err.(*errors.ParseError); isParse {
					pe.LineNo = lineNo
				}
				yield(Mention{}, err)
				return
			}
			if !ok {
				continue
			}
			m.Line = lineNo
			if !yield(m, nil) {
				return
			}
		}
	}
}

// readLine returns the next line without its line ending, keeping at most
// maxLineSize bytes and discarding the remainder. It returns io.EOF only
// when no bytes are left.
func readLine(br *bufio.Reader) (string, error) {
	var buf []byte
	read := false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if err == io.EOF && read {
				break
			}
			return "", err
		}
		read = true
		if room := maxLineSize - len(buf); room > 0 {
			buf = append(buf, chunk[:min(len(chunk), room)]...)
		}
		if !isPrefix {
			break
		}
	}
	return strings.TrimSuffix(string(buf), "\r"), nil
}

// Collect drains a mention sequence into a slice, stopping at the first
// error.
func Collect(seq iter.Seq2[Mention, error]) ([]Mention, error) {
	var out []Mention
	for m, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
