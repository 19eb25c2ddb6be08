package tree

import (
	"errors"
	"fmt"
	"strings"
)

// Scanner is a window onto a source text. Nodes carry Scanners rather than
// copied strings so that a typed tree can always recover the exact bytes of
// the region it was converted from.
type Scanner struct {
	src         source // the source the scanner is drawing from
	sliceStart  int    // the start of the slice visible to the scanner
	sliceLength int    // the length of the slice visible to the scanner
}

type source interface {
	length() int                // the length of the entire source string
	slice(i, length int) string // the string of the given slice
	filename() string           // the name of the file the source came from (or empty)
}

type stringSource struct {
	origin string
	f      string
}

func NewScanner(str string) *Scanner {
	return &Scanner{stringSource{origin: str}, 0, len(str)}
}

func NewScannerWithFilename(str, filename string) *Scanner {
	return &Scanner{stringSource{str, filename}, 0, len(str)}
}

// NewScannerAt returns a scanner over the [offset, offset+size) byte range of str.
func NewScannerAt(str string, offset, size int) *Scanner {
	return &Scanner{stringSource{origin: str}, offset, size}
}

// The name of the file from which the source is derived (or empty if none).
func (s Scanner) Filename() string {
	if s.src == nil {
		return ""
	}
	return s.src.filename()
}

func (s Scanner) String() string {
	if s.src == nil {
		return ""
	}
	return s.slice()
}

func (s Scanner) IsNil() bool {
	return s.src == nil
}

func (s Scanner) Format(state fmt.State, c rune) {
	if c == 'q' {
		_, _ = fmt.Fprintf(state, "%q", s.slice())
	} else {
		_, _ = state.Write([]byte(s.slice()))
	}
}

// Contains reports whether sn covers a subrange of s within the same source.
func (s Scanner) Contains(sn Scanner) bool {
	if s.Filename() != sn.Filename() || s.src != sn.src {
		return false
	}
	return s.sliceStart <= sn.sliceStart &&
		s.sliceStart+s.sliceLength >= sn.sliceStart+sn.sliceLength
}

// The position of the start of the scanner within the original source.
func (s Scanner) Offset() int {
	return s.sliceStart
}

// End is the byte offset one past the end of the scanner's range.
func (s Scanner) End() int {
	return s.sliceStart + s.sliceLength
}

// The 1-indexed line and column number of the start of the scanner within the
// original source.
func (s Scanner) Position() (int, int) {
	return lineColumn(s.src.slice(0, s.sliceStart), s.sliceStart)
}

func (s Scanner) slice() string {
	return s.src.slice(s.sliceStart, s.sliceLength)
}

// Slice returns a scanner over the [a, b) subrange of s.
func (s Scanner) Slice(a, b int) *Scanner {
	return &Scanner{s.src, s.sliceStart + a, b - a}
}

var (
	NoLimit      = -1
	DefaultLimit = 1
)

// Context renders the scanner's range within its surrounding source, limited
// to limitLines lines either side, for use in diagnostics.
func (s Scanner) Context(limitLines int) string {
	end := s.sliceStart + s.sliceLength
	lineno, colno := s.Position()

	above := s.src.slice(0, s.sliceStart)
	below := s.src.slice(end, s.src.length()-end)
	if limitLines != NoLimit {
		a := strings.Split(above, "\n")
		if len(a) > limitLines {
			above = strings.Join(a[len(a)-limitLines-1:], "\n")
		}
		b := strings.Split(below, "\n")
		if len(b) > limitLines {
			below = strings.Join(b[:limitLines], "\n")
		}
	}

	return fmt.Sprintf("%s:%d:%d: %s«%s»%s", s.Filename(), lineno, colno, above, s.slice(), below)
}

// MergeScanners returns the smallest scanner covering all the given scanners.
// All scanners must share a source.
func MergeScanners(items ...Scanner) (Scanner, error) {
	if len(items) == 0 {
		return Scanner{}, errors.New("needs at least one scanner")
	}
	if len(items) == 1 {
		return items[0], nil
	}

	l, r := items[0].sliceStart, items[0].sliceStart+items[0].sliceLength
	src := items[0].src

	for _, v := range items[1:] {
		if v.src != src {
			return Scanner{}, fmt.Errorf("scanners' sources are not the same: %s vs %s", src, v.src)
		}
		if v.sliceStart < l {
			l = v.sliceStart
		}
		if v.sliceStart+v.sliceLength > r {
			r = v.sliceStart + v.sliceLength
		}
	}

	return Scanner{src: src, sliceStart: l, sliceLength: r - l}, nil
}

// - stringSource

func (s stringSource) length() int {
	return len(s.origin)
}

func (s stringSource) slice(i, length int) string {
	if i < 0 || i+length < 0 || i > len(s.origin) || i+length > len(s.origin) {
		return s.origin
	}
	return (s.origin)[i : i+length]
}

func (s stringSource) filename() string {
	return s.f
}

// The 1-indexed line and column number of the given position within the given string.
func lineColumn(str string, pos int) (line, col int) {
	prefix := str[:pos]
	line = strings.Count(prefix, "\n") + 1
	col = pos - strings.LastIndex(prefix, "\n")
	return
}
