/*
Package input reads the range and value list that hexlane turns into memory files.

The document is a block of "low-high" range lines, a blank line, then a block of
single value lines:

	10-20
	5-7

	3
	9
*/
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// RangeDelimiter separates the bounds of a range line.
const RangeDelimiter = "-"

// ErrNotRange is returned when a range line does not hold exactly two bounds.
var ErrNotRange = errors.New("expected low" + RangeDelimiter + "high")

// Range is an inclusive pair of bounds. Low <= High is assumed, not checked.
type Range struct {
	Low  uint64
	High uint64
}

// Line is a single non-blank input line with its 1-based position.
type Line struct {
	Number int
	Text   string
}

// Document is the ordered content of an input file.
type Document struct {
	Source string
	Lines  []string
}

// ParseError reports a line that is neither a value nor a range.
type ParseError struct {
	Source string
	Line   int
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: unable to parse %q: %v", e.Source, e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReadFile reads the document at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open input: %w", err)
	}
	defer f.Close()
	return Read(path, f)
}

// Read reads every line from r. Source is only used in error messages.
func Read(source string, r io.Reader) (*Document, error) {
	doc := &Document{Source: source}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		doc.Lines = append(doc.Lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", source, err)
	}
	return doc, nil
}

// Sections splits the document at the first blank line. Everything before it is a
// range line, every non-blank line after it is a value line, whatever it contains.
func (d *Document) Sections() (ranges, values []Line) {
	inRanges := true
	for i, raw := range d.Lines {
		text := strings.TrimSpace(raw)
		if text == "" {
			inRanges = false
			continue
		}
		line := Line{Number: i + 1, Text: text}
		if inRanges {
			ranges = append(ranges, line)
		} else {
			values = append(values, line)
		}
	}
	return ranges, values
}

// NonBlank returns every non-blank line in order.
func (d *Document) NonBlank() []Line {
	var lines []Line
	for i, raw := range d.Lines {
		if text := strings.TrimSpace(raw); text != "" {
			lines = append(lines, Line{Number: i + 1, Text: text})
		}
	}
	return lines
}

// IsRange reports whether the line looks like a range by content alone.
func IsRange(text string) bool {
	return strings.Contains(text, RangeDelimiter)
}

// ParseRange parses a "low-high" line.
func (d *Document) ParseRange(line Line) (Range, error) {
	r, err := ParseRange(line.Text)
	if err != nil {
		return Range{}, d.parseError(line, err)
	}
	return r, nil
}

// ParseValue parses a single value line.
func (d *Document) ParseValue(line Line) (uint64, error) {
	v, err := ParseValue(line.Text)
	if err != nil {
		return 0, d.parseError(line, err)
	}
	return v, nil
}

func (d *Document) parseError(line Line, err error) error {
	return &ParseError{Source: d.Source, Line: line.Number, Text: line.Text, Err: err}
}

// ParseRange parses "low-high" into a Range.
func ParseRange(text string) (Range, error) {
	bounds := strings.Split(text, RangeDelimiter)
	if len(bounds) != 2 {
		return Range{}, ErrNotRange
	}
	low, err := ParseValue(bounds[0])
	if err != nil {
		return Range{}, err
	}
	high, err := ParseValue(bounds[1])
	if err != nil {
		return Range{}, err
	}
	return Range{Low: low, High: high}, nil
}

// ParseValue parses a base 10 unsigned integer, ignoring surrounding whitespace.
func ParseValue(text string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(text), 10, 64)
}
