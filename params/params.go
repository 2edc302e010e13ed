/*
Package params derives the data widths and entry counts for a range/value document.
*/
package params

import (
	"errors"

	"github.com/sky-uk/hexlane/input"
	"github.com/sky-uk/hexlane/util"
)

// Classification decides which lines of a document are ranges.
type Classification int

const (
	// ClassifyByPosition treats every line before the first blank line as a range.
	// This is the rule the lane files are built with.
	ClassifyByPosition Classification = iota
	// ClassifyByContent treats any line containing the range delimiter as a range,
	// wherever it appears.
	ClassifyByContent
)

func (c Classification) String() string {
	switch c {
	case ClassifyByPosition:
		return "position"
	case ClassifyByContent:
		return "content"
	default:
		return "unknown"
	}
}

var (
	// ErrEmptyRanges is returned for a document without any range lines.
	ErrEmptyRanges = errors.New("input contains no ranges")
	// ErrEmptyValues is returned for a document without any value lines.
	ErrEmptyValues = errors.New("input contains no values")
)

// Parameters describe the size and width of the data in a document.
type Parameters struct {
	RangesCount int
	ValuesCount int
	// MaxValue is the largest range upper bound or value.
	MaxValue uint64
	// BitWidth is the number of bits needed for MaxValue, at least 1.
	BitWidth int
	// HexWidth is the number of hex digits needed for BitWidth bits.
	HexWidth int
}

// Derive scans the document once and computes its Parameters.
func Derive(doc *input.Document, classification Classification) (Parameters, error) {
	var p Parameters

	ranges, values, err := classify(doc, classification)
	if err != nil {
		return p, err
	}

	for _, line := range ranges {
		r, err := doc.ParseRange(line)
		if err != nil {
			return p, err
		}
		// the upper bound always dominates the lower bound
		if r.High > p.MaxValue {
			p.MaxValue = r.High
		}
		p.RangesCount++
	}

	for _, line := range values {
		v, err := doc.ParseValue(line)
		if err != nil {
			return p, err
		}
		if v > p.MaxValue {
			p.MaxValue = v
		}
		p.ValuesCount++
	}

	if p.RangesCount == 0 {
		return p, ErrEmptyRanges
	}
	if p.ValuesCount == 0 {
		return p, ErrEmptyValues
	}

	p.BitWidth = util.BitLength(p.MaxValue)
	if p.BitWidth == 0 {
		p.BitWidth = 1
	}
	p.HexWidth = HexWidth(p.BitWidth)
	return p, nil
}

// HexWidth is the number of hex digits needed to hold bitWidth bits.
func HexWidth(bitWidth int) int {
	return util.CeilDiv(bitWidth, 4)
}

func classify(doc *input.Document, classification Classification) (ranges, values []input.Line, err error) {
	switch classification {
	case ClassifyByPosition:
		ranges, values = doc.Sections()
	case ClassifyByContent:
		for _, line := range doc.NonBlank() {
			if input.IsRange(line.Text) {
				ranges = append(ranges, line)
			} else {
				values = append(values, line)
			}
		}
	default:
		return nil, nil, errors.New("unknown classification " + classification.String())
	}
	return ranges, values, nil
}
