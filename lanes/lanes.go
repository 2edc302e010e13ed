/*
Package lanes stripes ranges and values round-robin over hardware lanes and encodes
each entry as fixed width hex.
*/
package lanes

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/sky-uk/hexlane/input"
	"github.com/sky-uk/hexlane/params"
)

var (
	// ErrZeroParallelism is returned for a parallelism below one.
	ErrZeroParallelism = errors.New("parallelism must be at least 1")
	// ErrParallelismExceedsCount is returned when there are more lanes than entries.
	ErrParallelismExceedsCount = errors.New("parallelism cannot be greater than the number of entries")
	// ErrCountMismatch is returned when the document holds a different number of
	// entries than its parameters claim.
	ErrCountMismatch = errors.New("entry count does not match derived parameters")
	// ErrValueTooWide is returned when a number needs more hex digits than the data width allows.
	ErrValueTooWide = errors.New("value does not fit in data width")
)

// Layout is the complete lane assignment for a document.
type Layout struct {
	RangeLowBounds  *Category
	RangeHighBounds *Category
	Values          *Category

	RangeLengthChangeIndex int
	ValueLengthChangeIndex int
}

// File is the content of one lane file.
type File struct {
	Name    string
	Entries []string
}

// Files lists every lane file, high bounds first, then low bounds, then values.
func (l *Layout) Files() []File {
	var files []File
	for _, c := range []*Category{l.RangeHighBounds, l.RangeLowBounds, l.Values} {
		for lane := 0; lane < c.Lanes(); lane++ {
			files = append(files, File{Name: c.FileName(lane), Entries: c.Lane(lane)})
		}
	}
	return files
}

// RangeFileLength is the length of the longest range lane file.
func (l *Layout) RangeFileLength() int {
	return l.RangeLowBounds.FileLength()
}

// RangeAddressWidth is the address width of the range memories.
func (l *Layout) RangeAddressWidth() int {
	return l.RangeLowBounds.AddressWidth()
}

// ValueFileLength is the length of the longest value lane file.
func (l *Layout) ValueFileLength() int {
	return l.Values.FileLength()
}

// ValueAddressWidth is the address width of the value memories.
func (l *Layout) ValueAddressWidth() int {
	return l.Values.AddressWidth()
}

// Validate checks the requested parallelism against the derived entry counts. Every
// failed check is reported.
func Validate(p params.Parameters, rangeParallelism, valueParallelism int) error {
	var errs *multierror.Error
	errs = multierror.Append(errs, validate("range", rangeParallelism, p.RangesCount))
	errs = multierror.Append(errs, validate("value", valueParallelism, p.ValuesCount))
	return errs.ErrorOrNil()
}

func validate(kind string, parallelism, count int) error {
	if parallelism < 1 {
		return fmt.Errorf("%s parallelism %d: %w", kind, parallelism, ErrZeroParallelism)
	}
	if parallelism > count {
		return fmt.Errorf("%s parallelism %d with %d %ss: %w", kind, parallelism, count, kind, ErrParallelismExceedsCount)
	}
	return nil
}

// Partition re-reads the document and stripes its entries over the requested lanes.
// Ranges and values are separated by the first blank line.
func Partition(doc *input.Document, p params.Parameters, rangeParallelism, valueParallelism int) (*Layout, error) {
	if err := Validate(p, rangeParallelism, valueParallelism); err != nil {
		return nil, err
	}

	layout := &Layout{
		RangeLowBounds:  newCategory(RangeLowBoundPrefix, p.RangesCount, rangeParallelism),
		RangeHighBounds: newCategory(RangeHighBoundPrefix, p.RangesCount, rangeParallelism),
		Values:          newCategory(ValuesPrefix, p.ValuesCount, valueParallelism),
	}

	ranges, values := doc.Sections()
	if len(ranges) != p.RangesCount {
		return nil, fmt.Errorf("found %d ranges, expected %d: %w", len(ranges), p.RangesCount, ErrCountMismatch)
	}
	if len(values) != p.ValuesCount {
		return nil, fmt.Errorf("found %d values, expected %d: %w", len(values), p.ValuesCount, ErrCountMismatch)
	}

	for i, line := range ranges {
		r, err := doc.ParseRange(line)
		if err != nil {
			return nil, err
		}
		low, err := Encode(r.Low, p.HexWidth)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line.Number, err)
		}
		high, err := Encode(r.High, p.HexWidth)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line.Number, err)
		}
		layout.RangeLowBounds.put(i, low)
		layout.RangeHighBounds.put(i, high)
	}

	for j, line := range values {
		v, err := doc.ParseValue(line)
		if err != nil {
			return nil, err
		}
		encoded, err := Encode(v, p.HexWidth)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line.Number, err)
		}
		layout.Values.put(j, encoded)
	}

	// both range arenas share one geometry, so the low bounds speak for both
	layout.RangeLengthChangeIndex = layout.RangeLowBounds.LengthChangeIndex()
	layout.ValueLengthChangeIndex = layout.Values.LengthChangeIndex()

	log.Debugf("Partitioned %d ranges over %d lanes of %d rows, length change index %d",
		p.RangesCount, rangeParallelism, layout.RangeLowBounds.Rows(), layout.RangeLengthChangeIndex)
	log.Debugf("Partitioned %d values over %d lanes of %d rows, length change index %d",
		p.ValuesCount, valueParallelism, layout.Values.Rows(), layout.ValueLengthChangeIndex)

	return layout, nil
}

// Encode formats v as lowercase hex, zero padded to width digits.
func Encode(v uint64, width int) (string, error) {
	encoded := fmt.Sprintf("%0*x", width, v)
	if len(encoded) > width {
		return "", fmt.Errorf("%d needs %d hex digits, have %d: %w", v, len(encoded), width, ErrValueTooWide)
	}
	return encoded, nil
}
