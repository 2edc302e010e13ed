package lanes

import (
	"fmt"

	"github.com/sky-uk/hexlane/util"
)

// Lane file name prefixes.
const (
	RangeLowBoundPrefix  = "range_low_bound"
	RangeHighBoundPrefix = "range_high_bound"
	ValuesPrefix         = "values"
)

// Category holds the encoded entries of one kind striped over its lanes. Entries live
// in a single arena of lanes*rows slots; lane l owns slots [l*rows, (l+1)*rows).
type Category struct {
	prefix  string
	stripe  util.Stripe
	rows    int
	slots   []string
	lengths []int
}

func newCategory(prefix string, count, parallelism int) *Category {
	stripe := util.Stripe{Count: count, Lanes: parallelism}
	rows := stripe.Rows()
	return &Category{
		prefix:  prefix,
		stripe:  stripe,
		rows:    rows,
		slots:   make([]string, parallelism*rows),
		lengths: make([]int, parallelism),
	}
}

func (c *Category) put(i int, entry string) {
	lane, row := c.stripe.Position(i)
	c.slots[lane*c.rows+row] = entry
	c.lengths[lane]++
}

// Prefix is the file name prefix for the category's lanes.
func (c *Category) Prefix() string {
	return c.prefix
}

// Lanes is the parallelism of the category.
func (c *Category) Lanes() int {
	return c.stripe.Lanes
}

// Rows is the length of the longest lane.
func (c *Category) Rows() int {
	return c.rows
}

// Lane returns the populated rows of a lane in row order.
func (c *Category) Lane(lane int) []string {
	start := lane * c.rows
	return c.slots[start : start+c.lengths[lane]]
}

// LaneLength is the number of populated rows in a lane.
func (c *Category) LaneLength(lane int) int {
	return c.lengths[lane]
}

// FileName is the file name, without extension, for a lane.
func (c *Category) FileName(lane int) string {
	return fmt.Sprintf("%s_%d", c.prefix, lane)
}

// LengthChangeIndex is the first lane holding an unfilled slot, or -1 if every lane
// is full length.
func (c *Category) LengthChangeIndex() int {
	for lane := 0; lane < c.stripe.Lanes; lane++ {
		start := lane * c.rows
		for _, entry := range c.slots[start : start+c.rows] {
			if entry == "" {
				return lane
			}
		}
	}
	return -1
}

// FileLength is the row count of lane 0, which is always the longest.
func (c *Category) FileLength() int {
	return c.lengths[0]
}

// AddressWidth is the number of address bits needed to index the longest lane.
func (c *Category) AddressWidth() int {
	return util.CeilLog2(c.FileLength())
}
