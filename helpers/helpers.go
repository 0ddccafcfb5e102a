package helpers

import (
	"fmt"
	"math/bits"
	"strconv"
)

// PageBounds returns [start, end) of the page inside a list of given length.
// Out of range pages and overflowing page*limit give an empty window.
func PageBounds(page, limit, length uint64) (start uint64, end uint64) {
	hi, lo := bits.Mul64(page, limit)
	if hi != 0 || lo >= length {
		return length, length
	}

	start = lo
	end = start + limit
	if end < start || end > length {
		end = length
	}

	return start, end
}

// ClampLimit returns def for zero limit and max for limits above it
func ClampLimit(limit, def, max uint64) uint64 {
	if limit == 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// StringToUint64 converts decimal string to uint64, empty string gives def
func StringToUint64(s string, def uint64) (uint64, error) {
	if s == "" {
		return def, nil
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot decode %q into uint64", s)
	}

	return v, nil
}
