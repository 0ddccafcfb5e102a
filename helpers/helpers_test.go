package helpers

import (
	"math"
	"testing"
)

func TestPageBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		page, limit, length uint64
		start, end          uint64
	}{
		{0, 10, 25, 0, 10},
		{1, 10, 25, 10, 20},
		{2, 10, 25, 20, 25},
		{3, 10, 25, 25, 25},
		{0, 0, 25, 0, 0},
		{0, 10, 0, 0, 0},
		{math.MaxUint64, 2, 25, 25, 25},
		{1, math.MaxUint64, 25, 25, 25},
		{0, math.MaxUint64, 25, 0, 25},
	}

	for _, c := range cases {
		start, end := PageBounds(c.page, c.limit, c.length)
		if start != c.start || end != c.end {
			t.Errorf("PageBounds(%d, %d, %d) = [%d, %d), want [%d, %d)", c.page, c.limit, c.length, start, end, c.start, c.end)
		}
	}
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	cases := map[uint64]uint64{
		0:   10,
		1:   1,
		30:  30,
		31:  30,
		100: 30,
	}

	for limit, result := range cases {
		if ClampLimit(limit, 10, 30) != result {
			t.Errorf("ClampLimit(%d) != %d", limit, result)
		}
	}
}

func TestStringToUint64(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"":     true,
		"1":    true,
		"1s":   false,
		"-1":   false,
		"1e10": false,
		"18446744073709551615": true,
		"18446744073709551616": false,
	}

	for str, result := range cases {
		if _, err := StringToUint64(str, 7); (err == nil) != result {
			t.Errorf("StringToUint64(%q) error = %v", str, err)
		}
	}

	if v, _ := StringToUint64("", 7); v != 7 {
		t.Fail()
	}
}
