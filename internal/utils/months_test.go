package utils

import (
	"reflect"
	"testing"
)

func TestMonthRange_RollsOverYears(t *testing.T) {
	got := MonthRange(202411, 202502)
	want := []int{202411, 202412, 202501, 202502}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MonthRange(202411, 202502) = %v; want %v", got, want)
	}
}

func TestMonthRange_SingleMonth(t *testing.T) {
	got := MonthRange(202506, 202506)
	if !reflect.DeepEqual(got, []int{202506}) {
		t.Fatalf("single-month range = %v", got)
	}
}

func TestMonthRange_InvalidBounds(t *testing.T) {
	if got := MonthRange(202506, 202505); got != nil {
		t.Fatalf("start after end should be nil, got %v", got)
	}
	if got := MonthRange(0, 202505); got != nil {
		t.Fatalf("zero start should be nil, got %v", got)
	}
	if got := MonthRange(202505, 0); got != nil {
		t.Fatalf("zero end should be nil, got %v", got)
	}
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		m, n, want int
	}{
		{202501, 1, 202502},
		{202512, 1, 202601},
		{202501, 12, 202601},
		{202501, -1, 202412},
		{202503, -3, 202412},
		{202506, 0, 202506},
	}
	for _, c := range cases {
		if got := AddMonths(c.m, c.n); got != c.want {
			t.Errorf("AddMonths(%d, %d) = %d; want %d", c.m, c.n, got, c.want)
		}
	}
}

func TestMonthOf(t *testing.T) {
	if MonthOf(202512) != 12 || MonthOf(202501) != 1 {
		t.Fatalf("MonthOf extraction wrong")
	}
}
