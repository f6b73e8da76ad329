// Package utils provides small, generic helper functions used across
// different layers of the application, currently YYYYMM month arithmetic
// for the statistics pipeline and the sales forecast.
package utils

// MonthRange expands an inclusive [start, end] range of YYYYMM months into an
// explicit list, stepping month by month with year rollover. It returns nil
// when either bound is zero or when start is after end.
//
// Example:
//
//	MonthRange(202411, 202502) // [202411 202412 202501 202502]
func MonthRange(start, end int) []int {
	if start == 0 || end == 0 || start > end {
		return nil
	}

	year, month := start/100, start%100
	endYear, endMonth := end/100, end%100

	var months []int
	for {
		months = append(months, year*100+month)
		if year == endYear && month == endMonth {
			break
		}
		month++
		if month > 12 {
			month = 1
			year++
		}
		if year > endYear || (year == endYear && month > endMonth) {
			break
		}
	}
	return months
}

// AddMonths returns the YYYYMM month n months after m (n may be negative).
func AddMonths(m, n int) int {
	year, month := m/100, m%100
	total := year*12 + (month - 1) + n
	return (total/12)*100 + total%12 + 1
}

// MonthOf extracts the calendar month (1..12) from a YYYYMM value.
func MonthOf(m int) int { return m % 100 }
