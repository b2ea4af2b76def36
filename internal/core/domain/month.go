package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// YearMonth is a calendar month used to filter financial data.
type YearMonth struct {
	Year  int
	Month int
}

// String renders the month as YYYY-MM.
func (m YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// ParseYearMonth accepts YYYY-M or YYYY-MM with a month between 1 and 12.
func ParseYearMonth(s string) (YearMonth, error) {
	year, month, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || len(year) != 4 || len(month) < 1 || len(month) > 2 {
		return YearMonth{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 0 {
		return YearMonth{}, fmt.Errorf("invalid year in %q", s)
	}
	mo, err := strconv.Atoi(month)
	if err != nil || mo < 1 || mo > 12 {
		return YearMonth{}, fmt.Errorf("invalid month in %q: must be 1-12", s)
	}
	return YearMonth{Year: y, Month: mo}, nil
}
