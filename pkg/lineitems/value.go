package lineitems

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/yurifrl/invex/pkg/models"
)

var numberCleaner = strings.NewReplacer(
	",", "",
	"٬", "",
	"٫", ".",
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

var numericRun = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ParseValue strips thousands separators and spaces and parses a number. On
// failure the trimmed original text is kept.
func ParseValue(s string) models.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Text("")
	}
	f, err := strconv.ParseFloat(numberCleaner.Replace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return models.Text(s)
	}
	return models.Num(f)
}

// ParsePrice is ParseValue that also ignores currency symbols and codes
// around the number, so "EGP 1,250.50" and "$12" parse.
func ParsePrice(s string) models.Value {
	v := ParseValue(s)
	if v.IsNumeric() || v.Text == "" {
		return v
	}
	m := numericRun.FindString(numberCleaner.Replace(s))
	if m == "" {
		return v
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return v
	}
	return models.Num(f)
}

// IsNumeric reports whether s parses as a plain number.
func IsNumeric(s string) bool {
	return ParseValue(s).IsNumeric()
}
