package feed

import "strconv"

// FormatCount abbreviates large counts to one decimal with a K or M suffix,
// rounding half up. There is no roll-over between units: 999_999 is "1000.0K".
func FormatCount(count int) string {
	switch {
	case count >= 1_000_000:
		return tenths(count, 1_000_000) + "M"
	case count >= 1_000:
		return tenths(count, 1_000) + "K"
	}
	return strconv.Itoa(count)
}

func tenths(count, unit int) string {
	step := unit / 10
	t := (count + step/2) / step
	return strconv.Itoa(t/10) + "." + strconv.Itoa(t%10)
}
