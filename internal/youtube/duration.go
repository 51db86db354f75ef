package youtube

import (
	"regexp"
	"strconv"
)

var durationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// DurationMinutes converts an ISO-8601 duration of the form PT#H#M#S to whole minutes.
//
// Leftover seconds round up to the next minute. Input that does not match yields 0.
func DurationMinutes(iso string) int {
	m := durationPattern.FindStringSubmatch(iso)
	if m == nil {
		return 0
	}

	hours := atoiOrZero(m[1])
	minutes := atoiOrZero(m[2])
	seconds := atoiOrZero(m[3])

	return hours*60 + minutes + (seconds+59)/60
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
