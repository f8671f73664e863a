package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// EnvelopeDateLayout is the only accepted envelope date format,
// e.g. "Wed Jan 2 15:04:05 +0000 2013".
const EnvelopeDateLayout = "Mon Jan 2 15:04:05 -0700 2006"

// time.Parse tolerates fractional seconds the layout does not name.
var clockPattern = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}$`)

// Timestamp parses an envelope date. The clock must be plain H:M:S and the
// weekday must agree with the date.
func Timestamp(raw string) (time.Time, error) {
	ts, err := time.Parse(EnvelopeDateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}

	fields := strings.Fields(raw)
	if len(fields) != 6 {
		return time.Time{}, fmt.Errorf("parsing time %q: expected 6 fields, got %d", raw, len(fields))
	}
	if !clockPattern.MatchString(fields[3]) {
		return time.Time{}, fmt.Errorf("parsing time %q: time of day %q is not H:M:S", raw, fields[3])
	}
	if want := ts.Weekday().String()[:3]; !strings.EqualFold(fields[0], want) {
		return time.Time{}, fmt.Errorf("parsing time %q: weekday %s does not match date (%s)", raw, fields[0], want)
	}
	return ts, nil
}
