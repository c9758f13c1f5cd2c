package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/gravity/pkg/model"
)

// ParseDue reads a deadline typed by a person: either an offset from now
// ("90m", "2h30m") or an absolute RFC3339 instant.
func ParseDue(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", model.ErrMalformedDeadline)
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(d), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is neither a duration nor RFC3339", model.ErrMalformedDeadline, s)
	}
	return t, nil
}
