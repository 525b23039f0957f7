package comparison

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/pkg/constants"
)

// ErrUnknownTimeFrame is returned for an unrecognised time frame name.
var ErrUnknownTimeFrame = errors.New("unknown time frame")

// TimeFrame names a comparison window ending now.
type TimeFrame string

const (
	Weekly    TimeFrame = "weekly"
	Monthly   TimeFrame = "monthly"
	Quarterly TimeFrame = "quarterly"
	HalfYear  TimeFrame = "half-year"
	Yearly    TimeFrame = "yearly"
	AllTime   TimeFrame = "all-time"
)

// TimeFrames lists every time frame from shortest to longest.
var TimeFrames = []TimeFrame{Weekly, Monthly, Quarterly, HalfYear, Yearly, AllTime}

// ParseTimeFrame converts a time frame name, ignoring case and surrounding
// whitespace.
func ParseTimeFrame(raw string) (TimeFrame, error) {
	name := TimeFrame(strings.ToLower(strings.TrimSpace(raw)))
	for _, tf := range TimeFrames {
		if tf == name {
			return tf, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTimeFrame, raw)
}

// WindowFor returns the window [now - offset, now] of tf. The all-time window
// starts at a fixed epoch.
func WindowFor(tf TimeFrame, now time.Time) (model.Window, error) {
	var start time.Time
	switch tf {
	case Weekly:
		start = now.AddDate(0, 0, -7)
	case Monthly:
		start = now.AddDate(0, -1, 0)
	case Quarterly:
		start = now.AddDate(0, -3, 0)
	case HalfYear:
		start = now.AddDate(0, -6, 0)
	case Yearly:
		start = now.AddDate(-1, 0, 0)
	case AllTime:
		start = constants.AllTimeEpoch
	default:
		return model.Window{}, fmt.Errorf("%w: %q", ErrUnknownTimeFrame, string(tf))
	}
	return model.Window{Start: start, End: now}, nil
}
