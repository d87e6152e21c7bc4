package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
)

const dateLayout = "2006-01-02"

func validateNonNegativeInt(name string, value int) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

// normalizeName is the comparison form for set-like string lists.
func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func parseDateStart(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// parseDateEnd returns the last millisecond of the given local day.
func parseDateEnd(value string) (time.Time, error) {
	start, err := parseDateStart(value)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 0, 1).Add(-time.Millisecond), nil
}

func beginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayBoundsMillis returns the inclusive millisecond range of t's local day.
func dayBoundsMillis(t time.Time) (int64, int64) {
	start := beginningOfDay(t.In(time.Local))
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return model.Millis(start), model.Millis(end)
}

func nowFunc(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}

// encodeProfile writes p in its canonical stored form: normalized, schema
// version stamped, members sorted.
func encodeProfile(p *model.Profile) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	canonical, err := NormalizeProfile(b)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(canonical)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return out, nil
}

func encodeProfiles(ps []model.Profile) ([]byte, error) {
	out := make([]json.RawMessage, 0, len(ps))
	for i := range ps {
		b, err := encodeProfile(&ps[i])
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return json.Marshal(out)
}

func encodeList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return b, nil
}
