package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

type HistoryFilter struct {
	Query    string
	FromDate string
	ToDate   string
}

// HistoryRepository keeps the food-analysis log under one key. Records are
// stored in append order; reads sort newest first.
type HistoryRepository struct {
	store store.Store
	log   *logrus.Logger
	Now   func() time.Time
}

func NewHistoryRepository(s store.Store, log *logrus.Logger) *HistoryRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HistoryRepository{store: s, log: log}
}

// Append stores r at the end of the log. A zero timestamp is set to now; if
// that instant is already taken it moves one millisecond past the newest
// record so timestamps stay unique.
func (r *HistoryRepository) Append(rec model.FoodAnalysis) (model.FoodAnalysis, error) {
	assign := rec.Timestamp == 0
	var saved model.FoodAnalysis
	err := r.store.Update(store.KeyFoodHistory, func(current []byte, _ bool) ([]byte, bool, error) {
		records, err := NormalizeFoodHistory(current)
		if err != nil {
			return nil, false, err
		}
		saved = rec
		if assign {
			saved.Timestamp = nextTimestamp(records, model.Millis(nowFunc(r.Now)))
		}
		next, err := encodeList(append(records, saved))
		if err != nil {
			return nil, false, err
		}
		return next, true, nil
	})
	if err != nil {
		return model.FoodAnalysis{}, fmt.Errorf("append food analysis: %w", err)
	}
	r.log.WithFields(logrus.Fields{"name": saved.Name, "timestamp": saved.Timestamp}).Debug("Food analysis recorded")
	return saved, nil
}

func nextTimestamp(records []model.FoodAnalysis, now int64) int64 {
	var newest int64
	taken := false
	for _, rec := range records {
		if rec.Timestamp == now {
			taken = true
		}
		if rec.Timestamp > newest {
			newest = rec.Timestamp
		}
	}
	if !taken {
		return now
	}
	return newest + 1
}

// ListAll returns every record, newest first. Ties keep stored order.
func (r *HistoryRepository) ListAll() ([]model.FoodAnalysis, error) {
	raw, _, err := r.store.Get(store.KeyFoodHistory)
	if err != nil {
		return nil, fmt.Errorf("load food history: %w", err)
	}
	records, err := NormalizeFoodHistory(raw)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	return records, nil
}

// Filter narrows ListAll by a case-insensitive text match on name or
// description and an inclusive local date range.
func (r *HistoryRepository) Filter(f HistoryFilter) ([]model.FoodAnalysis, error) {
	var (
		from, to       int64
		hasFrom, hasTo bool
	)
	if strings.TrimSpace(f.FromDate) != "" {
		t, err := parseDateStart(f.FromDate)
		if err != nil {
			return nil, err
		}
		from, hasFrom = model.Millis(t), true
	}
	if strings.TrimSpace(f.ToDate) != "" {
		t, err := parseDateEnd(f.ToDate)
		if err != nil {
			return nil, err
		}
		to, hasTo = model.Millis(t), true
	}
	if hasFrom && hasTo && from > to {
		return nil, fmt.Errorf("--from must be on or before --to")
	}

	records, err := r.ListAll()
	if err != nil {
		return nil, err
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]model.FoodAnalysis, 0, len(records))
	for _, rec := range records {
		if query != "" &&
			!strings.Contains(strings.ToLower(rec.Name), query) &&
			!strings.Contains(strings.ToLower(rec.Description), query) {
			continue
		}
		if hasFrom && rec.Timestamp < from {
			continue
		}
		if hasTo && rec.Timestamp > to {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// DeleteByTimestamp removes every record with timestamp ts. Deleting an
// unknown timestamp writes nothing.
func (r *HistoryRepository) DeleteByTimestamp(ts int64) error {
	removed := 0
	err := r.store.Update(store.KeyFoodHistory, func(current []byte, _ bool) ([]byte, bool, error) {
		records, err := NormalizeFoodHistory(current)
		if err != nil {
			return nil, false, err
		}
		kept := make([]model.FoodAnalysis, 0, len(records))
		for _, rec := range records {
			if rec.Timestamp != ts {
				kept = append(kept, rec)
			}
		}
		removed = len(records) - len(kept)
		if removed == 0 {
			return nil, false, nil
		}
		next, err := encodeList(kept)
		return next, err == nil, err
	})
	if err != nil {
		return fmt.Errorf("delete food analysis %d: %w", ts, err)
	}
	if removed > 0 {
		r.log.WithFields(logrus.Fields{"timestamp": ts, "removed": removed}).Debug("Food analysis deleted")
	}
	return nil
}

func (r *HistoryRepository) ClearAll() error {
	if err := r.store.Set(store.KeyFoodHistory, []byte("[]")); err != nil {
		return fmt.Errorf("clear food history: %w", err)
	}
	r.log.Debug("Food history cleared")
	return nil
}

// Replace stores records as the whole log, in the given order.
func (r *HistoryRepository) Replace(records []model.FoodAnalysis) error {
	b, err := encodeList(records)
	if err != nil {
		return err
	}
	if err := r.store.Set(store.KeyFoodHistory, b); err != nil {
		return fmt.Errorf("save food history: %w", err)
	}
	return nil
}
