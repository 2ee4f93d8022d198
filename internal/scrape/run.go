package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	appLog "menucal/internal/log"
	"menucal/internal/menu"
	"menucal/internal/store"
)

// Runner drives one scrape: it resolves which week applies to a
// reference date, fetches and parses a fragment per configured meal
// type, buckets the merged day list into a monthly snapshot, and
// persists it.
type Runner struct {
	Fetcher FragmentFetcher
	Store   *store.Store
	Meals   []menu.MealType
}

// Run performs a complete scrape for the week applying to ref. The
// reference date is an explicit parameter so scheduled runs and tests
// pass their own clock; nothing here reads ambient time for decisions.
//
// Individual meal fetches that fail are logged and skipped; Run only
// errors when every fetch failed, so "fetch failed" is never conflated
// with "the widget had no data".
func (r *Runner) Run(ctx context.Context, ref time.Time) (menu.MonthlyMenu, error) {
	runID := uuid.NewString()
	target := menu.ResolveWeekStart(menu.DateOf(ref))

	appLog.Info("scrape run start", "run_id", runID, "ref", menu.DateOf(ref), "target_week", target)

	days := make([]menu.DailyMenu, 0)
	fetchErrs := make([]error, 0)

	for _, meal := range r.Meals {
		body, err := r.Fetcher.FetchFragment(ctx, meal, target.Year(), target.Month())
		if err != nil {
			fetchErrs = append(fetchErrs, fmt.Errorf("%s: %w", meal, err))
			appLog.Error("scrape fetch failed", err, "run_id", runID, "meal", meal)
			continue
		}

		events, err := Tokenize(bytes.NewReader(body))
		if err != nil {
			fetchErrs = append(fetchErrs, fmt.Errorf("%s: tokenize: %w", meal, err))
			appLog.Error("scrape tokenize failed", err, "run_id", runID, "meal", meal)
			continue
		}

		parsed := ParseFragment(events, meal)
		appLog.Info("scrape fragment parsed", "run_id", runID, "meal", meal, "day_count", len(parsed))
		days = append(days, parsed...)
	}

	if len(fetchErrs) == len(r.Meals) && len(r.Meals) > 0 {
		return menu.MonthlyMenu{}, fmt.Errorf("scrape run %s: all meal fetches failed: %w", runID, errors.Join(fetchErrs...))
	}

	monthly := menu.NewMonthlyMenu(target.Year(), target.Month(), days)

	if r.Store != nil {
		if err := r.Store.SaveMonthly(monthly); err != nil {
			return menu.MonthlyMenu{}, fmt.Errorf("scrape run %s: persist: %w", runID, err)
		}
	}

	appLog.Info("scrape run complete", "run_id", runID, "day_count", len(days), "week_count", len(monthly.Weeks))
	return monthly, nil
}
