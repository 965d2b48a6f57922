// Package daterange computes payroll-cycle date ranges from the configurable
// cycle start/end day. The cycle settings are read through a short-lived cache
// so bulk reconciliation does not hammer the settings table.
package daterange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/settings"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/clock"
)

const (
	defaultStartDay = 1
	defaultEndDay   = 31
)

// CycleConfig is the payroll cycle window configuration.
type CycleConfig struct {
	StartDay int
	EndDay   int
}

// Validate bounds the cycle so a payroll month never reaches further than the
// previous calendar month on the left or the current one on the right. This
// keeps the resync guard's previous/current/next candidate-month heuristic
// exhaustive.
func (c CycleConfig) Validate() error {
	if c.StartDay < 1 || c.StartDay > 28 {
		return fmt.Errorf("%w: start day %d outside 1..28", payroll.ErrInvalidCycleConfig, c.StartDay)
	}
	if c.EndDay < 1 || c.EndDay > 31 {
		return fmt.Errorf("%w: end day %d outside 1..31", payroll.ErrInvalidCycleConfig, c.EndDay)
	}
	if c.StartDay > 1 && c.EndDay >= c.StartDay {
		return fmt.Errorf("%w: end day %d must precede start day %d for an offset cycle",
			payroll.ErrInvalidCycleConfig, c.EndDay, c.StartDay)
	}
	return nil
}

// Service resolves payroll date ranges for (year, month) pairs.
type Service struct {
	settings settings.SettingRepository
	cache    *configCache
}

func NewService(settingRepo settings.SettingRepository, clk clock.Clock, ttl time.Duration) *Service {
	return &Service{
		settings: settingRepo,
		cache:    newConfigCache(clk, ttl),
	}
}

// Config returns the active cycle configuration, from cache when fresh.
// Missing or malformed settings fall back to the calendar-month defaults.
func (s *Service) Config(ctx context.Context) (CycleConfig, error) {
	if cfg, ok := s.cache.get(); ok {
		return cfg, nil
	}

	cfg := CycleConfig{StartDay: defaultStartDay, EndDay: defaultEndDay}
	if v, err := s.settings.Get(ctx, settings.KeyPayrollCycleStartDay); err == nil {
		if n, err := strconv.Atoi(v.Value); err == nil {
			cfg.StartDay = n
		}
	}
	if v, err := s.settings.Get(ctx, settings.KeyPayrollCycleEndDay); err == nil {
		if n, err := strconv.Atoi(v.Value); err == nil {
			cfg.EndDay = n
		}
	}

	if err := cfg.Validate(); err != nil {
		return CycleConfig{}, err
	}

	s.cache.put(cfg)
	return cfg, nil
}

// Invalidate drops the cached configuration. Called on settings change.
func (s *Service) Invalidate() {
	s.cache.invalidate()
}

// PayrollRange returns the inclusive payroll date range for (year, month).
// With the default 1/31 configuration this is the calendar month; with an
// offset cycle (e.g. 26/25) the range starts in the previous calendar month.
func (s *Service) PayrollRange(ctx context.Context, year int, month time.Month) (time.Time, time.Time, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	var start time.Time
	if cfg.StartDay == 1 {
		start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	} else {
		start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, cfg.StartDay-1)
	}

	endDay := cfg.EndDay
	if last := lastDayOfMonth(year, month); endDay > last {
		endDay = last
	}
	end := time.Date(year, month, endDay, 0, 0, 0, 0, time.UTC)

	return start, end, nil
}

// DatesIn enumerates every calendar date in [from, to], inclusive.
func DatesIn(from, to time.Time) []time.Time {
	var dates []time.Time
	for d := DayOf(from); !d.After(DayOf(to)); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// DayOf truncates t to midnight UTC.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthKey formats t as "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseMonthKey parses a "YYYY-MM" month bucket.
func ParseMonthKey(month string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, 0, err
	}
	return t.Year(), t.Month(), nil
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}
