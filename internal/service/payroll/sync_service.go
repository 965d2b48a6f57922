package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/duty"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/daterange"
)

type SyncServiceImpl struct {
	dates     *daterange.Service
	registers payroll.PayRegisterRepository
	register  payroll.RegisterService
	ots       duty.OvertimeRepository
}

func NewSyncService(
	dates *daterange.Service,
	registerRepo payroll.PayRegisterRepository,
	registerService payroll.RegisterService,
	otRepo duty.OvertimeRepository,
) *SyncServiceImpl {
	return &SyncServiceImpl{
		dates:     dates,
		registers: registerRepo,
		register:  registerService,
		ots:       otRepo,
	}
}

// candidateMonths returns every "YYYY-MM" from one month before the span to
// one month after it. Deliberately over-inclusive: an offset payroll cycle
// can bucket a changed date into an adjacent calendar month, and recomputing
// an unaffected month is wasted work, not wrong data.
func candidateMonths(from, to time.Time) []string {
	first := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	last := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	var months []string
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		months = append(months, daterange.MonthKey(m))
	}
	return months
}

// SyncPayRegisterFromLeave implements payroll.SyncService.
func (s *SyncServiceImpl) SyncPayRegisterFromLeave(ctx context.Context, ev payroll.ChangeEvent) payroll.SyncReport {
	return s.syncSpan(ctx, ev, payroll.SourceLeaves)
}

// SyncPayRegisterFromOD implements payroll.SyncService.
func (s *SyncServiceImpl) SyncPayRegisterFromOD(ctx context.Context, ev payroll.ChangeEvent) payroll.SyncReport {
	return s.syncSpan(ctx, ev, payroll.SourceODs)
}

func (s *SyncServiceImpl) syncSpan(ctx context.Context, ev payroll.ChangeEvent, source payroll.SyncSource) payroll.SyncReport {
	report := payroll.SyncReport{EmployeeID: ev.EmployeeID, Source: source}
	for _, month := range candidateMonths(ev.FromDate, ev.ToDate) {
		res := s.syncMonth(ctx, ev, month, source)
		if res.Outcome == payroll.SyncFailed {
			slog.Error("pay register month sync failed",
				"employee_id", ev.EmployeeID, "month", month, "source", source, "error", res.Err)
		}
		report.Results = append(report.Results, res)
	}
	return report
}

// syncMonth reconciles one candidate month for a change event. Failures are
// reported, never propagated, so one bad month cannot abort its siblings.
func (s *SyncServiceImpl) syncMonth(ctx context.Context, ev payroll.ChangeEvent, month string, source payroll.SyncSource) payroll.MonthSyncResult {
	register, err := s.registers.GetByEmployeeMonth(ctx, ev.EmployeeID, month)
	if errors.Is(err, payroll.ErrPayRegisterNotFound) {
		return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncSkippedNoRecord,
			Reason: "no pay register materialized yet"}
	}
	if err != nil {
		return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncFailed,
			Reason: "failed to load pay register", Err: err}
	}

	year, mon, err := daterange.ParseMonthKey(month)
	if err != nil {
		return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncFailed,
			Reason: "invalid month key", Err: err}
	}
	from, to, err := s.dates.PayrollRange(ctx, year, mon)
	if err != nil {
		return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncFailed,
			Reason: "failed to resolve payroll range", Err: err}
	}

	lo := daterange.DayOf(ev.FromDate)
	if lo.Before(from) {
		lo = from
	}
	hi := daterange.DayOf(ev.ToDate)
	if hi.After(to) {
		hi = to
	}
	if lo.After(hi) {
		return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncSkippedOutOfSpan,
			Reason: "changed span does not touch this payroll range"}
	}

	for _, d := range daterange.DatesIn(lo, hi) {
		date := d.Format("2006-01-02")
		if register.IsManuallyEdited(date) {
			return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncSkippedManual,
				Reason: fmt.Sprintf("date %s is manually edited", date)}
		}
	}

	days, err := s.register.PopulatePayRegisterFromSources(ctx, ev.EmployeeID, ev.EmpNo, year, int(mon))
	if err != nil {
		return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncFailed,
			Reason: "failed to recompute day records", Err: err}
	}

	if err := s.registers.ReplaceDays(ctx, register.ID, days, computeTotals(days), source); err != nil {
		return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncFailed,
			Reason: "failed to persist day records", Err: err}
	}

	return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncDone}
}

// SyncPayRegisterFromOT implements payroll.SyncService. OT never changes a
// day's status, so months with an existing day record get a narrow patch of
// the OT fields; anything else falls back to a full month recompute.
func (s *SyncServiceImpl) SyncPayRegisterFromOT(ctx context.Context, ev payroll.ChangeEvent) payroll.SyncReport {
	report := payroll.SyncReport{EmployeeID: ev.EmployeeID, Source: payroll.SourceOT}
	for _, month := range candidateMonths(ev.FromDate, ev.ToDate) {
		res := s.patchMonthOT(ctx, ev, month)
		if res.Outcome == payroll.SyncFailed {
			slog.Error("pay register ot patch failed",
				"employee_id", ev.EmployeeID, "month", month, "error", res.Err)
		}
		report.Results = append(report.Results, res)
	}
	return report
}

func (s *SyncServiceImpl) patchMonthOT(ctx context.Context, ev payroll.ChangeEvent, month string) payroll.MonthSyncResult {
	register, err := s.registers.GetByEmployeeMonth(ctx, ev.EmployeeID, month)
	if errors.Is(err, payroll.ErrPayRegisterNotFound) {
		return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncSkippedNoRecord,
			Reason: "no pay register materialized yet"}
	}
	if err != nil {
		return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncFailed,
			Reason: "failed to load pay register", Err: err}
	}

	date := daterange.DayOf(ev.FromDate)
	dateKey := date.Format("2006-01-02")

	if register.IsManuallyEdited(dateKey) {
		return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncSkippedManual,
			Reason: fmt.Sprintf("date %s is manually edited", dateKey)}
	}

	idx := -1
	for i, d := range register.Days {
		if d.Date == dateKey {
			idx = i
			break
		}
	}
	if idx < 0 {
		if _, ok := register.DayFor(dateKey); !ok && len(register.Days) > 0 {
			return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncSkippedOutOfSpan,
				Reason: "date outside this payroll range"}
		}
		// Register never populated: do the full recompute instead.
		return s.syncMonth(ctx, ev, month, payroll.SourceOT)
	}

	ots, err := s.ots.FindApprovedByEmployeeRange(ctx, ev.EmployeeID, date, date)
	if err != nil {
		return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncFailed,
			Reason: "failed to fetch overtime", Err: err}
	}

	var hours float64
	var otID string
	for _, ot := range ots {
		hours += ot.Hours
		if otID == "" {
			otID = ot.ID
		}
	}

	days := make(payroll.DayRecords, len(register.Days))
	copy(days, register.Days)
	days[idx].OTHours = hours
	days[idx].OTID = otID

	if err := s.registers.ReplaceDays(ctx, register.ID, days, computeTotals(days), payroll.SourceOT); err != nil {
		return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncFailed,
			Reason: "failed to persist day records", Err: err}
	}

	return payroll.MonthSyncResult{Month: month, Outcome: payroll.SyncDone}
}

// ResyncMonth implements payroll.SyncService. The periodic pass recomputes a
// whole payroll month but keeps each manually edited date's stored record.
func (s *SyncServiceImpl) ResyncMonth(ctx context.Context, employeeID, empNo string, year, month int) payroll.MonthSyncResult {
	monthKey := fmt.Sprintf("%04d-%02d", year, month)

	register, err := s.registers.GetByEmployeeMonth(ctx, employeeID, monthKey)
	if errors.Is(err, payroll.ErrPayRegisterNotFound) {
		return payroll.MonthSyncResult{Month: monthKey, Outcome: payroll.SyncSkippedNoRecord,
			Reason: "no pay register materialized yet"}
	}
	if err != nil {
		return payroll.MonthSyncResult{Month: monthKey, Outcome: payroll.SyncFailed,
			Reason: "failed to load pay register", Err: err}
	}

	days, err := s.register.PopulatePayRegisterFromSources(ctx, employeeID, empNo, year, month)
	if err != nil {
		return payroll.MonthSyncResult{Month: monthKey, Outcome: payroll.SyncFailed,
			Reason: "failed to recompute day records", Err: err}
	}

	for i, d := range days {
		if register.IsManuallyEdited(d.Date) {
			if existing, ok := register.DayFor(d.Date); ok {
				days[i] = existing
			}
		}
	}

	if err := s.registers.ReplaceDays(ctx, register.ID, days, computeTotals(days), payroll.SourceManual); err != nil {
		return payroll.MonthSyncResult{Month: monthKey, Outcome: payroll.SyncFailed,
			Reason: "failed to persist day records", Err: err}
	}

	return payroll.MonthSyncResult{Month: monthKey, Outcome: payroll.SyncDone}
}
