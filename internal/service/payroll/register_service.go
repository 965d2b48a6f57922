package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/duty"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/daterange"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type RegisterServiceImpl struct {
	dates       *daterange.Service
	registers   payroll.PayRegisterRepository
	attendances attendance.AttendanceRepository
	importer    attendance.Importer
	leaves      leave.LeaveRequestRepository
	splits      leave.LeaveSplitRepository
	ods         duty.OfficialDutyRepository
	ots         duty.OvertimeRepository
	roster      schedule.RosterRepository
	resolver    leave.NatureResolver
	clk         clock.Clock
}

func NewRegisterService(
	dates *daterange.Service,
	registerRepo payroll.PayRegisterRepository,
	attendanceRepo attendance.AttendanceRepository,
	importer attendance.Importer,
	leaveRepo leave.LeaveRequestRepository,
	splitRepo leave.LeaveSplitRepository,
	odRepo duty.OfficialDutyRepository,
	otRepo duty.OvertimeRepository,
	rosterRepo schedule.RosterRepository,
	resolver leave.NatureResolver,
	clk clock.Clock,
) *RegisterServiceImpl {
	return &RegisterServiceImpl{
		dates:       dates,
		registers:   registerRepo,
		attendances: attendanceRepo,
		importer:    importer,
		leaves:      leaveRepo,
		splits:      splitRepo,
		ods:         odRepo,
		ots:         otRepo,
		roster:      rosterRepo,
		resolver:    resolver,
		clk:         clk,
	}
}

// sourceMaps are the per-date fact maps for one employee and payroll range,
// keyed by "2006-01-02".
type sourceMaps struct {
	attendances map[string]attendance.Attendance
	leaves      map[string]leaveFact
	ods         map[string]duty.OfficialDuty
	otHours     map[string]float64
	otIDs       map[string]string
	roster      map[string]schedule.RosterEntry
}

// fetchSources loads the five source collections concurrently. The fetches
// read disjoint collections, so ordering only matters between fetch and
// resolve.
func (s *RegisterServiceImpl) fetchSources(ctx context.Context, employeeID string, from, to time.Time) (sourceMaps, error) {
	var (
		atts        []attendance.Attendance
		leaveReqs   []leave.LeaveRequest
		leaveSplits []leave.LeaveSplit
		odList      []duty.OfficialDuty
		otList      []duty.Overtime
		rosterList  []schedule.RosterEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		atts, err = s.attendances.FindByEmployeeRange(gctx, employeeID, from, to)
		return err
	})
	g.Go(func() (err error) {
		leaveReqs, err = s.leaves.FindApprovedOverlapping(gctx, employeeID, from, to)
		return err
	})
	g.Go(func() (err error) {
		leaveSplits, err = s.splits.FindApprovedByEmployeeRange(gctx, employeeID, from, to)
		return err
	})
	g.Go(func() (err error) {
		odList, err = s.ods.FindApprovedOverlapping(gctx, employeeID, from, to)
		return err
	})
	g.Go(func() (err error) {
		otList, err = s.ots.FindApprovedByEmployeeRange(gctx, employeeID, from, to)
		return err
	})
	g.Go(func() (err error) {
		rosterList, err = s.roster.FindByEmployeeRange(gctx, employeeID, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return sourceMaps{}, fmt.Errorf("failed to fetch reconciliation sources: %w", err)
	}

	m := sourceMaps{
		attendances: make(map[string]attendance.Attendance, len(atts)),
		leaves:      make(map[string]leaveFact),
		ods:         make(map[string]duty.OfficialDuty),
		otHours:     make(map[string]float64, len(otList)),
		otIDs:       make(map[string]string, len(otList)),
		roster:      make(map[string]schedule.RosterEntry, len(rosterList)),
	}

	for _, a := range atts {
		m.attendances[a.Date.Format("2006-01-02")] = a
	}
	for _, r := range rosterList {
		m.roster[r.Date.Format("2006-01-02")] = r
	}

	for _, lr := range leaveReqs {
		for _, d := range daterange.DatesIn(lr.FromDate, lr.ToDate) {
			if d.Before(daterange.DayOf(from)) || d.After(daterange.DayOf(to)) {
				continue
			}
			m.leaves[d.Format("2006-01-02")] = leaveFact{
				RecordID:    lr.ID,
				LeaveType:   lr.LeaveType,
				LeaveNature: lr.LeaveNature,
				IsHalfDay:   lr.IsHalfDay,
				HalfDayType: lr.HalfDayType,
			}
		}
	}
	// Splits replace the plain leave fact for their date.
	for _, sp := range leaveSplits {
		m.leaves[sp.Date.Format("2006-01-02")] = leaveFact{
			RecordID:    sp.ID,
			LeaveType:   sp.LeaveType,
			LeaveNature: sp.LeaveNature,
			IsHalfDay:   sp.IsHalfDay,
			HalfDayType: sp.HalfDayType,
		}
	}

	for _, od := range odList {
		for _, d := range daterange.DatesIn(od.FromDate, od.ToDate) {
			if d.Before(daterange.DayOf(from)) || d.After(daterange.DayOf(to)) {
				continue
			}
			m.ods[d.Format("2006-01-02")] = od
		}
	}

	for _, ot := range otList {
		key := ot.Date.Format("2006-01-02")
		m.otHours[key] += ot.Hours
		if _, ok := m.otIDs[key]; !ok {
			m.otIDs[key] = ot.ID
		}
	}

	return m, nil
}

func (s *RegisterServiceImpl) factsFor(m sourceMaps, date string) dayFacts {
	var f dayFacts
	if a, ok := m.attendances[date]; ok {
		f.Attendance = &a
	}
	if lf, ok := m.leaves[date]; ok {
		f.Leave = &lf
	}
	if od, ok := m.ods[date]; ok {
		f.OD = &od
	}
	if r, ok := m.roster[date]; ok {
		f.Roster = &r
	}
	f.OTHours = m.otHours[date]
	f.OTID = m.otIDs[date]
	return f
}

// PopulatePayRegisterFromSources implements payroll.RegisterService. It is a
// pure read: the returned day list is the caller's to persist.
func (s *RegisterServiceImpl) PopulatePayRegisterFromSources(ctx context.Context, employeeID, empNo string, year, month int) ([]payroll.DailyPayRecord, error) {
	from, to, err := s.dates.PayrollRange(ctx, year, time.Month(month))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve payroll range: %w", err)
	}

	m, err := s.fetchSources(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}

	var days []payroll.DailyPayRecord
	for _, d := range daterange.DatesIn(from, to) {
		date := d.Format("2006-01-02")
		f := s.factsFor(m, date)
		first, second := resolveDayStatus(ctx, s.resolver, f)
		days = append(days, buildDayRecord(date, f, first, second))
	}
	return days, nil
}

// ManualSyncPayRegister implements payroll.RegisterService. The operator asked
// for a from-scratch rebuild, so manual edits are overwritten and a fresh
// attendance import runs first.
func (s *RegisterServiceImpl) ManualSyncPayRegister(ctx context.Context, employeeID, empNo string, year, month int) (payroll.PayRegister, error) {
	from, to, err := s.dates.PayrollRange(ctx, year, time.Month(month))
	if err != nil {
		return payroll.PayRegister{}, fmt.Errorf("failed to resolve payroll range: %w", err)
	}

	if err := s.importer.ImportRange(ctx, employeeID, from, to); err != nil {
		return payroll.PayRegister{}, fmt.Errorf("failed to import attendance: %w", err)
	}

	days, err := s.PopulatePayRegisterFromSources(ctx, employeeID, empNo, year, month)
	if err != nil {
		return payroll.PayRegister{}, err
	}
	totals := computeTotals(days)

	monthKey := fmt.Sprintf("%04d-%02d", year, month)
	register, err := s.registers.GetByEmployeeMonth(ctx, employeeID, monthKey)
	if errors.Is(err, payroll.ErrPayRegisterNotFound) {
		register, err = s.registers.Create(ctx, payroll.PayRegister{
			ID:         uuid.NewString(),
			EmployeeID: employeeID,
			EmpNo:      empNo,
			Month:      monthKey,
			Year:       year,
			CreatedAt:  s.clk.Now(),
			UpdatedAt:  s.clk.Now(),
		})
	}
	if err != nil {
		return payroll.PayRegister{}, fmt.Errorf("failed to get pay register: %w", err)
	}

	if err := s.registers.ReplaceDays(ctx, register.ID, days, totals, payroll.SourceManual); err != nil {
		return payroll.PayRegister{}, fmt.Errorf("failed to replace pay register days: %w", err)
	}

	register.Days = days
	register.Totals = totals
	return register, nil
}

// GetRegister implements payroll.RegisterService.
func (s *RegisterServiceImpl) GetRegister(ctx context.Context, employeeID, month string) (payroll.PayRegister, error) {
	return s.registers.GetByEmployeeMonth(ctx, employeeID, month)
}
