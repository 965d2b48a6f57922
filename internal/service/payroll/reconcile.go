package payroll

import (
	"context"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/duty"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/schedule"
)

// leaveFact is the per-date leave view fed into day resolution. When a split
// exists for the date it replaces the plain leave's type, nature and half
// fields wholesale.
type leaveFact struct {
	RecordID    string
	LeaveType   string
	LeaveNature leave.LeaveNature
	IsHalfDay   bool
	HalfDayType leave.HalfDayType
}

// dayFacts gathers everything known about one employee-date.
type dayFacts struct {
	Attendance *attendance.Attendance
	Leave      *leaveFact
	OD         *duty.OfficialDuty
	Roster     *schedule.RosterEntry
	OTHours    float64
	OTID       string
}

// resolveDayStatus resolves one date into per-half statuses. Precedence per
// half: leave > OD > presence > roster default. A half resolved to leave is
// never overwritten by OD or presence.
func resolveDayStatus(ctx context.Context, resolver leave.NatureResolver, f dayFacts) (first, second payroll.HalfDayStatus) {
	def := payroll.StatusAbsent
	if f.Roster != nil {
		switch f.Roster.Status {
		case schedule.ShiftHoliday:
			def = payroll.StatusHoliday
		case schedule.ShiftWeekOff:
			def = payroll.StatusWeekOff
		}
	}
	first = payroll.HalfDayStatus{Status: def}
	second = payroll.HalfDayStatus{Status: def}

	if f.Leave != nil {
		nature := resolver.ResolveFor(ctx, f.Leave.LeaveType, f.Leave.LeaveNature)
		half := payroll.HalfDayStatus{Status: payroll.StatusLeave, LeaveType: string(nature)}
		if f.Leave.IsHalfDay {
			if f.Leave.HalfDayType == leave.SecondHalf {
				second = half
			} else {
				first = half
			}
		} else {
			first = half
			second = half
		}
	}

	if f.OD != nil {
		leaveYields := f.Leave == nil || f.Leave.IsHalfDay
		if leaveYields {
			odHalf := payroll.HalfDayStatus{Status: payroll.StatusOD, IsOD: true}
			claimsFirst := !f.OD.IsHalfDay || f.OD.HalfDayType == leave.FirstHalf
			claimsSecond := !f.OD.IsHalfDay || f.OD.HalfDayType == leave.SecondHalf
			if claimsFirst && first.Status.Defaultish() {
				first = odHalf
			}
			if claimsSecond && second.Status.Defaultish() {
				second = odHalf
			}
		}
	}

	if f.Attendance != nil && f.Attendance.Status.ShowsPresence() {
		present := payroll.HalfDayStatus{Status: payroll.StatusPresent}
		if f.Attendance.Status == attendance.StatusHalfDay {
			// Half-day presence upgrades exactly one eligible half.
			if first.Status.Defaultish() {
				first = present
			} else if second.Status.Defaultish() {
				second = present
			}
		} else {
			if first.Status.Defaultish() {
				first = present
			}
			if second.Status.Defaultish() {
				second = present
			}
		}
	}

	return first, second
}

// buildDayRecord assembles the full DailyPayRecord for one date from its
// facts and the resolved halves.
func buildDayRecord(date string, f dayFacts, first, second payroll.HalfDayStatus) payroll.DailyPayRecord {
	rec := payroll.DailyPayRecord{
		Date:       date,
		FirstHalf:  first,
		SecondHalf: second,
		IsSplit:    first.Status != second.Status,
		OTHours:    f.OTHours,
		OTID:       f.OTID,
	}

	// The combined view exists only when the halves fully agree.
	if first == second {
		status := first.Status
		rec.Status = &status
		if first.LeaveType != "" {
			lt := first.LeaveType
			rec.LeaveType = &lt
		}
		isOD := first.IsOD
		rec.IsOD = &isOD
	}

	if f.Roster != nil {
		rec.ShiftID = f.Roster.ShiftID
		rec.ShiftName = f.Roster.ShiftName
		rec.PayableShift = f.Roster.PayableShift
	} else if f.Attendance != nil {
		// No roster entry: fall back to the shift the punch import attributed.
		rec.ShiftID = f.Attendance.ShiftID
		rec.ShiftName = f.Attendance.ShiftName
		rec.PayableShift = 1
	}

	if f.Attendance != nil {
		rec.AttendanceID = f.Attendance.ID
	}
	if f.Leave != nil {
		rec.LeaveID = f.Leave.RecordID
	}
	if f.OD != nil {
		rec.ODID = f.OD.ID
	}

	return rec
}

// computeTotals aggregates day records into month totals. Each half
// contributes half a day to its status bucket.
func computeTotals(days []payroll.DailyPayRecord) payroll.RegisterTotals {
	var t payroll.RegisterTotals
	t.CycleDays = float64(len(days))

	addHalf := func(h payroll.HalfDayStatus) {
		switch h.Status {
		case payroll.StatusPresent:
			t.PresentDays += 0.5
		case payroll.StatusLeave:
			t.LeaveDays += 0.5
		case payroll.StatusOD:
			t.ODDays += 0.5
		case payroll.StatusAbsent:
			t.AbsentDays += 0.5
		case payroll.StatusWeekOff:
			t.WeekOffDays += 0.5
		case payroll.StatusHoliday:
			t.HolidayDays += 0.5
		}
	}

	for _, d := range days {
		addHalf(d.FirstHalf)
		addHalf(d.SecondHalf)
		t.PayableShift += d.PayableShift
		t.OTHours += d.OTHours
	}
	return t
}
