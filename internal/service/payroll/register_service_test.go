package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/duty"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/settings"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/daterange"
)

type fakeAttendanceRepo struct {
	attendances []attendance.Attendance
}

func (f *fakeAttendanceRepo) GetByEmployeeDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	for _, a := range f.attendances {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) FindByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range f.attendances {
		if a.EmployeeID == employeeID && !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) Upsert(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	f.attendances = append(f.attendances, att)
	return att, nil
}

type fakeLeaveRepo struct {
	requests []leave.LeaveRequest
}

func (f *fakeLeaveRepo) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	f.requests = append(f.requests, request)
	return request, nil
}

func (f *fakeLeaveRepo) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	for _, lr := range f.requests {
		if lr.ID == id {
			return lr, nil
		}
	}
	return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
}

func (f *fakeLeaveRepo) Update(ctx context.Context, request leave.LeaveRequest) error { return nil }

func (f *fakeLeaveRepo) UpdateStatus(ctx context.Context, id string, status leave.LeaveRequestStatus, actor string, reason *string) error {
	return nil
}

func (f *fakeLeaveRepo) FindApprovedUnsplitOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, lr := range f.requests {
		if lr.EmployeeID == employeeID && lr.Status == leave.LeaveRequestStatusApproved &&
			lr.SplitStatus == leave.SplitStatusNone && !lr.FromDate.After(to) && !lr.ToDate.Before(from) {
			out = append(out, lr)
		}
	}
	return out, nil
}

func (f *fakeLeaveRepo) FindApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, lr := range f.requests {
		if lr.EmployeeID == employeeID && lr.Status == leave.LeaveRequestStatusApproved &&
			!lr.FromDate.After(to) && !lr.ToDate.Before(from) {
			out = append(out, lr)
		}
	}
	return out, nil
}

type fakeSplitRepo struct {
	splits []leave.LeaveSplit
}

func (f *fakeSplitRepo) CreateBatch(ctx context.Context, splits []leave.LeaveSplit) error {
	f.splits = append(f.splits, splits...)
	return nil
}

func (f *fakeSplitRepo) GetByID(ctx context.Context, id string) (leave.LeaveSplit, error) {
	for _, sp := range f.splits {
		if sp.ID == id {
			return sp, nil
		}
	}
	return leave.LeaveSplit{}, leave.ErrLeaveSplitNotFound
}

func (f *fakeSplitRepo) GetByLeaveRequestID(ctx context.Context, leaveRequestID string) ([]leave.LeaveSplit, error) {
	return nil, nil
}

func (f *fakeSplitRepo) Update(ctx context.Context, split leave.LeaveSplit) error { return nil }

func (f *fakeSplitRepo) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeSplitRepo) DeleteByLeaveRequestID(ctx context.Context, leaveRequestID string) error {
	return nil
}

func (f *fakeSplitRepo) FindApprovedByEmployeeMonth(ctx context.Context, employeeID, month string) ([]leave.LeaveSplit, error) {
	return nil, nil
}

func (f *fakeSplitRepo) FindApprovedByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveSplit, error) {
	var out []leave.LeaveSplit
	for _, sp := range f.splits {
		if sp.EmployeeID == employeeID && sp.Status == leave.SplitApproved &&
			!sp.Date.Before(from) && !sp.Date.After(to) {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (f *fakeSplitRepo) SumApprovedDaysByTypeYear(ctx context.Context, employeeID, leaveType string, year int) (float64, error) {
	return 0, nil
}

type fakeODRepo struct {
	ods []duty.OfficialDuty
}

func (f *fakeODRepo) GetByID(ctx context.Context, id string) (duty.OfficialDuty, error) {
	for _, od := range f.ods {
		if od.ID == id {
			return od, nil
		}
	}
	return duty.OfficialDuty{}, duty.ErrOfficialDutyNotFound
}

func (f *fakeODRepo) UpdateStatus(ctx context.Context, id string, status duty.DutyStatus, actor string) error {
	return nil
}

func (f *fakeODRepo) FindApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]duty.OfficialDuty, error) {
	var out []duty.OfficialDuty
	for _, od := range f.ods {
		if od.EmployeeID == employeeID && od.Status == duty.DutyStatusApproved &&
			!od.FromDate.After(to) && !od.ToDate.Before(from) {
			out = append(out, od)
		}
	}
	return out, nil
}

type fakeOTRepo struct {
	ots []duty.Overtime
}

func (f *fakeOTRepo) GetByID(ctx context.Context, id string) (duty.Overtime, error) {
	for _, ot := range f.ots {
		if ot.ID == id {
			return ot, nil
		}
	}
	return duty.Overtime{}, duty.ErrOvertimeNotFound
}

func (f *fakeOTRepo) UpdateStatus(ctx context.Context, id string, status duty.DutyStatus, actor string) error {
	return nil
}

func (f *fakeOTRepo) FindApprovedByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]duty.Overtime, error) {
	var out []duty.Overtime
	for _, ot := range f.ots {
		if ot.EmployeeID == employeeID && ot.Status == duty.DutyStatusApproved &&
			!ot.Date.Before(from) && !ot.Date.After(to) {
			out = append(out, ot)
		}
	}
	return out, nil
}

type fakeRosterRepo struct {
	entries []schedule.RosterEntry
}

func (f *fakeRosterRepo) FindByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]schedule.RosterEntry, error) {
	var out []schedule.RosterEntry
	for _, r := range f.entries {
		if r.EmployeeID == employeeID && !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeRegisterRepo struct {
	registers  map[string]payroll.PayRegister // keyed by employeeID|month
	lastSource payroll.SyncSource
}

func newFakeRegisterRepo() *fakeRegisterRepo {
	return &fakeRegisterRepo{registers: make(map[string]payroll.PayRegister)}
}

func (f *fakeRegisterRepo) key(employeeID, month string) string { return employeeID + "|" + month }

func (f *fakeRegisterRepo) Create(ctx context.Context, register payroll.PayRegister) (payroll.PayRegister, error) {
	k := f.key(register.EmployeeID, register.Month)
	if existing, ok := f.registers[k]; ok {
		return existing, nil
	}
	f.registers[k] = register
	return register, nil
}

func (f *fakeRegisterRepo) GetByEmployeeMonth(ctx context.Context, employeeID, month string) (payroll.PayRegister, error) {
	if r, ok := f.registers[f.key(employeeID, month)]; ok {
		return r, nil
	}
	return payroll.PayRegister{}, payroll.ErrPayRegisterNotFound
}

func (f *fakeRegisterRepo) ReplaceDays(ctx context.Context, id string, days payroll.DayRecords, totals payroll.RegisterTotals, source payroll.SyncSource) error {
	for k, r := range f.registers {
		if r.ID == id {
			r.Days = days
			r.Totals = totals
			f.registers[k] = r
			f.lastSource = source
			return nil
		}
	}
	return payroll.ErrPayRegisterNotFound
}

func (f *fakeRegisterRepo) ListEmployeeIDsWithMonth(ctx context.Context, month string) ([]string, error) {
	var out []string
	for _, r := range f.registers {
		if r.Month == month {
			out = append(out, r.EmployeeID)
		}
	}
	return out, nil
}

type fakeImporter struct {
	calls int
}

func (f *fakeImporter) ImportRange(ctx context.Context, employeeID string, from, to time.Time) error {
	f.calls++
	return nil
}

type stubSettingRepo struct {
	values map[string]string
}

func (s *stubSettingRepo) Get(ctx context.Context, key string) (settings.Setting, error) {
	if v, ok := s.values[key]; ok {
		return settings.Setting{Key: key, Value: v}, nil
	}
	return settings.Setting{}, settings.ErrSettingNotFound
}

func (s *stubSettingRepo) Set(ctx context.Context, key, value string) error { return nil }

type registerFixture struct {
	svc       *RegisterServiceImpl
	atts      *fakeAttendanceRepo
	leaves    *fakeLeaveRepo
	splits    *fakeSplitRepo
	ods       *fakeODRepo
	ots       *fakeOTRepo
	roster    *fakeRosterRepo
	registers *fakeRegisterRepo
	importer  *fakeImporter
	dates     *daterange.Service
	clk       *clock.Fixed
}

func newRegisterFixture() *registerFixture {
	clk := &clock.Fixed{Instant: time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)}
	fx := &registerFixture{
		atts:      &fakeAttendanceRepo{},
		leaves:    &fakeLeaveRepo{},
		splits:    &fakeSplitRepo{},
		ods:       &fakeODRepo{},
		ots:       &fakeOTRepo{},
		roster:    &fakeRosterRepo{},
		registers: newFakeRegisterRepo(),
		importer:  &fakeImporter{},
		dates:     daterange.NewService(&stubSettingRepo{}, clk, time.Minute),
		clk:       clk,
	}
	fx.svc = NewRegisterService(
		fx.dates, fx.registers, fx.atts, fx.importer,
		fx.leaves, fx.splits, fx.ods, fx.ots, fx.roster,
		testResolver(), clk,
	)
	return fx
}

func june(day int) time.Time {
	return time.Date(2024, time.June, day, 0, 0, 0, 0, time.UTC)
}

// seedWorkingJune rosters every June day as working.
func (fx *registerFixture) seedWorkingJune() {
	for d := 1; d <= 30; d++ {
		fx.roster.entries = append(fx.roster.entries, schedule.RosterEntry{
			EmployeeID: "emp-1", Date: june(d),
			ShiftID: "shift-g", ShiftName: "General", Status: schedule.ShiftWorking, PayableShift: 1,
		})
	}
}

func dayByDate(t *testing.T, days []payroll.DailyPayRecord, date string) payroll.DailyPayRecord {
	t.Helper()
	for _, d := range days {
		if d.Date == date {
			return d
		}
	}
	t.Fatalf("no day record for %s", date)
	return payroll.DailyPayRecord{}
}

func TestPopulateCoversWholePayrollRange(t *testing.T) {
	fx := newRegisterFixture()
	fx.seedWorkingJune()

	days, err := fx.svc.PopulatePayRegisterFromSources(context.Background(), "emp-1", "E001", 2024, 6)
	require.NoError(t, err)
	require.Len(t, days, 30)
	require.Equal(t, "2024-06-01", days[0].Date)
	require.Equal(t, "2024-06-30", days[29].Date)

	// No attendance anywhere: every rostered working day resolves absent.
	require.Equal(t, payroll.StatusAbsent, days[0].FirstHalf.Status)
}

func TestPopulateMergesAllSources(t *testing.T) {
	fx := newRegisterFixture()
	fx.seedWorkingJune()
	ctx := context.Background()

	fx.atts.attendances = append(fx.atts.attendances, attendance.Attendance{
		ID: "att-1", EmployeeID: "emp-1", Date: june(3), Status: attendance.StatusPresent,
	})
	fx.leaves.requests = append(fx.leaves.requests, leave.LeaveRequest{
		ID: "lr-1", EmployeeID: "emp-1", FromDate: june(10), ToDate: june(11),
		LeaveType: "SL", Status: leave.LeaveRequestStatusApproved,
	})
	fx.ods.ods = append(fx.ods.ods, duty.OfficialDuty{
		ID: "od-1", EmployeeID: "emp-1", FromDate: june(20), ToDate: june(20),
		Status: duty.DutyStatusApproved,
	})
	fx.ots.ots = append(fx.ots.ots, duty.Overtime{
		ID: "ot-1", EmployeeID: "emp-1", Date: june(3), Hours: 1.5, Status: duty.DutyStatusApproved,
	}, duty.Overtime{
		ID: "ot-2", EmployeeID: "emp-1", Date: june(3), Hours: 2, Status: duty.DutyStatusApproved,
	})

	days, err := fx.svc.PopulatePayRegisterFromSources(ctx, "emp-1", "E001", 2024, 6)
	require.NoError(t, err)

	present := dayByDate(t, days, "2024-06-03")
	require.Equal(t, payroll.StatusPresent, present.FirstHalf.Status)
	require.Equal(t, 3.5, present.OTHours, "overtime hours on the same date accumulate")
	require.Equal(t, "ot-1", present.OTID)

	onLeave := dayByDate(t, days, "2024-06-10")
	require.Equal(t, payroll.StatusLeave, onLeave.FirstHalf.Status)
	require.Equal(t, "lr-1", onLeave.LeaveID)

	onOD := dayByDate(t, days, "2024-06-20")
	require.Equal(t, payroll.StatusOD, onOD.FirstHalf.Status)
	require.Equal(t, "od-1", onOD.ODID)
}

func TestPopulateSplitOverridesPlainLeave(t *testing.T) {
	fx := newRegisterFixture()
	fx.seedWorkingJune()

	fx.leaves.requests = append(fx.leaves.requests, leave.LeaveRequest{
		ID: "lr-1", EmployeeID: "emp-1", FromDate: june(10), ToDate: june(12),
		LeaveType: "SL", Status: leave.LeaveRequestStatusApproved,
	})
	fx.splits.splits = append(fx.splits.splits, leave.LeaveSplit{
		ID: "sp-1", LeaveRequestID: "lr-1", EmployeeID: "emp-1",
		Date: june(11), Month: "2024-06", LeaveType: "LOP", LeaveNature: leave.NatureLOP,
		NumberOfDays: 1, Status: leave.SplitApproved,
	})

	days, err := fx.svc.PopulatePayRegisterFromSources(context.Background(), "emp-1", "E001", 2024, 6)
	require.NoError(t, err)

	plain := dayByDate(t, days, "2024-06-10")
	require.Equal(t, "paid", plain.FirstHalf.LeaveType)
	require.Equal(t, "lr-1", plain.LeaveID)

	split := dayByDate(t, days, "2024-06-11")
	require.Equal(t, "lop", split.FirstHalf.LeaveType, "the split's nature replaces the parent's")
	require.Equal(t, "sp-1", split.LeaveID, "the day references the split, not the parent")
}

func TestPopulateLeaveClippedToRange(t *testing.T) {
	fx := newRegisterFixture()
	fx.seedWorkingJune()

	// Leave spilling out of June on both sides.
	fx.leaves.requests = append(fx.leaves.requests, leave.LeaveRequest{
		ID: "lr-1", EmployeeID: "emp-1",
		FromDate: time.Date(2024, time.May, 30, 0, 0, 0, 0, time.UTC),
		ToDate:   june(2),
		LeaveType: "SL", Status: leave.LeaveRequestStatusApproved,
	})

	days, err := fx.svc.PopulatePayRegisterFromSources(context.Background(), "emp-1", "E001", 2024, 6)
	require.NoError(t, err)
	require.Len(t, days, 30)
	require.Equal(t, payroll.StatusLeave, dayByDate(t, days, "2024-06-01").FirstHalf.Status)
	require.Equal(t, payroll.StatusLeave, dayByDate(t, days, "2024-06-02").FirstHalf.Status)
	require.Equal(t, payroll.StatusAbsent, dayByDate(t, days, "2024-06-03").FirstHalf.Status)
}

func TestManualSyncCreatesRegisterAndImports(t *testing.T) {
	fx := newRegisterFixture()
	fx.seedWorkingJune()
	ctx := context.Background()

	register, err := fx.svc.ManualSyncPayRegister(ctx, "emp-1", "E001", 2024, 6)
	require.NoError(t, err)
	require.Equal(t, "2024-06", register.Month)
	require.Len(t, register.Days, 30)
	require.Equal(t, 30.0, register.Totals.CycleDays)
	require.Equal(t, 1, fx.importer.calls, "a manual sync re-imports attendance first")
	require.Equal(t, payroll.SourceManual, fx.registers.lastSource)

	stored, err := fx.registers.GetByEmployeeMonth(ctx, "emp-1", "2024-06")
	require.NoError(t, err)
	require.Len(t, stored.Days, 30)
}

func TestManualSyncReusesExistingRegister(t *testing.T) {
	fx := newRegisterFixture()
	fx.seedWorkingJune()
	ctx := context.Background()

	first, err := fx.svc.ManualSyncPayRegister(ctx, "emp-1", "E001", 2024, 6)
	require.NoError(t, err)
	second, err := fx.svc.ManualSyncPayRegister(ctx, "emp-1", "E001", 2024, 6)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, fx.registers.registers, 1)
}
