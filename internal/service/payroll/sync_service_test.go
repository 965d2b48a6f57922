package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/duty"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
)

type syncFixture struct {
	*registerFixture
	sync *SyncServiceImpl
}

func newSyncFixture() *syncFixture {
	rf := newRegisterFixture()
	return &syncFixture{
		registerFixture: rf,
		sync:            NewSyncService(rf.dates, rf.registers, rf.svc, rf.ots),
	}
}

// seedRegister materializes a populated June 2024 register.
func (fx *syncFixture) seedRegister(t *testing.T) payroll.PayRegister {
	t.Helper()
	fx.seedWorkingJune()
	register, err := fx.svc.ManualSyncPayRegister(context.Background(), "emp-1", "E001", 2024, 6)
	require.NoError(t, err)
	return register
}

func (fx *syncFixture) markEdited(t *testing.T, employeeID, month, date string) {
	t.Helper()
	k := fx.registers.key(employeeID, month)
	r, ok := fx.registers.registers[k]
	require.True(t, ok)
	r.EditHistory = append(r.EditHistory, payroll.ManualEdit{
		Date: date, EditedBy: "payroll-admin", EditedAt: fx.clk.Now(),
	})
	fx.registers.registers[k] = r
}

func outcomeFor(t *testing.T, report payroll.SyncReport, month string) payroll.MonthSyncResult {
	t.Helper()
	for _, res := range report.Results {
		if res.Month == month {
			return res
		}
	}
	t.Fatalf("no result for month %s", month)
	return payroll.MonthSyncResult{}
}

func TestCandidateMonthsWindow(t *testing.T) {
	months := candidateMonths(june(10), june(12))
	require.Equal(t, []string{"2024-05", "2024-06", "2024-07"}, months)

	// A span crossing a month boundary widens the window on both sides.
	months = candidateMonths(june(28), time.Date(2024, time.July, 2, 0, 0, 0, 0, time.UTC))
	require.Equal(t, []string{"2024-05", "2024-06", "2024-07", "2024-08"}, months)

	months = candidateMonths(time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC))
	require.Equal(t, []string{"2023-12", "2024-01", "2024-02"}, months)
}

func TestSyncFromLeaveRecomputesMaterializedMonth(t *testing.T) {
	fx := newSyncFixture()
	fx.seedRegister(t)
	ctx := context.Background()

	report := fx.sync.SyncPayRegisterFromLeave(ctx, payroll.ChangeEvent{
		EmployeeID: "emp-1", EmpNo: "E001", FromDate: june(10), ToDate: june(12), RecordID: "lr-1",
	})

	require.Equal(t, payroll.SourceLeaves, report.Source)
	require.Equal(t, payroll.SyncDone, outcomeFor(t, report, "2024-06").Outcome)
	require.Equal(t, payroll.SyncSkippedNoRecord, outcomeFor(t, report, "2024-05").Outcome)
	require.Equal(t, payroll.SyncSkippedNoRecord, outcomeFor(t, report, "2024-07").Outcome)
	require.Empty(t, report.Failed())
	require.Equal(t, payroll.SourceLeaves, fx.registers.lastSource)
}

func TestSyncSkipsManuallyEditedDateInSpan(t *testing.T) {
	fx := newSyncFixture()
	register := fx.seedRegister(t)
	fx.markEdited(t, "emp-1", "2024-06", "2024-06-11")
	ctx := context.Background()

	// A leave lands on June 10-12 after the edit; the month must not be touched.
	fx.leaves.requests = append(fx.leaves.requests, leaveOn("lr-1", june(10), june(12)))

	report := fx.sync.SyncPayRegisterFromLeave(ctx, payroll.ChangeEvent{
		EmployeeID: "emp-1", EmpNo: "E001", FromDate: june(10), ToDate: june(12), RecordID: "lr-1",
	})

	res := outcomeFor(t, report, "2024-06")
	require.Equal(t, payroll.SyncSkippedManual, res.Outcome)
	require.Contains(t, res.Reason, "2024-06-11")

	stored, err := fx.registers.GetByEmployeeMonth(ctx, "emp-1", "2024-06")
	require.NoError(t, err)
	require.Equal(t, register.Days, stored.Days, "a skipped month keeps its stored days")
}

func TestSyncProceedsWhenEditIsOutsideChangedSpan(t *testing.T) {
	fx := newSyncFixture()
	fx.seedRegister(t)
	fx.markEdited(t, "emp-1", "2024-06", "2024-06-25")
	ctx := context.Background()

	fx.leaves.requests = append(fx.leaves.requests, leaveOn("lr-1", june(10), june(12)))

	report := fx.sync.SyncPayRegisterFromLeave(ctx, payroll.ChangeEvent{
		EmployeeID: "emp-1", EmpNo: "E001", FromDate: june(10), ToDate: june(12), RecordID: "lr-1",
	})
	require.Equal(t, payroll.SyncDone, outcomeFor(t, report, "2024-06").Outcome)

	stored, err := fx.registers.GetByEmployeeMonth(ctx, "emp-1", "2024-06")
	require.NoError(t, err)
	day := dayByDate(t, stored.Days, "2024-06-10")
	require.Equal(t, payroll.StatusLeave, day.FirstHalf.Status)
}

func TestSyncOTPatchesExistingDay(t *testing.T) {
	fx := newSyncFixture()
	fx.seedRegister(t)
	ctx := context.Background()

	fx.ots.ots = append(fx.ots.ots, duty.Overtime{
		ID: "ot-1", EmployeeID: "emp-1", Date: june(10), Hours: 3, Status: duty.DutyStatusApproved,
	})

	report := fx.sync.SyncPayRegisterFromOT(ctx, payroll.ChangeEvent{
		EmployeeID: "emp-1", EmpNo: "E001", FromDate: june(10), ToDate: june(10), RecordID: "ot-1",
	})
	require.Equal(t, payroll.SyncDone, outcomeFor(t, report, "2024-06").Outcome)

	stored, err := fx.registers.GetByEmployeeMonth(ctx, "emp-1", "2024-06")
	require.NoError(t, err)
	day := dayByDate(t, stored.Days, "2024-06-10")
	require.Equal(t, 3.0, day.OTHours)
	require.Equal(t, "ot-1", day.OTID)
	require.Equal(t, payroll.StatusAbsent, day.FirstHalf.Status, "OT never changes the day status")
	require.Equal(t, 3.0, stored.Totals.OTHours)
	require.Equal(t, payroll.SourceOT, fx.registers.lastSource)
}

func TestSyncOTSkipsEditedDate(t *testing.T) {
	fx := newSyncFixture()
	fx.seedRegister(t)
	fx.markEdited(t, "emp-1", "2024-06", "2024-06-10")

	report := fx.sync.SyncPayRegisterFromOT(context.Background(), payroll.ChangeEvent{
		EmployeeID: "emp-1", EmpNo: "E001", FromDate: june(10), ToDate: june(10), RecordID: "ot-1",
	})
	require.Equal(t, payroll.SyncSkippedManual, outcomeFor(t, report, "2024-06").Outcome)
}

func TestSyncOTFallsBackToFullRecomputeWhenUnpopulated(t *testing.T) {
	fx := newSyncFixture()
	fx.seedWorkingJune()
	ctx := context.Background()

	// Register row exists but was never populated with day records.
	_, err := fx.registers.Create(ctx, payroll.PayRegister{
		ID: "reg-1", EmployeeID: "emp-1", EmpNo: "E001", Month: "2024-06", Year: 2024,
	})
	require.NoError(t, err)

	fx.ots.ots = append(fx.ots.ots, duty.Overtime{
		ID: "ot-1", EmployeeID: "emp-1", Date: june(10), Hours: 2, Status: duty.DutyStatusApproved,
	})

	report := fx.sync.SyncPayRegisterFromOT(ctx, payroll.ChangeEvent{
		EmployeeID: "emp-1", EmpNo: "E001", FromDate: june(10), ToDate: june(10), RecordID: "ot-1",
	})
	require.Equal(t, payroll.SyncDone, outcomeFor(t, report, "2024-06").Outcome)

	stored, err := fx.registers.GetByEmployeeMonth(ctx, "emp-1", "2024-06")
	require.NoError(t, err)
	require.Len(t, stored.Days, 30, "the fallback recomputes the whole month")
	require.Equal(t, 2.0, dayByDate(t, stored.Days, "2024-06-10").OTHours)
}

func TestResyncMonthPreservesEditedDates(t *testing.T) {
	fx := newSyncFixture()
	fx.seedRegister(t)
	ctx := context.Background()

	// Hand-correct June 10 to present, then approve a leave over June 10-11.
	k := fx.registers.key("emp-1", "2024-06")
	r := fx.registers.registers[k]
	for i := range r.Days {
		if r.Days[i].Date == "2024-06-10" {
			status := payroll.StatusPresent
			r.Days[i].FirstHalf = payroll.HalfDayStatus{Status: payroll.StatusPresent}
			r.Days[i].SecondHalf = payroll.HalfDayStatus{Status: payroll.StatusPresent}
			r.Days[i].Status = &status
		}
	}
	r.EditHistory = append(r.EditHistory, payroll.ManualEdit{
		Date: "2024-06-10", EditedBy: "payroll-admin", EditedAt: fx.clk.Now(),
	})
	fx.registers.registers[k] = r

	fx.leaves.requests = append(fx.leaves.requests, leaveOn("lr-1", june(10), june(11)))

	res := fx.sync.ResyncMonth(ctx, "emp-1", "E001", 2024, 6)
	require.Equal(t, payroll.SyncDone, res.Outcome)

	stored, err := fx.registers.GetByEmployeeMonth(ctx, "emp-1", "2024-06")
	require.NoError(t, err)
	edited := dayByDate(t, stored.Days, "2024-06-10")
	require.Equal(t, payroll.StatusPresent, edited.FirstHalf.Status, "the edited date keeps its stored record")
	recomputed := dayByDate(t, stored.Days, "2024-06-11")
	require.Equal(t, payroll.StatusLeave, recomputed.FirstHalf.Status, "unedited dates pick up the new leave")
	require.Equal(t, payroll.SourceManual, fx.registers.lastSource)
}

func TestResyncMonthWithoutRegisterSkips(t *testing.T) {
	fx := newSyncFixture()
	res := fx.sync.ResyncMonth(context.Background(), "emp-1", "E001", 2024, 6)
	require.Equal(t, payroll.SyncSkippedNoRecord, res.Outcome)
}

// leaveOn builds an approved full-day leave request for the range.
func leaveOn(id string, from, to time.Time) leave.LeaveRequest {
	return leave.LeaveRequest{
		ID: id, EmployeeID: "emp-1", EmpNo: "E001",
		FromDate: from, ToDate: to,
		LeaveType: "SL", Status: leave.LeaveRequestStatusApproved,
	}
}
