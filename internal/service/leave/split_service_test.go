package leave

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
)

// passTx runs the function directly; the fakes have no transaction notion.
type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type splitFixture struct {
	monthlyFixture
	split      *SplitServiceImpl
	leaveTypes *stubLeaveTypeRepo
}

func newSplitFixture() splitFixture {
	mf := newMonthlyFixture()
	leaveTypes := &stubLeaveTypeRepo{types: map[string]leave.LeaveType{
		"SL":  {Code: "SL", IsActive: true, IsPaid: true},
		"CL":  {Code: "CL", IsActive: true, IsPaid: true},
		"LOP": {Code: "LOP", IsActive: true, LeaveNature: leave.NatureLOP},
	}}
	resolver := NewNatureResolver(leaveTypes)

	return splitFixture{
		monthlyFixture: mf,
		leaveTypes:     leaveTypes,
		split: NewSplitService(
			passTx{}, mf.requests, mf.splits, leaveTypes, resolver, mf.svc, mf.clk,
		),
	}
}

func (fx splitFixture) seedParent(t *testing.T, id string, days float64) leave.LeaveRequest {
	t.Helper()
	lr := approvedRequest(id,
		time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC),
		"SL", days)
	fx.requests.requests[id] = lr
	return lr
}

func TestValidateSplitsHappyPath(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)

	result, err := fx.split.ValidateSplits(context.Background(), "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", Status: leave.SplitApproved},
		{Date: "2024-06-11", LeaveType: "LOP", Status: leave.SplitApproved},
		{Date: "2024-06-12", LeaveType: "SL", Status: leave.SplitRejected},
	})
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.Empty(t, result.Errors)
	require.Empty(t, result.Warnings)
	require.Equal(t, 2.0, result.TotalSplitDays, "rejected entries carry no weight")
	require.Equal(t, 3.0, result.OriginalTotalDays)
}

func TestValidateSplitsOverAllocation(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 2)

	result, err := fx.split.ValidateSplits(context.Background(), "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", Status: leave.SplitApproved},
		{Date: "2024-06-11", LeaveType: "SL", Status: leave.SplitApproved},
		{Date: "2024-06-12", LeaveType: "SL", Status: leave.SplitApproved},
	})
	require.NoError(t, err)
	require.False(t, result.IsValid)
	require.Equal(t, 3.0, result.TotalSplitDays)
	require.Contains(t, result.Errors[len(result.Errors)-1], "exceed the original leave days")
}

func TestValidateSplitsHalfDayWeights(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)

	// Two halves of the same date plus a full day: 2.0 approved days total.
	result, err := fx.split.ValidateSplits(context.Background(), "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", IsHalfDay: true, HalfDayType: leave.FirstHalf, Status: leave.SplitApproved},
		{Date: "2024-06-10", LeaveType: "LOP", IsHalfDay: true, HalfDayType: leave.SecondHalf, Status: leave.SplitApproved},
		{Date: "2024-06-11", LeaveType: "SL", Status: leave.SplitApproved},
	})
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.Equal(t, 2.0, result.TotalSplitDays)
}

func TestValidateSplitsDuplicateSlot(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)

	result, err := fx.split.ValidateSplits(context.Background(), "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", Status: leave.SplitApproved},
		{Date: "2024-06-10", LeaveType: "LOP", Status: leave.SplitRejected},
	})
	require.NoError(t, err)
	require.False(t, result.IsValid)
	require.Contains(t, result.Errors[0], "duplicate entry")
}

func TestValidateSplitsOutsideLeavePeriod(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)

	result, err := fx.split.ValidateSplits(context.Background(), "lr-1", []leave.SplitInput{
		{Date: "2024-06-20", LeaveType: "SL", Status: leave.SplitApproved},
	})
	require.NoError(t, err)
	require.False(t, result.IsValid)
	require.Contains(t, result.Errors[0], "outside the leave period")
}

func TestValidateSplitsFieldErrors(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)

	result, err := fx.split.ValidateSplits(context.Background(), "lr-1", []leave.SplitInput{
		{Date: "", LeaveType: "SL", Status: leave.SplitApproved},
		{Date: "2024-06-10", LeaveType: "", Status: leave.SplitApproved},
		{Date: "2024-06-11", LeaveType: "SL", Status: "pending"},
		{Date: "10/06/2024", LeaveType: "SL", Status: leave.SplitApproved},
		{Date: "2024-06-12", LeaveType: "SL", IsHalfDay: true, Status: leave.SplitApproved},
	})
	require.NoError(t, err)
	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 5, "every input is checked even after earlier failures")
}

func TestValidateSplitsCoverageGapWarns(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)

	result, err := fx.split.ValidateSplits(context.Background(), "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", Status: leave.SplitApproved},
	})
	require.NoError(t, err)
	require.True(t, result.IsValid, "uncovered dates warn, they never block")
	require.Len(t, result.Warnings, 2)
	require.Contains(t, result.Warnings[0], "2024-06-11")
	require.Contains(t, result.Warnings[1], "2024-06-12")
}

func TestValidateSplitsInsufficientBalanceWarns(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)

	emp := fx.employees.employees["emp-1"]
	emp.AllottedLeaves = 0
	fx.employees.employees["emp-1"] = emp

	result, err := fx.split.ValidateSplits(context.Background(), "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "LOP", Status: leave.SplitApproved},
		{Date: "2024-06-11", LeaveType: "SL", Status: leave.SplitApproved},
		{Date: "2024-06-12", LeaveType: "SL", Status: leave.SplitApproved},
	})
	require.NoError(t, err)
	require.True(t, result.IsValid, "balance problems warn, they never block the split")
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "insufficient")
}

func TestCheckLeaveBalancePaidUncapped(t *testing.T) {
	fx := newSplitFixture()

	check, err := fx.split.CheckLeaveBalance(context.Background(), "emp-1", "SL", 5)
	require.NoError(t, err)
	require.True(t, check.HasBalance)
	require.True(t, check.Unlimited())
}

func TestCheckLeaveBalancePaidAnnualCap(t *testing.T) {
	fx := newSplitFixture()
	ctx := context.Background()

	annualCap := 10.0
	fx.leaveTypes.types["CL"] = leave.LeaveType{
		Code: "CL", IsActive: true, IsPaid: true, MaxDaysPerYear: &annualCap,
	}
	require.NoError(t, fx.splits.CreateBatch(ctx, []leave.LeaveSplit{{
		ID:           "sp-used",
		EmployeeID:   "emp-1",
		Date:         time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		Month:        "2024-03",
		LeaveType:    "CL",
		NumberOfDays: 9,
		Status:       leave.SplitApproved,
	}}))

	check, err := fx.split.CheckLeaveBalance(ctx, "emp-1", "CL", 1)
	require.NoError(t, err)
	require.True(t, check.HasBalance)
	require.Equal(t, 1.0, check.Balance)

	check, err = fx.split.CheckLeaveBalance(ctx, "emp-1", "CL", 2)
	require.NoError(t, err)
	require.False(t, check.HasBalance)
	require.Contains(t, check.Message, "annual cap reached")
}

func TestCreateSplitsPersistsAndRecomputes(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)
	ctx := context.Background()

	result, err := fx.split.CreateSplits(ctx, "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "sl", Status: leave.SplitApproved},
		{Date: "2024-06-11", LeaveType: "LOP", Status: leave.SplitApproved},
		{Date: "2024-06-12", LeaveType: "SL", Status: leave.SplitRejected},
	}, "manager-1")
	require.NoError(t, err)
	require.True(t, result.IsValid)

	stored, err := fx.splits.GetByLeaveRequestID(ctx, "lr-1")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	require.Equal(t, "SL", stored[0].LeaveType, "split types are stored upper-cased")
	require.Equal(t, leave.NatureLOP, stored[1].LeaveNature)
	require.Equal(t, "SL", stored[0].OriginalLeaveType)
	require.Equal(t, "2024-06", stored[0].Month)
	require.Equal(t, "manager-1", stored[0].SplitBy)

	parent, err := fx.requests.GetByID(ctx, "lr-1")
	require.NoError(t, err)
	require.Equal(t, leave.SplitStatusApproved, parent.SplitStatus)
	require.Equal(t, "SL", parent.OriginalLeaveType)
	require.Len(t, parent.SplitHistory, 1)
	require.Equal(t, "manager-1", parent.SplitHistory[0].SplitBy)
	require.Equal(t, 3.0, parent.SplitHistory[0].PreviousDays)

	record, err := fx.records.GetByEmployeeMonth(ctx, "emp-1", "2024-06")
	require.NoError(t, err)
	require.Equal(t, 2.0, record.Summary.TotalLeaves)
	require.Equal(t, 1.0, record.Summary.PaidLeaves)
	require.Equal(t, 1.0, record.Summary.LOPLeaves)
}

func TestCreateSplitsReplacesExistingSet(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)
	ctx := context.Background()

	_, err := fx.split.CreateSplits(ctx, "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", Status: leave.SplitApproved},
		{Date: "2024-06-11", LeaveType: "SL", Status: leave.SplitApproved},
		{Date: "2024-06-12", LeaveType: "SL", Status: leave.SplitApproved},
	}, "manager-1")
	require.NoError(t, err)

	_, err = fx.split.CreateSplits(ctx, "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", Status: leave.SplitApproved},
	}, "manager-2")
	require.NoError(t, err)

	stored, err := fx.splits.GetByLeaveRequestID(ctx, "lr-1")
	require.NoError(t, err)
	require.Len(t, stored, 1, "re-splitting replaces the previous set wholesale")

	parent, err := fx.requests.GetByID(ctx, "lr-1")
	require.NoError(t, err)
	require.Len(t, parent.SplitHistory, 2, "every split pass is recorded")
}

func TestCreateSplitsInvalidSetWritesNothing(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 1)
	ctx := context.Background()

	result, err := fx.split.CreateSplits(ctx, "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", Status: leave.SplitApproved},
		{Date: "2024-06-11", LeaveType: "SL", Status: leave.SplitApproved},
	}, "manager-1")
	require.NoError(t, err)
	require.False(t, result.IsValid)

	stored, err := fx.splits.GetByLeaveRequestID(ctx, "lr-1")
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestCreateSplitsCancelledParent(t *testing.T) {
	fx := newSplitFixture()
	lr := fx.seedParent(t, "lr-1", 3)
	lr.Status = leave.LeaveRequestStatusCancelled
	fx.requests.requests["lr-1"] = lr

	_, err := fx.split.CreateSplits(context.Background(), "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", Status: leave.SplitApproved},
	}, "manager-1")
	require.ErrorIs(t, err, leave.ErrLeaveRequestCancelled)
}

func TestUpdateSplitRefusesInsufficientBalance(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)
	ctx := context.Background()

	_, err := fx.split.CreateSplits(ctx, "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", Status: leave.SplitRejected},
	}, "manager-1")
	require.NoError(t, err)
	stored, err := fx.splits.GetByLeaveRequestID(ctx, "lr-1")
	require.NoError(t, err)

	emp := fx.employees.employees["emp-1"]
	emp.AllottedLeaves = 0
	fx.employees.employees["emp-1"] = emp

	lop := "LOP"
	approved := leave.SplitApproved
	_, err = fx.split.UpdateSplit(ctx, leave.UpdateSplitRequest{
		SplitID:   stored[0].ID,
		LeaveType: &lop,
		Status:    &approved,
	})
	require.ErrorIs(t, err, leave.ErrInsufficientBalance)
}

func TestUpdateSplitReResolvesNature(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)
	ctx := context.Background()

	_, err := fx.split.CreateSplits(ctx, "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", Status: leave.SplitApproved},
	}, "manager-1")
	require.NoError(t, err)
	stored, err := fx.splits.GetByLeaveRequestID(ctx, "lr-1")
	require.NoError(t, err)

	lop := "lop"
	updated, err := fx.split.UpdateSplit(ctx, leave.UpdateSplitRequest{
		SplitID:   stored[0].ID,
		LeaveType: &lop,
	})
	require.NoError(t, err)
	require.Equal(t, "LOP", updated.LeaveType)
	require.Equal(t, leave.NatureLOP, updated.LeaveNature)

	record, err := fx.records.GetByEmployeeMonth(ctx, "emp-1", "2024-06")
	require.NoError(t, err)
	require.Equal(t, 1.0, record.Summary.LOPLeaves)
	require.Zero(t, record.Summary.PaidLeaves)
}

func TestDeleteSplitRecomputesMonth(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)
	ctx := context.Background()

	_, err := fx.split.CreateSplits(ctx, "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", Status: leave.SplitApproved},
	}, "manager-1")
	require.NoError(t, err)
	stored, err := fx.splits.GetByLeaveRequestID(ctx, "lr-1")
	require.NoError(t, err)

	require.NoError(t, fx.split.DeleteSplit(ctx, stored[0].ID))

	record, err := fx.records.GetByEmployeeMonth(ctx, "emp-1", "2024-06")
	require.NoError(t, err)
	require.Zero(t, record.Summary.TotalLeaves)
}

func TestGetSplitSummary(t *testing.T) {
	fx := newSplitFixture()
	fx.seedParent(t, "lr-1", 3)
	ctx := context.Background()

	_, err := fx.split.CreateSplits(ctx, "lr-1", []leave.SplitInput{
		{Date: "2024-06-10", LeaveType: "SL", Status: leave.SplitApproved},
		{Date: "2024-06-11", LeaveType: "LOP", Status: leave.SplitApproved},
		{Date: "2024-06-12", LeaveType: "SL", Status: leave.SplitRejected},
	}, "manager-1")
	require.NoError(t, err)

	summary, err := fx.split.GetSplitSummary(ctx, "lr-1")
	require.NoError(t, err)
	require.Equal(t, 3, summary.TotalSplits)
	require.Equal(t, 2.0, summary.ApprovedDays)
	require.Equal(t, 1.0, summary.RejectedDays)
	require.Len(t, summary.Breakdown, 3)
	require.Equal(t, leave.SplitBucket{LeaveType: "SL", Status: leave.SplitApproved}, summary.Breakdown[0].SplitBucket)
	require.Equal(t, 1.0, summary.Breakdown[0].Days)
}
