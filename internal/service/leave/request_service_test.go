package leave

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
)

type recordingEnqueuer struct {
	leaveEvents []payroll.ChangeEvent
	odEvents    []payroll.ChangeEvent
	otEvents    []payroll.ChangeEvent
	err         error
}

func (r *recordingEnqueuer) EnqueueLeaveResync(ctx context.Context, ev payroll.ChangeEvent) error {
	r.leaveEvents = append(r.leaveEvents, ev)
	return r.err
}

func (r *recordingEnqueuer) EnqueueODResync(ctx context.Context, ev payroll.ChangeEvent) error {
	r.odEvents = append(r.odEvents, ev)
	return r.err
}

func (r *recordingEnqueuer) EnqueueOTResync(ctx context.Context, ev payroll.ChangeEvent) error {
	r.otEvents = append(r.otEvents, ev)
	return r.err
}

type requestFixture struct {
	monthlyFixture
	request  *RequestServiceImpl
	enqueuer *recordingEnqueuer
}

func newRequestFixture() requestFixture {
	mf := newMonthlyFixture()
	enqueuer := &recordingEnqueuer{}
	return requestFixture{
		monthlyFixture: mf,
		enqueuer:       enqueuer,
		request:        NewRequestService(mf.requests, mf.employees, mf.svc, enqueuer, mf.clk),
	}
}

func TestApplyComputesDays(t *testing.T) {
	fx := newRequestFixture()

	created, err := fx.request.Apply(context.Background(), leave.ApplyLeaveRequest{
		EmployeeID: "emp-1",
		FromDate:   "2024-06-10",
		ToDate:     "2024-06-12",
		LeaveType:  "sl",
		Reason:     "fever",
	})
	require.NoError(t, err)
	require.Equal(t, 3.0, created.NumberOfDays)
	require.Equal(t, "SL", created.LeaveType)
	require.Equal(t, "E001", created.EmpNo)
	require.Equal(t, leave.LeaveRequestStatusWaitingApproval, created.Status)
}

func TestApplyHalfDay(t *testing.T) {
	fx := newRequestFixture()

	created, err := fx.request.Apply(context.Background(), leave.ApplyLeaveRequest{
		EmployeeID:  "emp-1",
		FromDate:    "2024-06-10",
		ToDate:      "2024-06-10",
		LeaveType:   "CL",
		IsHalfDay:   true,
		HalfDayType: leave.SecondHalf,
	})
	require.NoError(t, err)
	require.Equal(t, 0.5, created.NumberOfDays)
}

func TestApplyRejectsBadInput(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	_, err := fx.request.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: "emp-1", FromDate: "2024-06-12", ToDate: "2024-06-10", LeaveType: "SL",
	})
	require.Error(t, err)

	_, err = fx.request.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: "emp-1", FromDate: "2024-06-10", ToDate: "2024-06-12", LeaveType: "SL", IsHalfDay: true, HalfDayType: leave.FirstHalf,
	})
	require.Error(t, err, "half-day leave must span a single day")

	_, err = fx.request.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: "emp-1", FromDate: "2024-06-10", ToDate: "2024-06-10", LeaveType: "SL", IsHalfDay: true,
	})
	require.Error(t, err, "half day type is required")

	_, err = fx.request.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: "missing", FromDate: "2024-06-10", ToDate: "2024-06-10", LeaveType: "SL",
	})
	require.Error(t, err)
}

func TestApproveRecomputesAndEnqueues(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	created, err := fx.request.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: "emp-1", FromDate: "2024-06-10", ToDate: "2024-06-12", LeaveType: "SL",
	})
	require.NoError(t, err)

	approved, err := fx.request.Approve(ctx, created.ID, "manager-1")
	require.NoError(t, err)
	require.Equal(t, leave.LeaveRequestStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	require.Equal(t, "manager-1", *approved.ApprovedBy)

	record, err := fx.records.GetByEmployeeMonth(ctx, "emp-1", "2024-06")
	require.NoError(t, err)
	require.Equal(t, 3.0, record.Summary.TotalLeaves)

	require.Len(t, fx.enqueuer.leaveEvents, 1)
	require.Equal(t, created.ID, fx.enqueuer.leaveEvents[0].RecordID)

	_, err = fx.request.Approve(ctx, created.ID, "manager-1")
	require.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)
}

func TestRejectSkipsRecompute(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	created, err := fx.request.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: "emp-1", FromDate: "2024-06-10", ToDate: "2024-06-12", LeaveType: "SL",
	})
	require.NoError(t, err)

	rejected, err := fx.request.Reject(ctx, created.ID, "not enough cover", "manager-1")
	require.NoError(t, err)
	require.Equal(t, leave.LeaveRequestStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)

	_, err = fx.records.GetByEmployeeMonth(ctx, "emp-1", "2024-06")
	require.ErrorIs(t, err, leave.ErrMonthlyRecordNotFound, "a rejected leave never touched the aggregates")
	require.Empty(t, fx.enqueuer.leaveEvents)
}

func TestCancelApprovedLeaveUndoesEffect(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	created, err := fx.request.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: "emp-1", FromDate: "2024-06-10", ToDate: "2024-06-12", LeaveType: "SL",
	})
	require.NoError(t, err)
	_, err = fx.request.Approve(ctx, created.ID, "manager-1")
	require.NoError(t, err)

	cancelled, err := fx.request.Cancel(ctx, created.ID, "emp-1")
	require.NoError(t, err)
	require.Equal(t, leave.LeaveRequestStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	record, err := fx.records.GetByEmployeeMonth(ctx, "emp-1", "2024-06")
	require.NoError(t, err)
	require.Zero(t, record.Summary.TotalLeaves, "cancellation recomputes the month back to zero")
	require.Len(t, fx.enqueuer.leaveEvents, 2, "approval and cancellation both resync")

	_, err = fx.request.Cancel(ctx, created.ID, "emp-1")
	require.ErrorIs(t, err, leave.ErrLeaveRequestCancelled)
}

func TestCancelWaitingLeaveSkipsResync(t *testing.T) {
	fx := newRequestFixture()
	ctx := context.Background()

	created, err := fx.request.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: "emp-1", FromDate: "2024-06-10", ToDate: "2024-06-12", LeaveType: "SL",
	})
	require.NoError(t, err)

	_, err = fx.request.Cancel(ctx, created.ID, "emp-1")
	require.NoError(t, err)
	require.Empty(t, fx.enqueuer.leaveEvents, "a never-approved leave had no downstream effect")
}
