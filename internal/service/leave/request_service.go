package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/clock"
	"github.com/google/uuid"
)

type RequestServiceImpl struct {
	leaves    leave.LeaveRequestRepository
	employees employee.EmployeeRepository
	monthly   leave.MonthlyService
	enqueuer  payroll.ResyncEnqueuer
	clk       clock.Clock
}

func NewRequestService(
	leaveRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	monthlyService leave.MonthlyService,
	enqueuer payroll.ResyncEnqueuer,
	clk clock.Clock,
) *RequestServiceImpl {
	return &RequestServiceImpl{
		leaves:    leaveRepo,
		employees: employeeRepo,
		monthly:   monthlyService,
		enqueuer:  enqueuer,
		clk:       clk,
	}
}

// Apply implements leave.RequestService.
func (s *RequestServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveRequest, error) {
	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get employee: %w", err)
	}

	fromDate, err := time.Parse("2006-01-02", req.FromDate)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("invalid from date %q", req.FromDate)
	}
	toDate, err := time.Parse("2006-01-02", req.ToDate)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("invalid to date %q", req.ToDate)
	}
	if toDate.Before(fromDate) {
		return leave.LeaveRequest{}, fmt.Errorf("to date %s is before from date %s", req.ToDate, req.FromDate)
	}
	if strings.TrimSpace(req.LeaveType) == "" {
		return leave.LeaveRequest{}, fmt.Errorf("leave type is required")
	}

	days := float64(int(toDate.Sub(fromDate).Hours()/24)) + 1
	if req.IsHalfDay {
		if !fromDate.Equal(toDate) {
			return leave.LeaveRequest{}, fmt.Errorf("half-day leave must span a single day")
		}
		if req.HalfDayType != leave.FirstHalf && req.HalfDayType != leave.SecondHalf {
			return leave.LeaveRequest{}, fmt.Errorf("half day type is required for half-day leave")
		}
		days = 0.5
	}

	now := s.clk.Now()
	request := leave.LeaveRequest{
		ID:           uuid.NewString(),
		EmployeeID:   emp.ID,
		EmpNo:        emp.EmpNo,
		FromDate:     fromDate,
		ToDate:       toDate,
		IsHalfDay:    req.IsHalfDay,
		HalfDayType:  req.HalfDayType,
		LeaveType:    strings.ToUpper(req.LeaveType),
		NumberOfDays: days,
		Reason:       req.Reason,
		Status:       leave.LeaveRequestStatusWaitingApproval,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.leaves.Create(ctx, request)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return created, nil
}

// Approve implements leave.RequestService. Approval is the moment a leave
// starts affecting monthly aggregates and pay registers, so both downstream
// recomputes are kicked off here.
func (s *RequestServiceImpl) Approve(ctx context.Context, requestID, approverID string) (leave.LeaveRequest, error) {
	request, err := s.leaves.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	if request.Status == leave.LeaveRequestStatusCancelled {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestCancelled
	}
	if request.Status != leave.LeaveRequestStatusWaitingApproval {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	if err := s.leaves.UpdateStatus(ctx, requestID, leave.LeaveRequestStatusApproved, approverID, nil); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to approve leave request: %w", err)
	}

	now := s.clk.Now()
	request.Status = leave.LeaveRequestStatusApproved
	request.ApprovedBy = &approverID
	request.ApprovedAt = &now

	if err := s.monthly.UpdateMonthlyRecordOnLeaveAction(ctx, request, leave.ActionApproved); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("leave approved but monthly recompute failed: %w", err)
	}

	s.enqueueResync(ctx, request)
	return request, nil
}

// Reject implements leave.RequestService. A rejected leave never touched the
// aggregates, so no recompute is needed.
func (s *RequestServiceImpl) Reject(ctx context.Context, requestID, reason, approverID string) (leave.LeaveRequest, error) {
	request, err := s.leaves.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	if request.Status == leave.LeaveRequestStatusCancelled {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestCancelled
	}
	if request.Status != leave.LeaveRequestStatusWaitingApproval {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	if err := s.leaves.UpdateStatus(ctx, requestID, leave.LeaveRequestStatusRejected, approverID, &reason); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to reject leave request: %w", err)
	}

	request.Status = leave.LeaveRequestStatusRejected
	request.RejectionReason = &reason
	return request, nil
}

// Cancel implements leave.RequestService. Cancelling an approved leave undoes
// its effect, so the affected months are recomputed and registers resynced.
func (s *RequestServiceImpl) Cancel(ctx context.Context, requestID, actor string) (leave.LeaveRequest, error) {
	request, err := s.leaves.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	if request.Status == leave.LeaveRequestStatusCancelled {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestCancelled
	}

	wasApproved := request.Status == leave.LeaveRequestStatusApproved

	if err := s.leaves.UpdateStatus(ctx, requestID, leave.LeaveRequestStatusCancelled, actor, nil); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to cancel leave request: %w", err)
	}

	now := s.clk.Now()
	request.Status = leave.LeaveRequestStatusCancelled
	request.CancelledAt = &now

	if wasApproved {
		if err := s.monthly.UpdateMonthlyRecordOnLeaveAction(ctx, request, leave.ActionCancelled); err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("leave cancelled but monthly recompute failed: %w", err)
		}
		s.enqueueResync(ctx, request)
	}

	return request, nil
}

// Get implements leave.RequestService.
func (s *RequestServiceImpl) Get(ctx context.Context, requestID string) (leave.LeaveRequest, error) {
	return s.leaves.GetByID(ctx, requestID)
}

// enqueueResync hands the change to the background transport. Enqueue failures
// are logged, not returned: the periodic resync will still pick the month up.
func (s *RequestServiceImpl) enqueueResync(ctx context.Context, request leave.LeaveRequest) {
	ev := payroll.ChangeEvent{
		EmployeeID: request.EmployeeID,
		EmpNo:      request.EmpNo,
		FromDate:   request.FromDate,
		ToDate:     request.ToDate,
		RecordID:   request.ID,
	}
	if err := s.enqueuer.EnqueueLeaveResync(ctx, ev); err != nil {
		slog.Error("failed to enqueue leave resync",
			"leave_request_id", request.ID,
			"employee_id", request.EmployeeID,
			"error", err)
	}
}
