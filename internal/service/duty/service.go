package duty

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/duty"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/clock"
)

type DutyServiceImpl struct {
	ods      duty.OfficialDutyRepository
	ots      duty.OvertimeRepository
	enqueuer payroll.ResyncEnqueuer
	clk      clock.Clock
}

func NewDutyService(
	odRepo duty.OfficialDutyRepository,
	otRepo duty.OvertimeRepository,
	enqueuer payroll.ResyncEnqueuer,
	clk clock.Clock,
) *DutyServiceImpl {
	return &DutyServiceImpl{
		ods:      odRepo,
		ots:      otRepo,
		enqueuer: enqueuer,
		clk:      clk,
	}
}

// ApproveOfficialDuty implements duty.DutyService.
func (s *DutyServiceImpl) ApproveOfficialDuty(ctx context.Context, id, approverID string) (duty.OfficialDuty, error) {
	return s.decideOfficialDuty(ctx, id, approverID, duty.DutyStatusApproved)
}

// RejectOfficialDuty implements duty.DutyService. Rejecting a previously
// approved OD still resyncs, because its pay-register effect must be undone.
func (s *DutyServiceImpl) RejectOfficialDuty(ctx context.Context, id, approverID string) (duty.OfficialDuty, error) {
	return s.decideOfficialDuty(ctx, id, approverID, duty.DutyStatusRejected)
}

func (s *DutyServiceImpl) decideOfficialDuty(ctx context.Context, id, approverID string, status duty.DutyStatus) (duty.OfficialDuty, error) {
	od, err := s.ods.GetByID(ctx, id)
	if err != nil {
		return duty.OfficialDuty{}, fmt.Errorf("failed to get official duty: %w", err)
	}

	wasApproved := od.Status == duty.DutyStatusApproved
	if od.Status != duty.DutyStatusWaitingApproval && !(wasApproved && status == duty.DutyStatusRejected) {
		return duty.OfficialDuty{}, duty.ErrDutyAlreadyProcessed
	}

	if err := s.ods.UpdateStatus(ctx, id, status, approverID); err != nil {
		return duty.OfficialDuty{}, fmt.Errorf("failed to update official duty status: %w", err)
	}

	now := s.clk.Now()
	od.Status = status
	od.ApprovedBy = &approverID
	od.ApprovedAt = &now

	if status == duty.DutyStatusApproved || wasApproved {
		ev := payroll.ChangeEvent{
			EmployeeID: od.EmployeeID,
			EmpNo:      od.EmpNo,
			FromDate:   od.FromDate,
			ToDate:     od.ToDate,
			RecordID:   od.ID,
		}
		if err := s.enqueuer.EnqueueODResync(ctx, ev); err != nil {
			slog.Error("failed to enqueue od resync", "od_id", od.ID, "employee_id", od.EmployeeID, "error", err)
		}
	}

	return od, nil
}

// ApproveOvertime implements duty.DutyService.
func (s *DutyServiceImpl) ApproveOvertime(ctx context.Context, id, approverID string) (duty.Overtime, error) {
	return s.decideOvertime(ctx, id, approverID, duty.DutyStatusApproved)
}

// RejectOvertime implements duty.DutyService.
func (s *DutyServiceImpl) RejectOvertime(ctx context.Context, id, approverID string) (duty.Overtime, error) {
	return s.decideOvertime(ctx, id, approverID, duty.DutyStatusRejected)
}

func (s *DutyServiceImpl) decideOvertime(ctx context.Context, id, approverID string, status duty.DutyStatus) (duty.Overtime, error) {
	ot, err := s.ots.GetByID(ctx, id)
	if err != nil {
		return duty.Overtime{}, fmt.Errorf("failed to get overtime: %w", err)
	}

	wasApproved := ot.Status == duty.DutyStatusApproved
	if ot.Status != duty.DutyStatusWaitingApproval && !(wasApproved && status == duty.DutyStatusRejected) {
		return duty.Overtime{}, duty.ErrDutyAlreadyProcessed
	}

	if err := s.ots.UpdateStatus(ctx, id, status, approverID); err != nil {
		return duty.Overtime{}, fmt.Errorf("failed to update overtime status: %w", err)
	}

	now := s.clk.Now()
	ot.Status = status
	ot.ApprovedBy = &approverID
	ot.ApprovedAt = &now

	if status == duty.DutyStatusApproved || wasApproved {
		ev := payroll.ChangeEvent{
			EmployeeID: ot.EmployeeID,
			EmpNo:      ot.EmpNo,
			FromDate:   ot.Date,
			ToDate:     ot.Date,
			RecordID:   ot.ID,
		}
		if err := s.enqueuer.EnqueueOTResync(ctx, ev); err != nil {
			slog.Error("failed to enqueue ot resync", "ot_id", ot.ID, "employee_id", ot.EmployeeID, "error", err)
		}
	}

	return ot, nil
}
