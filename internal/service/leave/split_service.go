package leave

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/daterange"
	"github.com/google/uuid"
)

// dayEpsilon absorbs float64 noise when comparing 0.5-granular day totals.
const dayEpsilon = 1e-9

type SplitServiceImpl struct {
	tx         database.TxManager
	leaves     leave.LeaveRequestRepository
	splits     leave.LeaveSplitRepository
	leaveTypes leave.LeaveTypeRepository
	resolver   leave.NatureResolver
	monthly    leave.MonthlyService
	clk        clock.Clock
}

func NewSplitService(
	tx database.TxManager,
	leaveRepo leave.LeaveRequestRepository,
	splitRepo leave.LeaveSplitRepository,
	leaveTypeRepo leave.LeaveTypeRepository,
	resolver leave.NatureResolver,
	monthlyService leave.MonthlyService,
	clk clock.Clock,
) *SplitServiceImpl {
	return &SplitServiceImpl{
		tx:         tx,
		leaves:     leaveRepo,
		splits:     splitRepo,
		leaveTypes: leaveTypeRepo,
		resolver:   resolver,
		monthly:    monthlyService,
		clk:        clk,
	}
}

// splitKey identifies the (date, half-or-full) slot a split input claims.
func splitKey(date string, in leave.SplitInput) string {
	if in.IsHalfDay {
		return date + "|" + string(in.HalfDayType)
	}
	return date + "|full"
}

// ValidateSplits implements leave.SplitService. Every input is checked even
// after earlier ones fail; warnings never block.
func (s *SplitServiceImpl) ValidateSplits(ctx context.Context, leaveRequestID string, inputs []leave.SplitInput) (leave.SplitValidationResult, error) {
	parent, err := s.leaves.GetByID(ctx, leaveRequestID)
	if err != nil {
		return leave.SplitValidationResult{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	result := leave.SplitValidationResult{
		Errors:            []string{},
		Warnings:          []string{},
		OriginalTotalDays: parent.NumberOfDays,
	}

	seenKeys := make(map[string]bool)
	coveredDates := make(map[string]bool)
	coveredHalves := make(map[string]map[leave.HalfDayType]bool)

	markHalf := func(date string, half leave.HalfDayType) {
		if coveredHalves[date] == nil {
			coveredHalves[date] = make(map[leave.HalfDayType]bool)
		}
		coveredHalves[date][half] = true
	}

	for i, in := range inputs {
		itemOK := true
		if in.Date == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("split %d: date is required", i+1))
			itemOK = false
		}
		if strings.TrimSpace(in.LeaveType) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("split %d: leave type is required", i+1))
			itemOK = false
		}
		if in.Status != leave.SplitApproved && in.Status != leave.SplitRejected {
			result.Errors = append(result.Errors, fmt.Sprintf("split %d: status must be approved or rejected", i+1))
			itemOK = false
		}
		if !itemOK {
			continue
		}

		date, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("split %d: invalid date %q", i+1, in.Date))
			continue
		}

		if in.IsHalfDay && in.HalfDayType != leave.FirstHalf && in.HalfDayType != leave.SecondHalf {
			result.Errors = append(result.Errors, fmt.Sprintf("split %d: half day type is required for half-day splits", i+1))
			continue
		}

		weight := in.DayWeight()
		if in.Status == leave.SplitApproved {
			result.TotalSplitDays += weight
		}

		if !parent.ContainsDate(date) {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"split %d: date %s is outside the leave period %s to %s",
				i+1, in.Date, parent.FromDate.Format("2006-01-02"), parent.ToDate.Format("2006-01-02")))
		}

		key := splitKey(in.Date, in)
		if seenKeys[key] {
			result.Errors = append(result.Errors, fmt.Sprintf("split %d: duplicate entry for %s", i+1, strings.ReplaceAll(key, "|", " ")))
		}
		seenKeys[key] = true

		coveredDates[in.Date] = true
		if in.IsHalfDay {
			markHalf(in.Date, in.HalfDayType)
		} else {
			markHalf(in.Date, leave.FirstHalf)
			markHalf(in.Date, leave.SecondHalf)
		}

		if in.Status == leave.SplitApproved {
			check, err := s.CheckLeaveBalance(ctx, parent.EmployeeID, in.LeaveType, weight)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("split %d: balance check failed: %v", i+1, err))
			} else if !check.HasBalance {
				result.Warnings = append(result.Warnings, fmt.Sprintf("split %d: %s", i+1, check.Message))
			}
		}
	}

	if result.TotalSplitDays > parent.NumberOfDays+dayEpsilon {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"approved split days (%.1f) exceed the original leave days (%.1f)",
			result.TotalSplitDays, parent.NumberOfDays))
	}

	// Coverage check. Gaps are allowed but flagged so the reviewer sees them.
	if parent.IsHalfDay && parent.SpansSingleDay() {
		date := parent.FromDate.Format("2006-01-02")
		if !coveredHalves[date][parent.HalfDayType] {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"the original %s of %s is not represented in the split set", parent.HalfDayType, date))
		}
	} else {
		for _, d := range daterange.DatesIn(parent.FromDate, parent.ToDate) {
			date := d.Format("2006-01-02")
			if !coveredDates[date] {
				result.Warnings = append(result.Warnings, fmt.Sprintf("date %s is not covered by any split", date))
			}
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

// CheckLeaveBalance implements leave.SplitService. Unpaid natures draw on the
// financial-year balance; paid types are capped by their configured annual
// maximum, or unlimited when no cap is configured.
func (s *SplitServiceImpl) CheckLeaveBalance(ctx context.Context, employeeID, leaveType string, days float64) (leave.BalanceCheckResult, error) {
	nature := s.resolver.Resolve(ctx, leaveType)

	if nature.IsUnpaid() {
		balance, err := s.monthly.GetCurrentLeaveBalance(ctx, employeeID)
		if err != nil {
			return leave.BalanceCheckResult{}, fmt.Errorf("failed to get current leave balance: %w", err)
		}
		if balance.Balance+dayEpsilon < days {
			return leave.BalanceCheckResult{
				HasBalance: false,
				Message: fmt.Sprintf("insufficient %s balance: %.1f available, %.1f requested",
					nature, balance.Balance, days),
				Balance: balance.Balance,
			}, nil
		}
		return leave.BalanceCheckResult{HasBalance: true, Balance: balance.Balance}, nil
	}

	lt, err := s.leaveTypes.GetActiveByCode(ctx, strings.ToUpper(leaveType))
	if err != nil || lt.MaxDaysPerYear == nil {
		// Unknown or uncapped types are unlimited.
		return leave.BalanceCheckResult{HasBalance: true, Balance: math.Inf(1)}, nil
	}

	used, err := s.splits.SumApprovedDaysByTypeYear(ctx, employeeID, strings.ToUpper(leaveType), s.clk.Now().Year())
	if err != nil {
		return leave.BalanceCheckResult{}, fmt.Errorf("failed to sum approved split days: %w", err)
	}

	remaining := *lt.MaxDaysPerYear - used
	if remaining+dayEpsilon < days {
		return leave.BalanceCheckResult{
			HasBalance: false,
			Message: fmt.Sprintf("annual cap reached for %s: %.1f of %.1f days used",
				strings.ToUpper(leaveType), used, *lt.MaxDaysPerYear),
			Balance: remaining,
		}, nil
	}
	return leave.BalanceCheckResult{HasBalance: true, Balance: remaining}, nil
}

// CreateSplits implements leave.SplitService. Re-splitting is idempotent: any
// existing splits for the leave are replaced as a set, together with the
// parent update, inside one transaction.
func (s *SplitServiceImpl) CreateSplits(ctx context.Context, leaveRequestID string, inputs []leave.SplitInput, actor string) (leave.SplitValidationResult, error) {
	parent, err := s.leaves.GetByID(ctx, leaveRequestID)
	if err != nil {
		return leave.SplitValidationResult{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	if parent.Status == leave.LeaveRequestStatusCancelled {
		return leave.SplitValidationResult{}, leave.ErrLeaveRequestCancelled
	}

	result, err := s.ValidateSplits(ctx, leaveRequestID, inputs)
	if err != nil {
		return leave.SplitValidationResult{}, err
	}
	if !result.IsValid {
		return result, nil
	}

	now := s.clk.Now()

	originalType := parent.OriginalLeaveType
	if originalType == "" {
		originalType = strings.ToUpper(parent.LeaveType)
	}

	splits := make([]leave.LeaveSplit, 0, len(inputs))
	for _, in := range inputs {
		date, _ := time.Parse("2006-01-02", in.Date)
		splits = append(splits, leave.LeaveSplit{
			ID:                uuid.NewString(),
			LeaveRequestID:    parent.ID,
			EmployeeID:        parent.EmployeeID,
			EmpNo:             parent.EmpNo,
			Date:              date,
			Month:             daterange.MonthKey(date),
			LeaveType:         strings.ToUpper(in.LeaveType),
			LeaveNature:       s.resolver.ResolveFor(ctx, in.LeaveType, in.LeaveNature),
			IsHalfDay:         in.IsHalfDay,
			HalfDayType:       in.HalfDayType,
			NumberOfDays:      in.DayWeight(),
			Status:            in.Status,
			OriginalLeaveType: originalType,
			Reason:            in.Reason,
			SplitBy:           actor,
			SplitAt:           now,
		})
	}

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.splits.DeleteByLeaveRequestID(txCtx, parent.ID); err != nil {
			return fmt.Errorf("failed to delete existing splits: %w", err)
		}
		if err := s.splits.CreateBatch(txCtx, splits); err != nil {
			return fmt.Errorf("failed to create splits: %w", err)
		}

		parent.SplitStatus = leave.SplitStatusApproved
		parent.OriginalLeaveType = originalType
		parent.SplitHistory = append(parent.SplitHistory, leave.SplitHistoryEntry{
			SplitBy:      actor,
			SplitAt:      now,
			PreviousDays: parent.NumberOfDays,
			Splits:       inputs,
		})
		if err := s.leaves.Update(txCtx, parent); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.SplitValidationResult{}, err
	}

	// Recompute every month an approved split lands in. Failures here must
	// surface: the splits are committed and the caller needs to know the
	// monthly aggregates are stale.
	months := make(map[string]bool)
	for _, sp := range splits {
		if sp.Status == leave.SplitApproved {
			months[sp.Month] = true
		}
	}
	for month := range months {
		if _, err := s.monthly.RecalculateMonthlyRecord(ctx, parent.EmployeeID, month); err != nil {
			return result, fmt.Errorf("splits created but monthly recompute failed for %s: %w", month, err)
		}
	}

	return result, nil
}

// UpdateSplit implements leave.SplitService. Unlike validation, where an
// insufficient balance only warns, the direct update path refuses it.
func (s *SplitServiceImpl) UpdateSplit(ctx context.Context, req leave.UpdateSplitRequest) (leave.LeaveSplit, error) {
	split, err := s.splits.GetByID(ctx, req.SplitID)
	if err != nil {
		return leave.LeaveSplit{}, fmt.Errorf("failed to get leave split: %w", err)
	}

	if req.LeaveType != nil {
		split.LeaveType = strings.ToUpper(*req.LeaveType)
		split.LeaveNature = s.resolver.Resolve(ctx, split.LeaveType)
	}
	if req.LeaveNature != nil && *req.LeaveNature != "" {
		split.LeaveNature = *req.LeaveNature
	}
	if req.Status != nil {
		if *req.Status != leave.SplitApproved && *req.Status != leave.SplitRejected {
			return leave.LeaveSplit{}, fmt.Errorf("invalid split status %q", *req.Status)
		}
		split.Status = *req.Status
	}
	if req.Reason != nil {
		split.Reason = *req.Reason
	}

	if split.Status == leave.SplitApproved {
		check, err := s.CheckLeaveBalance(ctx, split.EmployeeID, split.LeaveType, split.NumberOfDays)
		if err != nil {
			return leave.LeaveSplit{}, err
		}
		if !check.HasBalance {
			return leave.LeaveSplit{}, fmt.Errorf("%w: %s", leave.ErrInsufficientBalance, check.Message)
		}
	}

	if err := s.splits.Update(ctx, split); err != nil {
		return leave.LeaveSplit{}, fmt.Errorf("failed to update leave split: %w", err)
	}

	if _, err := s.monthly.RecalculateMonthlyRecord(ctx, split.EmployeeID, split.Month); err != nil {
		return leave.LeaveSplit{}, fmt.Errorf("split updated but monthly recompute failed: %w", err)
	}

	return split, nil
}

// DeleteSplit implements leave.SplitService.
func (s *SplitServiceImpl) DeleteSplit(ctx context.Context, splitID string) error {
	split, err := s.splits.GetByID(ctx, splitID)
	if err != nil {
		return fmt.Errorf("failed to get leave split: %w", err)
	}

	if err := s.splits.Delete(ctx, splitID); err != nil {
		return fmt.Errorf("failed to delete leave split: %w", err)
	}

	if _, err := s.monthly.RecalculateMonthlyRecord(ctx, split.EmployeeID, split.Month); err != nil {
		return fmt.Errorf("split deleted but monthly recompute failed: %w", err)
	}
	return nil
}

// GetSplitSummary implements leave.SplitService. Computed from the stored
// split set on every call, so it is always consistent with the data.
func (s *SplitServiceImpl) GetSplitSummary(ctx context.Context, leaveRequestID string) (leave.SplitSummary, error) {
	parent, err := s.leaves.GetByID(ctx, leaveRequestID)
	if err != nil {
		return leave.SplitSummary{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	splits, err := s.splits.GetByLeaveRequestID(ctx, leaveRequestID)
	if err != nil {
		return leave.SplitSummary{}, fmt.Errorf("failed to get leave splits: %w", err)
	}

	summary := leave.SplitSummary{
		LeaveRequestID: leaveRequestID,
		TotalSplits:    len(splits),
	}

	buckets := make(map[leave.SplitBucket]float64)
	var order []leave.SplitBucket

	for _, sp := range splits {
		switch sp.Status {
		case leave.SplitApproved:
			summary.ApprovedDays += sp.NumberOfDays
		case leave.SplitRejected:
			summary.RejectedDays += sp.NumberOfDays
		}

		key := leave.SplitBucket{LeaveType: sp.LeaveType, Status: sp.Status}
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] += sp.NumberOfDays

		if parent.IsHalfDay && sp.IsHalfDay && sp.HalfDayType != parent.HalfDayType {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf(
				"split %s claims %s but the original leave is a %s request",
				sp.Date.Format("2006-01-02"), sp.HalfDayType, parent.HalfDayType))
		}
	}

	for _, key := range order {
		summary.Breakdown = append(summary.Breakdown, leave.SplitBucketDays{SplitBucket: key, Days: buckets[key]})
	}

	return summary, nil
}
