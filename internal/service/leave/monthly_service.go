package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/daterange"
	"github.com/google/uuid"
)

type MonthlyServiceImpl struct {
	records   leave.MonthlyRecordRepository
	leaves    leave.LeaveRequestRepository
	splits    leave.LeaveSplitRepository
	employees employee.EmployeeRepository
	resolver  leave.NatureResolver
	clk       clock.Clock
}

func NewMonthlyService(
	recordRepo leave.MonthlyRecordRepository,
	leaveRepo leave.LeaveRequestRepository,
	splitRepo leave.LeaveSplitRepository,
	employeeRepo employee.EmployeeRepository,
	resolver leave.NatureResolver,
	clk clock.Clock,
) *MonthlyServiceImpl {
	return &MonthlyServiceImpl{
		records:   recordRepo,
		leaves:    leaveRepo,
		splits:    splitRepo,
		employees: employeeRepo,
		resolver:  resolver,
		clk:       clk,
	}
}

// FinancialYearOf returns the "YYYY-YYYY" financial year containing date.
// The financial year starts at calendar month 4: January–March belong to the
// year that started the previous April.
func FinancialYearOf(date time.Time) string {
	y := date.Year()
	if date.Month() < time.April {
		return fmt.Sprintf("%d-%d", y-1, y)
	}
	return fmt.Sprintf("%d-%d", y, y+1)
}

// GetOrCreateMonthlyRecord implements leave.MonthlyService.
func (s *MonthlyServiceImpl) GetOrCreateMonthlyRecord(ctx context.Context, employeeID, empNo string, date time.Time) (leave.MonthlyLeaveRecord, error) {
	month := daterange.MonthKey(date)

	record, err := s.records.GetByEmployeeMonth(ctx, employeeID, month)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, leave.ErrMonthlyRecordNotFound) {
		return leave.MonthlyLeaveRecord{}, fmt.Errorf("failed to get monthly record: %w", err)
	}

	record = leave.MonthlyLeaveRecord{
		ID:            uuid.NewString(),
		EmployeeID:    employeeID,
		EmpNo:         empNo,
		Month:         month,
		Year:          date.Year(),
		MonthNumber:   int(date.Month()),
		FinancialYear: FinancialYearOf(date),
		LeaveIDs:      []string{},
		Summary:       leave.MonthlySummary{},
	}

	created, err := s.records.Create(ctx, record)
	if err != nil {
		return leave.MonthlyLeaveRecord{}, fmt.Errorf("failed to create monthly record: %w", err)
	}
	return created, nil
}

// RecalculateMonthlyRecord implements leave.MonthlyService. It is the single
// source of truth for a month's summary: the record is rebuilt wholesale from
// approved leaves and splits, so calling it repeatedly without intervening
// data changes yields identical summaries.
func (s *MonthlyServiceImpl) RecalculateMonthlyRecord(ctx context.Context, employeeID, month string) (leave.MonthlyLeaveRecord, error) {
	year, mon, err := daterange.ParseMonthKey(month)
	if err != nil {
		return leave.MonthlyLeaveRecord{}, leave.ErrInvalidMonth
	}

	monthStart := time.Date(year, mon, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return leave.MonthlyLeaveRecord{}, fmt.Errorf("failed to get employee: %w", err)
	}

	record, err := s.GetOrCreateMonthlyRecord(ctx, employeeID, emp.EmpNo, monthStart)
	if err != nil {
		return leave.MonthlyLeaveRecord{}, err
	}

	// A request that has entered split state contributes through its splits
	// only; the splits exist specifically to subdivide it.
	requests, err := s.leaves.FindApprovedUnsplitOverlapping(ctx, employeeID, monthStart, monthEnd)
	if err != nil {
		return leave.MonthlyLeaveRecord{}, fmt.Errorf("failed to fetch leave requests: %w", err)
	}

	splits, err := s.splits.FindApprovedByEmployeeMonth(ctx, employeeID, month)
	if err != nil {
		return leave.MonthlyLeaveRecord{}, fmt.Errorf("failed to fetch leave splits: %w", err)
	}

	b := newSummaryBuilder()

	for _, lr := range requests {
		nature := s.resolver.ResolveFor(ctx, lr.LeaveType, lr.LeaveNature)
		for d := daterange.DayOf(lr.FromDate); !d.After(daterange.DayOf(lr.ToDate)); d = d.AddDate(0, 0, 1) {
			if d.Before(monthStart) || d.After(monthEnd) {
				continue
			}
			weight := 1.0
			if lr.IsHalfDay {
				weight = 0.5
			}
			b.add(lr.ID, lr.LeaveType, nature, weight)
		}
	}

	for _, sp := range splits {
		nature := s.resolver.ResolveFor(ctx, sp.LeaveType, sp.LeaveNature)
		b.add(sp.LeaveRequestID, sp.LeaveType, nature, sp.NumberOfDays)
	}

	summary, leaveIDs := b.build()

	if err := s.records.Replace(ctx, record.ID, leaveIDs, summary); err != nil {
		return leave.MonthlyLeaveRecord{}, fmt.Errorf("failed to replace monthly record: %w", err)
	}

	record.LeaveIDs = leaveIDs
	record.Summary = summary
	return record, nil
}

// CalculateLeaveBalance implements leave.MonthlyService. The balance never
// goes negative regardless of how much unpaid leave was consumed.
func (s *MonthlyServiceImpl) CalculateLeaveBalance(ctx context.Context, employeeID, financialYear string) (leave.LeaveBalance, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to get employee: %w", err)
	}

	records, err := s.records.FindByEmployeeFinancialYear(ctx, employeeID, financialYear)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to fetch monthly records: %w", err)
	}

	var used float64
	for _, r := range records {
		used += r.Summary.WithoutPayLeaves + r.Summary.LOPLeaves
	}

	balance := emp.AllottedLeaves - used
	if balance < 0 {
		balance = 0
	}

	return leave.LeaveBalance{
		EmployeeID:    employeeID,
		FinancialYear: financialYear,
		Allotted:      emp.AllottedLeaves,
		Used:          used,
		Balance:       balance,
	}, nil
}

// GetCurrentLeaveBalance implements leave.MonthlyService.
func (s *MonthlyServiceImpl) GetCurrentLeaveBalance(ctx context.Context, employeeID string) (leave.LeaveBalance, error) {
	return s.CalculateLeaveBalance(ctx, employeeID, FinancialYearOf(s.clk.Now()))
}

// UpdateMonthlyRecordOnLeaveAction implements leave.MonthlyService. The action
// only documents intent; the recompute is unconditional and idempotent —
// rejected and cancelled requests drop out of the approved query filter, which
// is what actually excludes them.
func (s *MonthlyServiceImpl) UpdateMonthlyRecordOnLeaveAction(ctx context.Context, request leave.LeaveRequest, action leave.LeaveAction) error {
	first := time.Date(request.FromDate.Year(), request.FromDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(request.ToDate.Year(), request.ToDate.Month(), 1, 0, 0, 0, 0, time.UTC)

	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		if _, err := s.RecalculateMonthlyRecord(ctx, request.EmployeeID, daterange.MonthKey(m)); err != nil {
			return fmt.Errorf("failed to recalculate month %s after %s: %w", daterange.MonthKey(m), action, err)
		}
	}
	return nil
}

// summaryBuilder accumulates day units into the month summary with explicit
// get-or-insert buckets, preserving first-seen ordering so recomputes over
// identically ordered inputs build identical summaries.
type summaryBuilder struct {
	summary leave.MonthlySummary

	typeBuckets map[string]*leave.LeaveTypeBreakdown
	typeOrder   []string

	natureBuckets map[leave.LeaveNature]*leave.LeaveNatureBreakdown
	natureOrder   []leave.LeaveNature

	leaveIDs []string
	seenIDs  map[string]bool
}

func newSummaryBuilder() *summaryBuilder {
	return &summaryBuilder{
		typeBuckets:   make(map[string]*leave.LeaveTypeBreakdown),
		natureBuckets: make(map[leave.LeaveNature]*leave.LeaveNatureBreakdown),
		seenIDs:       make(map[string]bool),
	}
}

func (b *summaryBuilder) add(leaveID, leaveType string, nature leave.LeaveNature, days float64) {
	b.summary.TotalLeaves += days
	switch nature {
	case leave.NatureWithoutPay:
		b.summary.WithoutPayLeaves += days
	case leave.NatureLOP:
		b.summary.LOPLeaves += days
	case leave.NaturePaid:
		b.summary.PaidLeaves += days
	default:
		b.summary.PaidLeaves += days
	}

	tb := b.typeBucket(leaveType)
	tb.Days += days
	tb.LeaveIDs = appendUnique(tb.LeaveIDs, leaveID)

	nb := b.natureBucket(nature)
	nb.Days += days
	nb.LeaveIDs = appendUnique(nb.LeaveIDs, leaveID)

	if !b.seenIDs[leaveID] {
		b.seenIDs[leaveID] = true
		b.leaveIDs = append(b.leaveIDs, leaveID)
	}
}

func (b *summaryBuilder) typeBucket(leaveType string) *leave.LeaveTypeBreakdown {
	if bucket, ok := b.typeBuckets[leaveType]; ok {
		return bucket
	}
	bucket := &leave.LeaveTypeBreakdown{LeaveType: leaveType}
	b.typeBuckets[leaveType] = bucket
	b.typeOrder = append(b.typeOrder, leaveType)
	return bucket
}

func (b *summaryBuilder) natureBucket(nature leave.LeaveNature) *leave.LeaveNatureBreakdown {
	if bucket, ok := b.natureBuckets[nature]; ok {
		return bucket
	}
	bucket := &leave.LeaveNatureBreakdown{LeaveNature: nature}
	b.natureBuckets[nature] = bucket
	b.natureOrder = append(b.natureOrder, nature)
	return bucket
}

func (b *summaryBuilder) build() (leave.MonthlySummary, []string) {
	for _, t := range b.typeOrder {
		b.summary.LeaveTypesBreakdown = append(b.summary.LeaveTypesBreakdown, *b.typeBuckets[t])
	}
	for _, n := range b.natureOrder {
		b.summary.LeaveNaturesBreakdown = append(b.summary.LeaveNaturesBreakdown, *b.natureBuckets[n])
	}
	if b.leaveIDs == nil {
		b.leaveIDs = []string{}
	}
	return b.summary, b.leaveIDs
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
