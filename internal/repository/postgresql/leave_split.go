package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveSplitRepositoryImpl struct {
	db *database.DB
}

func NewLeaveSplitRepository(db *database.DB) leave.LeaveSplitRepository {
	return &leaveSplitRepositoryImpl{db: db}
}

const leaveSplitColumns = `
	id, leave_request_id, employee_id, emp_no, date, month,
	leave_type, leave_nature, is_half_day, half_day_type,
	number_of_days, status, original_leave_type, reason,
	split_by, split_at
`

func scanLeaveSplit(row pgx.Row) (leave.LeaveSplit, error) {
	var sp leave.LeaveSplit
	err := row.Scan(
		&sp.ID,
		&sp.LeaveRequestID,
		&sp.EmployeeID,
		&sp.EmpNo,
		&sp.Date,
		&sp.Month,
		&sp.LeaveType,
		&sp.LeaveNature,
		&sp.IsHalfDay,
		&sp.HalfDayType,
		&sp.NumberOfDays,
		&sp.Status,
		&sp.OriginalLeaveType,
		&sp.Reason,
		&sp.SplitBy,
		&sp.SplitAt,
	)
	return sp, err
}

func (r *leaveSplitRepositoryImpl) CreateBatch(ctx context.Context, splits []leave.LeaveSplit) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_splits (
			id, leave_request_id, employee_id, emp_no, date, month,
			leave_type, leave_nature, is_half_day, half_day_type,
			number_of_days, status, original_leave_type, reason,
			split_by, split_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16
		)
	`

	for _, sp := range splits {
		_, err := q.Exec(ctx, query,
			sp.ID,
			sp.LeaveRequestID,
			sp.EmployeeID,
			sp.EmpNo,
			sp.Date,
			sp.Month,
			sp.LeaveType,
			sp.LeaveNature,
			sp.IsHalfDay,
			sp.HalfDayType,
			sp.NumberOfDays,
			sp.Status,
			sp.OriginalLeaveType,
			sp.Reason,
			sp.SplitBy,
			sp.SplitAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *leaveSplitRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveSplit, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveSplitColumns + ` FROM leave_splits WHERE id = $1`

	sp, err := scanLeaveSplit(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveSplit{}, leave.ErrLeaveSplitNotFound
		}
		return leave.LeaveSplit{}, err
	}
	return sp, nil
}

func (r *leaveSplitRepositoryImpl) GetByLeaveRequestID(ctx context.Context, leaveRequestID string) ([]leave.LeaveSplit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveSplitColumns + `
		FROM leave_splits
		WHERE leave_request_id = $1
		ORDER BY date ASC, half_day_type ASC
	`

	return r.querySplits(ctx, q, query, leaveRequestID)
}

func (r *leaveSplitRepositoryImpl) Update(ctx context.Context, split leave.LeaveSplit) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_splits
		SET leave_type = $2, leave_nature = $3, status = $4, reason = $5
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query,
		split.ID,
		split.LeaveType,
		split.LeaveNature,
		split.Status,
		split.Reason,
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveSplitNotFound
	}
	return nil
}

func (r *leaveSplitRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM leave_splits WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveSplitNotFound
	}
	return nil
}

func (r *leaveSplitRepositoryImpl) DeleteByLeaveRequestID(ctx context.Context, leaveRequestID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `DELETE FROM leave_splits WHERE leave_request_id = $1`, leaveRequestID)
	return err
}

func (r *leaveSplitRepositoryImpl) FindApprovedByEmployeeMonth(ctx context.Context, employeeID, month string) ([]leave.LeaveSplit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveSplitColumns + `
		FROM leave_splits
		WHERE employee_id = $1 AND month = $2 AND status = 'approved'
		ORDER BY date ASC, half_day_type ASC
	`

	return r.querySplits(ctx, q, query, employeeID, month)
}

func (r *leaveSplitRepositoryImpl) FindApprovedByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveSplit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveSplitColumns + `
		FROM leave_splits
		WHERE employee_id = $1 AND date >= $2 AND date <= $3 AND status = 'approved'
		ORDER BY date ASC, half_day_type ASC
	`

	return r.querySplits(ctx, q, query, employeeID, from, to)
}

func (r *leaveSplitRepositoryImpl) SumApprovedDaysByTypeYear(ctx context.Context, employeeID, leaveType string, year int) (float64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(number_of_days), 0)
		FROM leave_splits
		WHERE employee_id = $1
			AND UPPER(leave_type) = UPPER($2)
			AND status = 'approved'
			AND EXTRACT(YEAR FROM date) = $3
	`

	var total float64
	if err := q.QueryRow(ctx, query, employeeID, leaveType, year).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *leaveSplitRepositoryImpl) querySplits(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]leave.LeaveSplit, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var splits []leave.LeaveSplit
	for rows.Next() {
		sp, err := scanLeaveSplit(rows)
		if err != nil {
			return nil, err
		}
		splits = append(splits, sp)
	}
	return splits, rows.Err()
}
