package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	id, employee_id, emp_no, from_date, to_date,
	is_half_day, half_day_type, leave_type, leave_nature,
	number_of_days, reason, status,
	approved_by, approved_at, rejection_reason, cancelled_at,
	split_status, split_history, original_leave_type,
	created_at, updated_at
`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.EmployeeID,
		&lr.EmpNo,
		&lr.FromDate,
		&lr.ToDate,
		&lr.IsHalfDay,
		&lr.HalfDayType,
		&lr.LeaveType,
		&lr.LeaveNature,
		&lr.NumberOfDays,
		&lr.Reason,
		&lr.Status,
		&lr.ApprovedBy,
		&lr.ApprovedAt,
		&lr.RejectionReason,
		&lr.CancelledAt,
		&lr.SplitStatus,
		&lr.SplitHistory,
		&lr.OriginalLeaveType,
		&lr.CreatedAt,
		&lr.UpdatedAt,
	)
	return lr, err
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, employee_id, emp_no, from_date, to_date,
			is_half_day, half_day_type, leave_type, leave_nature,
			number_of_days, reason, status,
			split_status, original_leave_type,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12,
			$13, $14,
			NOW(), NOW()
		)
	`

	_, err := q.Exec(ctx, query,
		request.ID,
		request.EmployeeID,
		request.EmpNo,
		request.FromDate,
		request.ToDate,
		request.IsHalfDay,
		request.HalfDayType,
		request.LeaveType,
		request.LeaveNature,
		request.NumberOfDays,
		request.Reason,
		request.Status,
		request.SplitStatus,
		request.OriginalLeaveType,
	)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return r.GetByID(ctx, request.ID)
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE id = $1
	`

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}
	return lr, nil
}

func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET leave_type = $2, leave_nature = $3, number_of_days = $4, reason = $5,
			status = $6, split_status = $7, split_history = $8, original_leave_type = $9,
			updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query,
		request.ID,
		request.LeaveType,
		request.LeaveNature,
		request.NumberOfDays,
		request.Reason,
		request.Status,
		request.SplitStatus,
		request.SplitHistory,
		request.OriginalLeaveType,
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.LeaveRequestStatus, actor string, reason *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2,
			approved_by = CASE WHEN $2 = 'approved' THEN $3 ELSE approved_by END,
			approved_at = CASE WHEN $2 = 'approved' THEN NOW() ELSE approved_at END,
			rejection_reason = CASE WHEN $2 = 'rejected' THEN $4 ELSE rejection_reason END,
			cancelled_at = CASE WHEN $2 = 'cancelled' THEN NOW() ELSE cancelled_at END,
			updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query, id, status, actor, reason)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepositoryImpl) FindApprovedUnsplitOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE employee_id = $1
			AND status = 'approved'
			AND (split_status IS NULL OR split_status = '')
			AND from_date <= $3
			AND to_date >= $2
		ORDER BY from_date ASC
	`

	return r.queryRequests(ctx, q, query, employeeID, from, to)
}

func (r *leaveRequestRepositoryImpl) FindApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE employee_id = $1
			AND status = 'approved'
			AND from_date <= $3
			AND to_date >= $2
		ORDER BY from_date ASC
	`

	return r.queryRequests(ctx, q, query, employeeID, from, to)
}

func (r *leaveRequestRepositoryImpl) queryRequests(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]leave.LeaveRequest, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}
