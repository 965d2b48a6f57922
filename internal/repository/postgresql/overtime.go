package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/duty"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type overtimeRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) duty.OvertimeRepository {
	return &overtimeRepositoryImpl{db: db}
}

const overtimeColumns = `
	id, employee_id, emp_no, date, hours, status,
	approved_by, approved_at, created_at, updated_at
`

func scanOvertime(row pgx.Row) (duty.Overtime, error) {
	var ot duty.Overtime
	err := row.Scan(
		&ot.ID,
		&ot.EmployeeID,
		&ot.EmpNo,
		&ot.Date,
		&ot.Hours,
		&ot.Status,
		&ot.ApprovedBy,
		&ot.ApprovedAt,
		&ot.CreatedAt,
		&ot.UpdatedAt,
	)
	return ot, err
}

func (r *overtimeRepositoryImpl) GetByID(ctx context.Context, id string) (duty.Overtime, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overtimeColumns + ` FROM overtimes WHERE id = $1`

	ot, err := scanOvertime(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return duty.Overtime{}, duty.ErrOvertimeNotFound
		}
		return duty.Overtime{}, err
	}
	return ot, nil
}

func (r *overtimeRepositoryImpl) UpdateStatus(ctx context.Context, id string, status duty.DutyStatus, actor string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtimes
		SET status = $2, approved_by = $3, approved_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query, id, status, actor)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return duty.ErrOvertimeNotFound
	}
	return nil
}

func (r *overtimeRepositoryImpl) FindApprovedByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]duty.Overtime, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + overtimeColumns + `
		FROM overtimes
		WHERE employee_id = $1
			AND status = 'approved'
			AND date >= $2
			AND date <= $3
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overtimes []duty.Overtime
	for rows.Next() {
		ot, err := scanOvertime(rows)
		if err != nil {
			return nil, err
		}
		overtimes = append(overtimes, ot)
	}
	return overtimes, rows.Err()
}
