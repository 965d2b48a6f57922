package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/duty"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type officialDutyRepositoryImpl struct {
	db *database.DB
}

func NewOfficialDutyRepository(db *database.DB) duty.OfficialDutyRepository {
	return &officialDutyRepositoryImpl{db: db}
}

const officialDutyColumns = `
	id, employee_id, emp_no, from_date, to_date,
	is_half_day, half_day_type, purpose, status,
	approved_by, approved_at, created_at, updated_at
`

func scanOfficialDuty(row pgx.Row) (duty.OfficialDuty, error) {
	var od duty.OfficialDuty
	err := row.Scan(
		&od.ID,
		&od.EmployeeID,
		&od.EmpNo,
		&od.FromDate,
		&od.ToDate,
		&od.IsHalfDay,
		&od.HalfDayType,
		&od.Purpose,
		&od.Status,
		&od.ApprovedBy,
		&od.ApprovedAt,
		&od.CreatedAt,
		&od.UpdatedAt,
	)
	return od, err
}

func (r *officialDutyRepositoryImpl) GetByID(ctx context.Context, id string) (duty.OfficialDuty, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + officialDutyColumns + ` FROM official_duties WHERE id = $1`

	od, err := scanOfficialDuty(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return duty.OfficialDuty{}, duty.ErrOfficialDutyNotFound
		}
		return duty.OfficialDuty{}, err
	}
	return od, nil
}

func (r *officialDutyRepositoryImpl) UpdateStatus(ctx context.Context, id string, status duty.DutyStatus, actor string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE official_duties
		SET status = $2, approved_by = $3, approved_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query, id, status, actor)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return duty.ErrOfficialDutyNotFound
	}
	return nil
}

func (r *officialDutyRepositoryImpl) FindApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]duty.OfficialDuty, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + officialDutyColumns + `
		FROM official_duties
		WHERE employee_id = $1
			AND status = 'approved'
			AND from_date <= $3
			AND to_date >= $2
		ORDER BY from_date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var duties []duty.OfficialDuty
	for rows.Next() {
		od, err := scanOfficialDuty(rows)
		if err != nil {
			return nil, err
		}
		duties = append(duties, od)
	}
	return duties, rows.Err()
}
