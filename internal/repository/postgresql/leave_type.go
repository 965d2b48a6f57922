package postgresql

import (
	"context"
	"strings"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

func (r *leaveTypeRepositoryImpl) GetActiveByCode(ctx context.Context, code string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, name, is_active, is_paid, leave_nature, max_days_per_year, created_at, updated_at
		FROM leave_types
		WHERE UPPER(code) = $1 AND is_active = true
	`

	var lt leave.LeaveType
	err := q.QueryRow(ctx, query, strings.ToUpper(code)).Scan(
		&lt.ID,
		&lt.Code,
		&lt.Name,
		&lt.IsActive,
		&lt.IsPaid,
		&lt.LeaveNature,
		&lt.MaxDaysPerYear,
		&lt.CreatedAt,
		&lt.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, err
	}
	return lt, nil
}

func (r *leaveTypeRepositoryImpl) ListActive(ctx context.Context) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, name, is_active, is_paid, leave_nature, max_days_per_year, created_at, updated_at
		FROM leave_types
		WHERE is_active = true
		ORDER BY code ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []leave.LeaveType
	for rows.Next() {
		var lt leave.LeaveType
		err := rows.Scan(
			&lt.ID,
			&lt.Code,
			&lt.Name,
			&lt.IsActive,
			&lt.IsPaid,
			&lt.LeaveNature,
			&lt.MaxDaysPerYear,
			&lt.CreatedAt,
			&lt.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		types = append(types, lt)
	}
	return types, rows.Err()
}
