package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
)

type rosterRepositoryImpl struct {
	db *database.DB
}

func NewRosterRepository(db *database.DB) schedule.RosterRepository {
	return &rosterRepositoryImpl{db: db}
}

func (r *rosterRepositoryImpl) FindByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]schedule.RosterEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, emp_no, date, shift_id, shift_name, status, payable_shift,
			   created_at, updated_at
		FROM roster_entries
		WHERE employee_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []schedule.RosterEntry
	for rows.Next() {
		var e schedule.RosterEntry
		err := rows.Scan(
			&e.ID,
			&e.EmployeeID,
			&e.EmpNo,
			&e.Date,
			&e.ShiftID,
			&e.ShiftName,
			&e.Status,
			&e.PayableShift,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
