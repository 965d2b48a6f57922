package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
)

type attendanceImporterImpl struct {
	db *database.DB
}

// NewAttendanceImporter imports punch data staged by the external attendance
// collector into the attendances table.
func NewAttendanceImporter(db *database.DB) attendance.Importer {
	return &attendanceImporterImpl{db: db}
}

func (r *attendanceImporterImpl) ImportRange(ctx context.Context, employeeID string, from, to time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			id, employee_id, emp_no, date, status,
			first_punch, last_punch, worked_mins, shift_id, shift_name,
			created_at, updated_at
		)
		SELECT s.id, s.employee_id, s.emp_no, s.date, s.status,
			   s.first_punch, s.last_punch, s.worked_mins, s.shift_id, s.shift_name,
			   NOW(), NOW()
		FROM attendance_staging s
		WHERE s.employee_id = $1 AND s.date >= $2 AND s.date <= $3
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			first_punch = EXCLUDED.first_punch,
			last_punch = EXCLUDED.last_punch,
			worked_mins = EXCLUDED.worked_mins,
			shift_id = EXCLUDED.shift_id,
			shift_name = EXCLUDED.shift_name,
			updated_at = NOW()
	`

	_, err := q.Exec(ctx, query, employeeID, from, to)
	return err
}
