package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `
	id, employee_id, emp_no, date, status,
	first_punch, last_punch, worked_mins, shift_id, shift_name,
	created_at, updated_at
`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID,
		&a.EmployeeID,
		&a.EmpNo,
		&a.Date,
		&a.Status,
		&a.FirstPunch,
		&a.LastPunch,
		&a.WorkedMins,
		&a.ShiftID,
		&a.ShiftName,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *attendanceRepositoryImpl) GetByEmployeeDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND date = $2
	`

	a, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, err
	}
	return a, nil
}

func (r *attendanceRepositoryImpl) FindByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		attendances = append(attendances, a)
	}
	return attendances, rows.Err()
}

func (r *attendanceRepositoryImpl) Upsert(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			id, employee_id, emp_no, date, status,
			first_punch, last_punch, worked_mins, shift_id, shift_name,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			NOW(), NOW()
		)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			first_punch = EXCLUDED.first_punch,
			last_punch = EXCLUDED.last_punch,
			worked_mins = EXCLUDED.worked_mins,
			shift_id = EXCLUDED.shift_id,
			shift_name = EXCLUDED.shift_name,
			updated_at = NOW()
	`

	_, err := q.Exec(ctx, query,
		att.ID,
		att.EmployeeID,
		att.EmpNo,
		att.Date,
		att.Status,
		att.FirstPunch,
		att.LastPunch,
		att.WorkedMins,
		att.ShiftID,
		att.ShiftName,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	return r.GetByEmployeeDate(ctx, att.EmployeeID, att.Date)
}
