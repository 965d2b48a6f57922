package postgresql

import (
	"context"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type monthlyRecordRepositoryImpl struct {
	db *database.DB
}

func NewMonthlyRecordRepository(db *database.DB) leave.MonthlyRecordRepository {
	return &monthlyRecordRepositoryImpl{db: db}
}

const monthlyRecordColumns = `
	id, employee_id, emp_no, month, year, month_number, financial_year,
	leave_ids, summary, created_at, updated_at
`

func scanMonthlyRecord(row pgx.Row) (leave.MonthlyLeaveRecord, error) {
	var rec leave.MonthlyLeaveRecord
	err := row.Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.EmpNo,
		&rec.Month,
		&rec.Year,
		&rec.MonthNumber,
		&rec.FinancialYear,
		&rec.LeaveIDs,
		&rec.Summary,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}

func (r *monthlyRecordRepositoryImpl) Create(ctx context.Context, record leave.MonthlyLeaveRecord) (leave.MonthlyLeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO monthly_leave_records (
			id, employee_id, emp_no, month, year, month_number, financial_year,
			leave_ids, summary, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, NOW(), NOW()
		)
		ON CONFLICT (employee_id, month) DO NOTHING
	`

	_, err := q.Exec(ctx, query,
		record.ID,
		record.EmployeeID,
		record.EmpNo,
		record.Month,
		record.Year,
		record.MonthNumber,
		record.FinancialYear,
		record.LeaveIDs,
		record.Summary,
	)
	if err != nil {
		return leave.MonthlyLeaveRecord{}, err
	}

	return r.GetByEmployeeMonth(ctx, record.EmployeeID, record.Month)
}

func (r *monthlyRecordRepositoryImpl) GetByEmployeeMonth(ctx context.Context, employeeID, month string) (leave.MonthlyLeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + monthlyRecordColumns + `
		FROM monthly_leave_records
		WHERE employee_id = $1 AND month = $2
	`

	rec, err := scanMonthlyRecord(q.QueryRow(ctx, query, employeeID, month))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.MonthlyLeaveRecord{}, leave.ErrMonthlyRecordNotFound
		}
		return leave.MonthlyLeaveRecord{}, err
	}
	return rec, nil
}

func (r *monthlyRecordRepositoryImpl) Replace(ctx context.Context, id string, leaveIDs []string, summary leave.MonthlySummary) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE monthly_leave_records
		SET leave_ids = $2, summary = $3, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query, id, leaveIDs, summary)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrMonthlyRecordNotFound
	}
	return nil
}

func (r *monthlyRecordRepositoryImpl) FindByEmployeeFinancialYear(ctx context.Context, employeeID, financialYear string) ([]leave.MonthlyLeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + monthlyRecordColumns + `
		FROM monthly_leave_records
		WHERE employee_id = $1 AND financial_year = $2
		ORDER BY month ASC
	`

	rows, err := q.Query(ctx, query, employeeID, financialYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []leave.MonthlyLeaveRecord
	for rows.Next() {
		rec, err := scanMonthlyRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
