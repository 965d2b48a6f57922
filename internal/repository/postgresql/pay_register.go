package postgresql

import (
	"context"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payRegisterRepositoryImpl struct {
	db *database.DB
}

func NewPayRegisterRepository(db *database.DB) payroll.PayRegisterRepository {
	return &payRegisterRepositoryImpl{db: db}
}

const payRegisterColumns = `
	id, employee_id, emp_no, month, year, days, totals, edit_history,
	last_leave_sync_at, last_od_sync_at, last_ot_sync_at, created_at, updated_at
`

func scanPayRegister(row pgx.Row) (payroll.PayRegister, error) {
	var p payroll.PayRegister
	err := row.Scan(
		&p.ID,
		&p.EmployeeID,
		&p.EmpNo,
		&p.Month,
		&p.Year,
		&p.Days,
		&p.Totals,
		&p.EditHistory,
		&p.LastLeaveSyncAt,
		&p.LastODSyncAt,
		&p.LastOTSyncAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *payRegisterRepositoryImpl) Create(ctx context.Context, register payroll.PayRegister) (payroll.PayRegister, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO pay_registers (
			id, employee_id, emp_no, month, year, days, totals, edit_history,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			NOW(), NOW()
		)
		ON CONFLICT (employee_id, month) DO NOTHING
	`

	_, err := q.Exec(ctx, query,
		register.ID,
		register.EmployeeID,
		register.EmpNo,
		register.Month,
		register.Year,
		register.Days,
		register.Totals,
		register.EditHistory,
	)
	if err != nil {
		return payroll.PayRegister{}, err
	}

	return r.GetByEmployeeMonth(ctx, register.EmployeeID, register.Month)
}

func (r *payRegisterRepositoryImpl) GetByEmployeeMonth(ctx context.Context, employeeID, month string) (payroll.PayRegister, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payRegisterColumns + `
		FROM pay_registers
		WHERE employee_id = $1 AND month = $2
	`

	p, err := scanPayRegister(q.QueryRow(ctx, query, employeeID, month))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayRegister{}, payroll.ErrPayRegisterNotFound
		}
		return payroll.PayRegister{}, err
	}
	return p, nil
}

func (r *payRegisterRepositoryImpl) ReplaceDays(ctx context.Context, id string, days payroll.DayRecords, totals payroll.RegisterTotals, source payroll.SyncSource) error {
	q := GetQuerier(ctx, r.db)

	// A manual or periodic full sync refreshes every source timestamp.
	query := `
		UPDATE pay_registers
		SET days = $2, totals = $3,
			last_leave_sync_at = CASE WHEN $4 IN ('leaves', 'manual') THEN NOW() ELSE last_leave_sync_at END,
			last_od_sync_at    = CASE WHEN $4 IN ('ods', 'manual')    THEN NOW() ELSE last_od_sync_at END,
			last_ot_sync_at    = CASE WHEN $4 IN ('ot', 'manual')     THEN NOW() ELSE last_ot_sync_at END,
			updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query, id, days, totals, source)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return payroll.ErrPayRegisterNotFound
	}
	return nil
}

func (r *payRegisterRepositoryImpl) ListEmployeeIDsWithMonth(ctx context.Context, month string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id
		FROM pay_registers
		WHERE month = $1
		ORDER BY emp_no ASC
	`

	rows, err := q.Query(ctx, query, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
