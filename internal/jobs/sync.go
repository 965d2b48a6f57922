package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/clock"
	"github.com/hibiken/asynq"
)

// SyncJobs hosts the Asynq handlers of the pay-register resync tasks.
type SyncJobs struct {
	sync      payroll.SyncService
	employees employee.EmployeeRepository
	clk       clock.Clock
	logger    *slog.Logger
}

func NewSyncJobs(
	syncService payroll.SyncService,
	employeeRepo employee.EmployeeRepository,
	clk clock.Clock,
	logger *slog.Logger,
) *SyncJobs {
	return &SyncJobs{
		sync:      syncService,
		employees: employeeRepo,
		clk:       clk,
		logger:    logger,
	}
}

// HandleLeaveSync processes TaskSyncFromLeave tasks.
func (j *SyncJobs) HandleLeaveSync(ctx context.Context, t *asynq.Task) error {
	return j.handleSpanSync(ctx, t, j.sync.SyncPayRegisterFromLeave)
}

// HandleODSync processes TaskSyncFromOD tasks.
func (j *SyncJobs) HandleODSync(ctx context.Context, t *asynq.Task) error {
	return j.handleSpanSync(ctx, t, j.sync.SyncPayRegisterFromOD)
}

// HandleOTSync processes TaskSyncFromOT tasks.
func (j *SyncJobs) HandleOTSync(ctx context.Context, t *asynq.Task) error {
	return j.handleSpanSync(ctx, t, j.sync.SyncPayRegisterFromOT)
}

func (j *SyncJobs) handleSpanSync(ctx context.Context, t *asynq.Task, fn func(context.Context, payroll.ChangeEvent) payroll.SyncReport) error {
	var ev payroll.ChangeEvent
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		return asynq.SkipRetry
	}

	report := fn(ctx, ev)
	j.logReport(t.Type(), report)

	// Failed months are retried as a whole task; skips and successes are final.
	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d months failed to sync", len(failed), len(report.Results))
	}
	return nil
}

func (j *SyncJobs) logReport(taskType string, report payroll.SyncReport) {
	synced, skipped := 0, 0
	for _, res := range report.Results {
		switch res.Outcome {
		case payroll.SyncDone:
			synced++
		case payroll.SyncFailed:
		default:
			skipped++
		}
	}
	j.logger.Info("pay register sync report",
		"task", taskType,
		"employee_id", report.EmployeeID,
		"source", report.Source,
		"synced", synced,
		"skipped", skipped,
		"failed", len(report.Failed()))
}

// HandlePeriodicResync processes TaskPeriodicResync tasks: one full pass over
// every active employee for the current payroll month. Per-employee failures
// are logged and never abort the sweep.
func (j *SyncJobs) HandlePeriodicResync(ctx context.Context, t *asynq.Task) error {
	now := j.clk.Now()
	year, month := now.Year(), int(now.Month())

	employees, err := j.employees.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	var failed int
	for _, emp := range employees {
		res := j.sync.ResyncMonth(ctx, emp.ID, emp.EmpNo, year, month)
		if res.Outcome == payroll.SyncFailed {
			failed++
			j.logger.Error("periodic resync failed",
				"employee_id", emp.ID, "month", res.Month, "reason", res.Reason, "error", res.Err)
		}
	}

	j.logger.Info("periodic resync finished",
		"month", fmt.Sprintf("%04d-%02d", year, month),
		"employees", len(employees),
		"failed", failed)
	return nil
}
