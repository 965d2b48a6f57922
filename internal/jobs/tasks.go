package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskSyncFromLeave reconciles pay registers after a leave status change.
	TaskSyncFromLeave = "pay_register:sync_leave"
	// TaskSyncFromOD reconciles pay registers after an official-duty status change.
	TaskSyncFromOD = "pay_register:sync_od"
	// TaskSyncFromOT patches pay-register OT hours after an overtime status change.
	TaskSyncFromOT = "pay_register:sync_ot"
	// TaskPeriodicResync sweeps every materialized register of the current
	// payroll month.
	TaskPeriodicResync = "pay_register:periodic_resync"
)

// NewSyncTask constructs an Asynq task of taskType carrying a change event.
func NewSyncTask(taskType string, ev payroll.ChangeEvent) (*asynq.Task, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

// Enqueuer submits resync jobs to the queue. It is the payroll.ResyncEnqueuer
// used by the approval workflows.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(redisOpts asynq.RedisClientOpt) *Enqueuer {
	return &Enqueuer{client: asynq.NewClient(redisOpts)}
}

// EnqueueLeaveResync implements payroll.ResyncEnqueuer.
func (e *Enqueuer) EnqueueLeaveResync(ctx context.Context, ev payroll.ChangeEvent) error {
	return e.enqueue(ctx, TaskSyncFromLeave, ev)
}

// EnqueueODResync implements payroll.ResyncEnqueuer.
func (e *Enqueuer) EnqueueODResync(ctx context.Context, ev payroll.ChangeEvent) error {
	return e.enqueue(ctx, TaskSyncFromOD, ev)
}

// EnqueueOTResync implements payroll.ResyncEnqueuer.
func (e *Enqueuer) EnqueueOTResync(ctx context.Context, ev payroll.ChangeEvent) error {
	return e.enqueue(ctx, TaskSyncFromOT, ev)
}

func (e *Enqueuer) enqueue(ctx context.Context, taskType string, ev payroll.ChangeEvent) error {
	task, err := NewSyncTask(taskType, ev)
	if err != nil {
		return err
	}
	// Identical events enqueued within the window collapse into one task.
	// Recomputes are full replacements, so a dropped duplicate changes nothing.
	_, err = e.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.Unique(time.Minute))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// Close releases client resources.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}
