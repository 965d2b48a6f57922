package duty

import "context"

// DutyService is the approval-workflow surface for OD and OT requests. Status
// changes here are what trigger pay-register resync.
type DutyService interface {
	ApproveOfficialDuty(ctx context.Context, id, approverID string) (OfficialDuty, error)
	RejectOfficialDuty(ctx context.Context, id, approverID string) (OfficialDuty, error)
	ApproveOvertime(ctx context.Context, id, approverID string) (Overtime, error)
	RejectOvertime(ctx context.Context, id, approverID string) (Overtime, error)
}
