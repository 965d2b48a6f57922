package leave

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
)

// natureResolver maps leave-type codes to pay natures using the active
// leave-type configuration. It never returns an error: lookup failures and
// unknown codes default to paid so payroll resolution can always proceed.
type natureResolver struct {
	leaveTypes leave.LeaveTypeRepository
}

func NewNatureResolver(leaveTypeRepo leave.LeaveTypeRepository) leave.NatureResolver {
	return &natureResolver{leaveTypes: leaveTypeRepo}
}

// Resolve implements leave.NatureResolver.
func (r *natureResolver) Resolve(ctx context.Context, code string) leave.LeaveNature {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return leave.NaturePaid
	}

	lt, err := r.leaveTypes.GetActiveByCode(ctx, code)
	if err != nil {
		// Not-found and transient lookup errors both default to paid; the
		// resolver must never surface an error to callers.
		slog.Debug("leave nature lookup failed, defaulting to paid", "code", code, "error", err)
		return leave.NaturePaid
	}

	if lt.LeaveNature != "" {
		return lt.LeaveNature
	}
	return leave.NaturePaid
}

// ResolveFor implements leave.NatureResolver. An explicit nature on the leave
// record always wins over configuration.
func (r *natureResolver) ResolveFor(ctx context.Context, code string, explicit leave.LeaveNature) leave.LeaveNature {
	if explicit != "" {
		return explicit
	}
	return r.Resolve(ctx, code)
}
