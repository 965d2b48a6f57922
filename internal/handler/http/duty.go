package http

import (
	"net/http"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/duty"
	"github.com/cmlabs-hris/payreg-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payreg-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type DutyHandler interface {
	ApproveOfficialDuty(w http.ResponseWriter, r *http.Request)
	RejectOfficialDuty(w http.ResponseWriter, r *http.Request)
	ApproveOvertime(w http.ResponseWriter, r *http.Request)
	RejectOvertime(w http.ResponseWriter, r *http.Request)
}

type DutyHandlerImpl struct {
	dutyService duty.DutyService
}

func NewDutyHandler(dutyService duty.DutyService) DutyHandler {
	return &DutyHandlerImpl{dutyService: dutyService}
}

// ApproveOfficialDuty implements DutyHandler.
func (h *DutyHandlerImpl) ApproveOfficialDuty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Official duty ID is required", nil)
		return
	}

	od, err := h.dutyService.ApproveOfficialDuty(r.Context(), id, middleware.Actor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Official duty approved successfully", od)
}

// RejectOfficialDuty implements DutyHandler.
func (h *DutyHandlerImpl) RejectOfficialDuty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Official duty ID is required", nil)
		return
	}

	od, err := h.dutyService.RejectOfficialDuty(r.Context(), id, middleware.Actor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Official duty rejected successfully", od)
}

// ApproveOvertime implements DutyHandler.
func (h *DutyHandlerImpl) ApproveOvertime(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Overtime ID is required", nil)
		return
	}

	ot, err := h.dutyService.ApproveOvertime(r.Context(), id, middleware.Actor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime approved successfully", ot)
}

// RejectOvertime implements DutyHandler.
func (h *DutyHandlerImpl) RejectOvertime(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Overtime ID is required", nil)
		return
	}

	ot, err := h.dutyService.RejectOvertime(r.Context(), id, middleware.Actor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime rejected successfully", ot)
}
