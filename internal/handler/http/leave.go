package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payreg-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payreg-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)

	ValidateSplits(w http.ResponseWriter, r *http.Request)
	CreateSplits(w http.ResponseWriter, r *http.Request)
	UpdateSplit(w http.ResponseWriter, r *http.Request)
	DeleteSplit(w http.ResponseWriter, r *http.Request)
	GetSplitSummary(w http.ResponseWriter, r *http.Request)

	GetMonthlyRecord(w http.ResponseWriter, r *http.Request)
	RecalculateMonthlyRecord(w http.ResponseWriter, r *http.Request)
	GetLeaveBalance(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	requestService leave.RequestService
	splitService   leave.SplitService
	monthlyService leave.MonthlyService
}

func NewLeaveHandler(
	requestService leave.RequestService,
	splitService leave.SplitService,
	monthlyService leave.MonthlyService,
) LeaveHandler {
	return &LeaveHandlerImpl{
		requestService: requestService,
		splitService:   splitService,
		monthlyService: monthlyService,
	}
}

// CreateRequest implements LeaveHandler.
func (h *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.ApplyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.requestService.Apply(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request created successfully", created)
}

// GetRequest implements LeaveHandler.
func (h *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	request, err := h.requestService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, request)
}

// ApproveRequest implements LeaveHandler.
func (h *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	request, err := h.requestService.Approve(r.Context(), id, middleware.Actor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved successfully", request)
}

// RejectRequest implements LeaveHandler.
func (h *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	request, err := h.requestService.Reject(r.Context(), id, body.Reason, middleware.Actor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected successfully", request)
}

// CancelRequest implements LeaveHandler.
func (h *LeaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	request, err := h.requestService.Cancel(r.Context(), id, middleware.Actor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled successfully", request)
}

type splitSetRequest struct {
	Splits []leave.SplitInput `json:"splits"`
}

// ValidateSplits implements LeaveHandler.
func (h *LeaveHandlerImpl) ValidateSplits(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	var req splitSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.splitService.ValidateSplits(r.Context(), id, req.Splits)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateSplits implements LeaveHandler.
func (h *LeaveHandlerImpl) CreateSplits(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	var req splitSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.splitService.CreateSplits(r.Context(), id, req.Splits, middleware.Actor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !result.IsValid {
		response.UnprocessableEntity(w, "Split validation failed", result)
		return
	}

	response.Created(w, "Leave splits created successfully", result)
}

// UpdateSplit implements LeaveHandler.
func (h *LeaveHandlerImpl) UpdateSplit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "splitId")
	if id == "" {
		response.BadRequest(w, "Split ID is required", nil)
		return
	}

	var req leave.UpdateSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.SplitID = id

	split, err := h.splitService.UpdateSplit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave split updated successfully", split)
}

// DeleteSplit implements LeaveHandler.
func (h *LeaveHandlerImpl) DeleteSplit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "splitId")
	if id == "" {
		response.BadRequest(w, "Split ID is required", nil)
		return
	}

	if err := h.splitService.DeleteSplit(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave split deleted successfully", nil)
}

// GetSplitSummary implements LeaveHandler.
func (h *LeaveHandlerImpl) GetSplitSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	summary, err := h.splitService.GetSplitSummary(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// GetMonthlyRecord implements LeaveHandler.
func (h *LeaveHandlerImpl) GetMonthlyRecord(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	month := chi.URLParam(r, "month")
	if employeeID == "" || month == "" {
		response.BadRequest(w, "Employee ID and month are required", nil)
		return
	}

	monthDate, err := time.Parse("2006-01", month)
	if err != nil {
		response.HandleError(w, leave.ErrInvalidMonth)
		return
	}

	record, err := h.monthlyService.GetOrCreateMonthlyRecord(r.Context(), employeeID, "", monthDate)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// RecalculateMonthlyRecord implements LeaveHandler.
func (h *LeaveHandlerImpl) RecalculateMonthlyRecord(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	month := chi.URLParam(r, "month")
	if employeeID == "" || month == "" {
		response.BadRequest(w, "Employee ID and month are required", nil)
		return
	}

	record, err := h.monthlyService.RecalculateMonthlyRecord(r.Context(), employeeID, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Monthly leave record recalculated successfully", record)
}

// GetLeaveBalance implements LeaveHandler.
func (h *LeaveHandlerImpl) GetLeaveBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	if fy := r.URL.Query().Get("financial_year"); fy != "" {
		balance, err := h.monthlyService.CalculateLeaveBalance(r.Context(), employeeID, fy)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, balance)
		return
	}

	balance, err := h.monthlyService.GetCurrentLeaveBalance(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balance)
}
