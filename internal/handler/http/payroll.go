package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payreg-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	GetRegister(w http.ResponseWriter, r *http.Request)
	PreviewRegister(w http.ResponseWriter, r *http.Request)
	ManualSync(w http.ResponseWriter, r *http.Request)
	ResyncMonth(w http.ResponseWriter, r *http.Request)
}

type PayrollHandlerImpl struct {
	registerService payroll.RegisterService
	syncService     payroll.SyncService
}

func NewPayrollHandler(registerService payroll.RegisterService, syncService payroll.SyncService) PayrollHandler {
	return &PayrollHandlerImpl{
		registerService: registerService,
		syncService:     syncService,
	}
}

func yearMonthParams(r *http.Request) (employeeID string, year, month int, ok bool) {
	employeeID = chi.URLParam(r, "employeeId")
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	ok = employeeID != "" && errY == nil && errM == nil && month >= 1 && month <= 12
	return employeeID, year, month, ok
}

// GetRegister implements PayrollHandler.
func (h *PayrollHandlerImpl) GetRegister(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	month := chi.URLParam(r, "month")
	if employeeID == "" || month == "" {
		response.BadRequest(w, "Employee ID and month are required", nil)
		return
	}

	register, err := h.registerService.GetRegister(r.Context(), employeeID, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, register)
}

// PreviewRegister implements PayrollHandler. Computes day records from the
// sources without persisting anything.
func (h *PayrollHandlerImpl) PreviewRegister(w http.ResponseWriter, r *http.Request) {
	employeeID, year, month, ok := yearMonthParams(r)
	if !ok {
		response.BadRequest(w, "Employee ID, year and month are required", nil)
		return
	}

	days, err := h.registerService.PopulatePayRegisterFromSources(r.Context(), employeeID, "", year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, days)
}

// ManualSync implements PayrollHandler.
func (h *PayrollHandlerImpl) ManualSync(w http.ResponseWriter, r *http.Request) {
	employeeID, year, month, ok := yearMonthParams(r)
	if !ok {
		response.BadRequest(w, "Employee ID, year and month are required", nil)
		return
	}

	register, err := h.registerService.ManualSyncPayRegister(r.Context(), employeeID, r.URL.Query().Get("emp_no"), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Pay register synced successfully", register)
}

// ResyncMonth implements PayrollHandler. Unlike ManualSync this honors manual
// edits date by date.
func (h *PayrollHandlerImpl) ResyncMonth(w http.ResponseWriter, r *http.Request) {
	employeeID, year, month, ok := yearMonthParams(r)
	if !ok {
		response.BadRequest(w, "Employee ID, year and month are required", nil)
		return
	}

	result := h.syncService.ResyncMonth(r.Context(), employeeID, r.URL.Query().Get("emp_no"), year, month)
	if result.Outcome == payroll.SyncFailed {
		response.HandleError(w, result.Err)
		return
	}

	response.Success(w, result)
}
