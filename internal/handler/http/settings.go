package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payreg-engine/internal/domain/settings"
	"github.com/cmlabs-hris/payreg-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/daterange"
)

type SettingsHandler interface {
	GetCycleConfig(w http.ResponseWriter, r *http.Request)
	UpdateCycleConfig(w http.ResponseWriter, r *http.Request)
}

type SettingsHandlerImpl struct {
	settings settings.SettingRepository
	dates    *daterange.Service
}

func NewSettingsHandler(settingRepo settings.SettingRepository, dates *daterange.Service) SettingsHandler {
	return &SettingsHandlerImpl{settings: settingRepo, dates: dates}
}

// GetCycleConfig implements SettingsHandler.
func (h *SettingsHandlerImpl) GetCycleConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.dates.Config(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]int{
		"start_day": cfg.StartDay,
		"end_day":   cfg.EndDay,
	})
}

// UpdateCycleConfig implements SettingsHandler. The cached configuration is
// invalidated so the next range computation sees the new values.
func (h *SettingsHandlerImpl) UpdateCycleConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDay int `json:"start_day"`
		EndDay   int `json:"end_day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	cfg := daterange.CycleConfig{StartDay: req.StartDay, EndDay: req.EndDay}
	if err := cfg.Validate(); err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	ctx := r.Context()
	if err := h.settings.Set(ctx, settings.KeyPayrollCycleStartDay, strconv.Itoa(cfg.StartDay)); err != nil {
		response.HandleError(w, err)
		return
	}
	if err := h.settings.Set(ctx, settings.KeyPayrollCycleEndDay, strconv.Itoa(cfg.EndDay)); err != nil {
		response.HandleError(w, err)
		return
	}
	h.dates.Invalidate()

	response.SuccessWithMessage(w, "Payroll cycle configuration updated successfully", cfg)
}
