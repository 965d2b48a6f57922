package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/payreg-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payreg-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	jwtService jwt.Service,
	leaveHandler LeaveHandler,
	payrollHandler PayrollHandler,
	dutyHandler DutyHandler,
	settingsHandler SettingsHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payreg-engine"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/leave-requests", func(r chi.Router) {
				r.Post("/", leaveHandler.CreateRequest)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", leaveHandler.GetRequest)
					r.Post("/approve", leaveHandler.ApproveRequest)
					r.Post("/reject", leaveHandler.RejectRequest)
					r.Post("/cancel", leaveHandler.CancelRequest)

					r.Route("/splits", func(r chi.Router) {
						r.Post("/validate", leaveHandler.ValidateSplits)
						r.Post("/", leaveHandler.CreateSplits)
						r.Get("/summary", leaveHandler.GetSplitSummary)
					})
				})
			})

			r.Route("/leave-splits/{splitId}", func(r chi.Router) {
				r.Put("/", leaveHandler.UpdateSplit)
				r.Delete("/", leaveHandler.DeleteSplit)
			})

			r.Route("/employees/{employeeId}", func(r chi.Router) {
				r.Get("/leave-balance", leaveHandler.GetLeaveBalance)
				r.Route("/monthly-leave-records/{month}", func(r chi.Router) {
					r.Get("/", leaveHandler.GetMonthlyRecord)
					r.Post("/recalculate", leaveHandler.RecalculateMonthlyRecord)
				})
				r.Route("/pay-registers", func(r chi.Router) {
					r.Get("/{month}", payrollHandler.GetRegister)
					r.Get("/preview", payrollHandler.PreviewRegister)
					r.Post("/sync", payrollHandler.ManualSync)
					r.Post("/resync", payrollHandler.ResyncMonth)
				})
			})

			r.Route("/official-duties/{id}", func(r chi.Router) {
				r.Post("/approve", dutyHandler.ApproveOfficialDuty)
				r.Post("/reject", dutyHandler.RejectOfficialDuty)
			})
			r.Route("/overtimes/{id}", func(r chi.Router) {
				r.Post("/approve", dutyHandler.ApproveOvertime)
				r.Post("/reject", dutyHandler.RejectOvertime)
			})

			r.Route("/settings/payroll-cycle", func(r chi.Router) {
				r.Get("/", settingsHandler.GetCycleConfig)
				r.Put("/", settingsHandler.UpdateCycleConfig)
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	return r
}
