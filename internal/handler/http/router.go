package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/lagoon-hr/payroll-backend-go/internal/handler/http/middleware"
	"github.com/lagoon-hr/payroll-backend-go/internal/pkg/jwt"
)

func NewRouter(logger *slog.Logger, jwtService jwt.Service, payrollHandler PayrollHandler, ruleHandler RuleHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
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
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/rules", func(r chi.Router) {
				r.Get("/sector", ruleHandler.GetTenantSector)
				r.Get("/{category}", ruleHandler.GetEffectiveRule)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/cycles", func(r chi.Router) {
					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Post("/", payrollHandler.CreateCycle)
						r.Post("/{id}/process", payrollHandler.ProcessCycle)
						r.Post("/{id}/approve", payrollHandler.ApproveCycle)
						r.Post("/{id}/mark-paid", payrollHandler.MarkCyclePaid)
						r.Get("/{id}/bank-transfer", payrollHandler.DownloadBankTransferCSV)
					})

					r.Get("/", payrollHandler.ListCycles)
					r.Get("/{id}", payrollHandler.GetCycle)
					r.Get("/{id}/payslips", payrollHandler.ListCyclePayslips)
				})

				r.Route("/payslips", func(r chi.Router) {
					r.Get("/{id}", payrollHandler.GetPayslip)
					r.Get("/{id}/pdf", payrollHandler.DownloadPayslipPDF)
				})

				r.Get("/employees/{employeeID}/payslips", payrollHandler.ListEmployeePayslips)
				r.Get("/employees/{employeeID}/gratuity", payrollHandler.EstimateGratuity)
			})
		})
	})

	return r
}
