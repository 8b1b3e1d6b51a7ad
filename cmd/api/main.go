package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/httplog/v3"

	"github.com/lagoon-hr/payroll-backend-go/internal/config"
	appHTTP "github.com/lagoon-hr/payroll-backend-go/internal/handler/http"
	"github.com/lagoon-hr/payroll-backend-go/internal/pkg/database"
	"github.com/lagoon-hr/payroll-backend-go/internal/pkg/jwt"
	"github.com/lagoon-hr/payroll-backend-go/internal/repository/postgresql"
	payrollService "github.com/lagoon-hr/payroll-backend-go/internal/service/payroll"
	"github.com/lagoon-hr/payroll-backend-go/internal/service/rules"
	timesheetService "github.com/lagoon-hr/payroll-backend-go/internal/service/timesheet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       logLevel(cfg.App.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "lagoon-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL())
	if err != nil {
		logger.Error("connecting to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ruleRepo := postgresql.NewRuleRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	timesheetRepo := postgresql.NewTimesheetRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)

	rates, err := payrollService.LoadStatutoryRates(cfg.Payroll.StatutoryRatesFile)
	if err != nil {
		logger.Error("loading statutory rates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	resolver := rules.NewResolver(ruleRepo, logger)
	aggregator := timesheetService.NewAggregator(logger)
	composer := payrollService.NewComposer(rates, cfg.Payroll.StandardMonthlyHours)
	service := payrollService.NewService(
		payrollRepo, employeeRepo, timesheetRepo,
		resolver, aggregator, composer,
		payrollService.Config{
			Workers:          cfg.Payroll.Workers,
			StrictTimesheets: cfg.Payroll.StrictTimesheets,
		},
		logger,
	)

	payrollHandler := appHTTP.NewPayrollHandler(service)
	ruleHandler := appHTTP.NewRuleHandler(resolver)

	router := appHTTP.NewRouter(logger, jwtService, payrollHandler, ruleHandler)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("starting server", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
