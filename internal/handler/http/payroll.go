package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lagoon-hr/payroll-backend-go/internal/handler/http/middleware"
	"github.com/lagoon-hr/payroll-backend-go/internal/handler/http/response"
	"github.com/lagoon-hr/payroll-backend-go/internal/pkg/pdf"
	payrollService "github.com/lagoon-hr/payroll-backend-go/internal/service/payroll"
)

type PayrollHandler interface {
	// Cycles
	CreateCycle(w http.ResponseWriter, r *http.Request)
	GetCycle(w http.ResponseWriter, r *http.Request)
	ListCycles(w http.ResponseWriter, r *http.Request)
	ProcessCycle(w http.ResponseWriter, r *http.Request)
	ApproveCycle(w http.ResponseWriter, r *http.Request)
	MarkCyclePaid(w http.ResponseWriter, r *http.Request)

	// Payslips
	ListCyclePayslips(w http.ResponseWriter, r *http.Request)
	ListEmployeePayslips(w http.ResponseWriter, r *http.Request)
	GetPayslip(w http.ResponseWriter, r *http.Request)
	DownloadPayslipPDF(w http.ResponseWriter, r *http.Request)
	DownloadBankTransferCSV(w http.ResponseWriter, r *http.Request)

	EstimateGratuity(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	service *payrollService.Service
}

func NewPayrollHandler(service *payrollService.Service) PayrollHandler {
	return &payrollHandlerImpl{service: service}
}

// ========== CYCLES ==========

func (h *payrollHandlerImpl) CreateCycle(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	cycle, err := h.service.CreateCycle(r.Context(), middleware.TenantID(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll cycle created", payroll.ToCycleResponse(cycle))
}

func (h *payrollHandlerImpl) GetCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.service.GetCycle(r.Context(), chi.URLParam(r, "id"), middleware.TenantID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.ToCycleResponse(cycle))
}

func (h *payrollHandlerImpl) ListCycles(w http.ResponseWriter, r *http.Request) {
	var year *int
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			response.BadRequest(w, "Invalid year filter", nil)
			return
		}
		year = &parsed
	}

	cycles, err := h.service.ListCycles(r.Context(), middleware.TenantID(r), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]payroll.CycleResponse, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, payroll.ToCycleResponse(c))
	}
	response.Success(w, out)
}

func (h *payrollHandlerImpl) ProcessCycle(w http.ResponseWriter, r *http.Request) {
	var req payroll.ProcessCycleRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}

	cycle, err := h.service.ProcessCycle(r.Context(),
		middleware.TenantID(r), chi.URLParam(r, "id"), middleware.UserID(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll cycle processed", payroll.ToCycleResponse(cycle))
}

func (h *payrollHandlerImpl) ApproveCycle(w http.ResponseWriter, r *http.Request) {
	var req payroll.ApproveCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	cycle, err := h.service.ApproveCycle(r.Context(),
		middleware.TenantID(r), chi.URLParam(r, "id"), middleware.UserID(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll cycle approved", payroll.ToCycleResponse(cycle))
}

func (h *payrollHandlerImpl) MarkCyclePaid(w http.ResponseWriter, r *http.Request) {
	var req payroll.MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	cycle, err := h.service.MarkCyclePaid(r.Context(),
		middleware.TenantID(r), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll cycle marked as paid", payroll.ToCycleResponse(cycle))
}

// ========== PAYSLIPS ==========

func (h *payrollHandlerImpl) ListCyclePayslips(w http.ResponseWriter, r *http.Request) {
	payslips, err := h.service.GetCyclePayslips(r.Context(), chi.URLParam(r, "id"), middleware.TenantID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]payroll.PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		out = append(out, payroll.ToPayslipResponse(p))
	}
	response.Success(w, out)
}

func (h *payrollHandlerImpl) ListEmployeePayslips(w http.ResponseWriter, r *http.Request) {
	var year *int
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			response.BadRequest(w, "Invalid year filter", nil)
			return
		}
		year = &parsed
	}

	payslips, err := h.service.GetEmployeePayslips(r.Context(),
		chi.URLParam(r, "employeeID"), middleware.TenantID(r), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]payroll.PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		out = append(out, payroll.ToPayslipResponse(p))
	}
	response.Success(w, out)
}

func (h *payrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	slip, err := h.service.GetPayslip(r.Context(), chi.URLParam(r, "id"), middleware.TenantID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.ToPayslipResponse(slip))
}

func (h *payrollHandlerImpl) DownloadPayslipPDF(w http.ResponseWriter, r *http.Request) {
	slip, err := h.service.GetPayslip(r.Context(), chi.URLParam(r, "id"), middleware.TenantID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	doc, err := pdf.RenderPayslip(slip)
	if err != nil {
		response.InternalServerError(w, "Failed to render payslip")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", slip.PayslipNumber+".pdf"))
	_, _ = w.Write(doc)
}

func (h *payrollHandlerImpl) EstimateGratuity(w http.ResponseWriter, r *http.Request) {
	exitDate := time.Now().UTC()
	if d := r.URL.Query().Get("exit_date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			response.BadRequest(w, "exit_date must be YYYY-MM-DD", nil)
			return
		}
		exitDate = parsed
	}

	estimate, err := h.service.EstimateGratuity(r.Context(),
		middleware.TenantID(r), chi.URLParam(r, "employeeID"), exitDate)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, estimate)
}

func (h *payrollHandlerImpl) DownloadBankTransferCSV(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "id")
	data, err := h.service.BankTransferCSV(r.Context(), cycleID, middleware.TenantID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "bank-transfer-"+cycleID+".csv"))
	_, _ = w.Write(data)
}
