package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
	"github.com/lagoon-hr/payroll-backend-go/internal/handler/http/middleware"
	"github.com/lagoon-hr/payroll-backend-go/internal/handler/http/response"
	"github.com/lagoon-hr/payroll-backend-go/internal/pkg/validator"
	"github.com/lagoon-hr/payroll-backend-go/internal/service/rules"
)

type RuleHandler interface {
	GetEffectiveRule(w http.ResponseWriter, r *http.Request)
	GetTenantSector(w http.ResponseWriter, r *http.Request)
}

type ruleHandlerImpl struct {
	resolver *rules.Resolver
}

func NewRuleHandler(resolver *rules.Resolver) RuleHandler {
	return &ruleHandlerImpl{resolver: resolver}
}

type effectiveRuleResponse struct {
	Category       string      `json:"category"`
	Source         string      `json:"source"`
	LegalReference string      `json:"legal_reference,omitempty"`
	Config         interface{} `json:"config"`
}

// GetEffectiveRule answers what a rule category says for the caller's
// tenant on a given date. Defaults to today when no date is supplied.
func (h *ruleHandlerImpl) GetEffectiveRule(w http.ResponseWriter, r *http.Request) {
	category := rule.Category(chi.URLParam(r, "category"))
	if !category.Valid() {
		response.BadRequest(w, "Unknown rule category", nil)
		return
	}

	refDate := time.Now().UTC()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, ok := validator.IsValidDate(d)
		if !ok {
			response.BadRequest(w, "date must be YYYY-MM-DD", nil)
			return
		}
		refDate = parsed
	}

	tenantID := middleware.TenantID(r)
	sector, err := h.resolver.TenantSector(r.Context(), tenantID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	res, err := h.resolver.Resolve(r.Context(), tenantID, sector.ID, category, refDate)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, effectiveRuleResponse{
		Category:       string(res.Category),
		Source:         string(res.Source),
		LegalReference: res.LegalReference,
		Config:         configPayload(res.Config),
	})
}

func (h *ruleHandlerImpl) GetTenantSector(w http.ResponseWriter, r *http.Request) {
	sector, err := h.resolver.TenantSector(r.Context(), middleware.TenantID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"id":                     sector.ID,
		"sector_code":            sector.SectorCode,
		"sector_name":            sector.SectorName,
		"remuneration_order_ref": sector.RemunerationOrderRef,
	})
}

func configPayload(cfg rule.Config) interface{} {
	switch {
	case cfg.Overtime != nil:
		return cfg.Overtime
	case cfg.WorkingHours != nil:
		return cfg.WorkingHours
	case cfg.MinimumWage != nil:
		return cfg.MinimumWage
	case cfg.Allowances != nil:
		return cfg.Allowances
	case cfg.Leave != nil:
		return cfg.Leave
	case cfg.Gratuity != nil:
		return cfg.Gratuity
	default:
		return nil
	}
}
