package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/GHIG-Portal/webinar-registration/dashboard"
	"github.com/GHIG-Portal/webinar-registration/slices"
)

type DashboardStats struct {
	Total               int     `json:"total"`
	Paid                int     `json:"paid"`
	Free                int     `json:"free"`
	TotalRevenue        int64   `json:"totalRevenue"`
	PaidPercentage      float64 `json:"paidPercentage"`
	FreePercentage      float64 `json:"freePercentage"`
	AveragePaidAmount   int64   `json:"averagePaidAmount"`
	PotentialRevenueMin int64   `json:"potentialRevenueMin"`
	PotentialRevenueMax int64   `json:"potentialRevenueMax"`
}

type DashboardPage struct {
	Items       []Registration `json:"items"`
	Number      int            `json:"number"`
	TotalPages  int            `json:"totalPages"`
	TotalItems  int            `json:"totalItems"`
	HasNext     bool           `json:"hasNext"`
	HasPrevious bool           `json:"hasPrevious"`
}

type DashboardResponse struct {
	View         string          `json:"view"`
	Email        string          `json:"email,omitempty"`
	Message      string          `json:"message,omitempty"`
	OfferSignOut bool            `json:"offerSignOut"`
	Stats        *DashboardStats `json:"stats,omitempty"`
	Page         *DashboardPage  `json:"page,omitempty"`
}

func viewToApiDashboard(view dashboard.View) DashboardResponse {
	resp := DashboardResponse{
		View:         string(view.Kind),
		Email:        view.Email,
		Message:      view.Message,
		OfferSignOut: view.OfferSignOut,
	}
	if view.Kind != dashboard.VIEW_DASHBOARD {
		return resp
	}

	s := view.Stats
	resp.Stats = &DashboardStats{
		Total:               s.Total,
		Paid:                s.Paid,
		Free:                s.Free,
		TotalRevenue:        s.TotalRevenue,
		PaidPercentage:      s.PaidPercentage,
		FreePercentage:      s.FreePercentage,
		AveragePaidAmount:   s.AveragePaidAmount,
		PotentialRevenueMin: s.PotentialRevenueMin,
		PotentialRevenueMax: s.PotentialRevenueMax,
	}

	p := view.Registrations
	resp.Page = &DashboardPage{
		Items:       slices.Map(p.Items, registrationToApiRegistration),
		Number:      p.Number,
		TotalPages:  p.TotalPages,
		TotalItems:  p.TotalItems,
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
	}

	return resp
}

// GetDashboard always answers 200 with the view the session is allowed to
// see; the view kind tells the client which screen to draw.
func (a *API) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			a.writeError(w, r, http.StatusBadRequest, InputValidationError, "Page must be a number")
			return
		}
		page = n
	}

	session := a.sessionFromRequest(r)
	resolver := a.resolveRole(ctx, session)
	defer resolver.Close()

	view, err := dashboard.NewAggregator(session, resolver, a.db, logger).Render(ctx, page)
	if err != nil {
		logger.Error("Failed to render dashboard", "error", err)
		a.writeError(w, r, http.StatusInternalServerError, InternalError, "Failed to load registrations")
		return
	}

	a.writeJSON(w, r, http.StatusOK, viewToApiDashboard(view))
}

func (a *API) GetDashboardExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	session := a.sessionFromRequest(r)
	resolver := a.resolveRole(ctx, session)
	defer resolver.Close()

	var buf bytes.Buffer
	err := dashboard.NewAggregator(session, resolver, a.db, logger).Export(ctx, &buf)
	if err != nil {
		var dashErr *dashboard.Error
		if errors.As(err, &dashErr) && dashErr.Reason == dashboard.REASON_NOT_AUTHORIZED {
			a.writeGateError(w, r, dashboard.Gate(session.Current(), resolver.Current()))
			return
		}
		logger.Error("Failed to export registrations", "error", err)
		a.writeError(w, r, http.StatusInternalServerError, InternalError, "Failed to export registrations")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dashboard.ExportFileName(time.Now())))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
