package controllers

import (
	"net/http"

	"github.com/adeyemiadedayo/kasuwa-backend/api/middleware"
	"github.com/adeyemiadedayo/kasuwa-backend/api/responses"
	"github.com/adeyemiadedayo/kasuwa-backend/api/validators"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/invoices"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/sellers"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// SellerController serves the seller dashboard: analytics, events and
// invoices for the signed-in seller.
type SellerController struct {
	sellers  sellers.Service
	invoices invoices.Service
	logg     *logger.Logger
}

func NewSellerController(sellerSvc sellers.Service, invoiceSvc invoices.Service, logg *logger.Logger) *SellerController {
	return &SellerController{sellers: sellerSvc, invoices: invoiceSvc, logg: logg}
}

func (c *SellerController) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := c.sellers.ProfileForUser(ctx, middleware.UserIDFrom(ctx))
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, profile)
}

func (c *SellerController) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := c.sellers.ProfileForUser(ctx, middleware.UserIDFrom(ctx))
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	analytics, err := c.sellers.GetAnalytics(ctx, profile.ID)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, analytics)
}

func (c *SellerController) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := c.sellers.ProfileForUser(ctx, middleware.UserIDFrom(ctx))
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	page := pagination.FromQuery(r.URL.Query())
	items, total, err := c.sellers.ListEvents(ctx, profile.ID, page)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WritePage(w, items, page, total)
}

func (c *SellerController) ListInvoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := c.sellers.ProfileForUser(ctx, middleware.UserIDFrom(ctx))
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	page := pagination.FromQuery(r.URL.Query())
	items, total, err := c.invoices.ListBySeller(ctx, profile.ID, page)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WritePage(w, items, page, total)
}

func (c *SellerController) GetInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validators.UUIDParam(r, "invoiceID")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	invoice, err := c.invoices.Get(ctx, id)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, invoice)
}
