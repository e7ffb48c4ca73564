package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/adeyemiadedayo/kasuwa-backend/api/middleware"
	"github.com/adeyemiadedayo/kasuwa-backend/api/responses"
	"github.com/adeyemiadedayo/kasuwa-backend/api/validators"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/commissions"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// CommissionController serves the agent-facing referral and earnings
// endpoints. The public click redirect also lives here.
type CommissionController struct {
	commissions commissions.Service
	logg        *logger.Logger
}

func NewCommissionController(commissionSvc commissions.Service, logg *logger.Logger) *CommissionController {
	return &CommissionController{commissions: commissionSvc, logg: logg}
}

func (c *CommissionController) Balance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agent, err := c.commissions.AgentForUser(ctx, middleware.UserIDFrom(ctx))
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	balance, err := c.commissions.Balance(ctx, agent.ID)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, map[string]any{
		"agent_id": agent.ID,
		"balance":  balance,
	})
}

func (c *CommissionController) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agent, err := c.commissions.AgentForUser(ctx, middleware.UserIDFrom(ctx))
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	page := pagination.FromQuery(r.URL.Query())
	items, total, err := c.commissions.ListTransactions(ctx, agent.ID, page)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WritePage(w, items, page, total)
}

type withdrawRequest struct {
	Amount string `json:"amount" validate:"required"`
}

func (c *CommissionController) Withdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req withdrawRequest
	if err := validators.Body(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		responses.WriteError(ctx, w, c.logg,
			pkgerrors.Wrap(err, pkgerrors.CodeValidation, "invalid withdrawal amount"))
		return
	}

	agent, err := c.commissions.AgentForUser(ctx, middleware.UserIDFrom(ctx))
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	txn, err := c.commissions.Withdraw(ctx, agent.ID, amount)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusCreated, txn)
}

func (c *CommissionController) CreateReferralLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agent, err := c.commissions.AgentForUser(ctx, middleware.UserIDFrom(ctx))
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	link, err := c.commissions.CreateReferralLink(ctx, agent.ID)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusCreated, link)
}

// TrackClick is unauthenticated; it records the click for the referral
// code in the URL.
func (c *CommissionController) TrackClick(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := validators.StringParam(r, "code")
	if code == "" {
		responses.WriteError(ctx, w, c.logg,
			pkgerrors.New(pkgerrors.CodeValidation, "referral code is required"))
		return
	}
	link, err := c.commissions.TrackClick(ctx, code)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, link)
}
