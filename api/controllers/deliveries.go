package controllers

import (
	"net/http"

	"github.com/adeyemiadedayo/kasuwa-backend/api/middleware"
	"github.com/adeyemiadedayo/kasuwa-backend/api/responses"
	"github.com/adeyemiadedayo/kasuwa-backend/api/validators"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/deliveries"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// DeliveryController serves the courier-facing delivery endpoints.
type DeliveryController struct {
	deliveries deliveries.Service
	logg       *logger.Logger
}

func NewDeliveryController(deliverySvc deliveries.Service, logg *logger.Logger) *DeliveryController {
	return &DeliveryController{deliveries: deliverySvc, logg: logg}
}

type pingLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

func (c *DeliveryController) PingLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req pingLocationRequest
	if err := validators.Body(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	if err := c.deliveries.PingLocation(ctx, middleware.UserIDFrom(ctx), req.Latitude, req.Longitude); err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *DeliveryController) ListAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := c.deliveries.ListAvailable(ctx, middleware.UserIDFrom(ctx))
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, items)
}

func (c *DeliveryController) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := pagination.FromQuery(r.URL.Query())
	items, total, err := c.deliveries.ListMine(ctx, middleware.UserIDFrom(ctx), page)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WritePage(w, items, page, total)
}

func (c *DeliveryController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validators.UUIDParam(r, "deliveryID")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	delivery, err := c.deliveries.Get(ctx, id)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, delivery)
}

func (c *DeliveryController) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validators.UUIDParam(r, "deliveryID")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	delivery, err := c.deliveries.Accept(ctx, middleware.UserIDFrom(ctx), id)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, delivery)
}

type updateDeliveryStatusRequest struct {
	Status    string   `json:"status" validate:"required"`
	Note      *string  `json:"note"`
	ProofURLs []string `json:"proof_urls" validate:"omitempty,dive,url"`
	Signature *string  `json:"signature"`
}

func (c *DeliveryController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validators.UUIDParam(r, "deliveryID")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	var req updateDeliveryStatusRequest
	if err := validators.Body(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	next, err := enums.ParseDeliveryStatus(req.Status)
	if err != nil {
		responses.WriteError(ctx, w, c.logg,
			pkgerrors.Wrap(err, pkgerrors.CodeValidation, "invalid delivery status"))
		return
	}

	delivery, err := c.deliveries.UpdateStatus(ctx, middleware.UserIDFrom(ctx), id, deliveries.StatusUpdate{
		Status:    next,
		Note:      req.Note,
		ProofURLs: req.ProofURLs,
		Signature: req.Signature,
	})
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, delivery)
}
