package controllers

import (
	"net/http"

	"github.com/adeyemiadedayo/kasuwa-backend/api/middleware"
	"github.com/adeyemiadedayo/kasuwa-backend/api/responses"
	"github.com/adeyemiadedayo/kasuwa-backend/api/validators"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/cart"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
)

// CartController serves the buyer's active cart.
type CartController struct {
	carts cart.Service
	logg  *logger.Logger
}

func NewCartController(carts cart.Service, logg *logger.Logger) *CartController {
	return &CartController{carts: carts, logg: logg}
}

type cartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := c.carts.GetOrCreate(ctx, middleware.UserIDFrom(ctx))
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, result)
}

func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req cartItemRequest
	if err := validators.Body(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	productID, err := parseUUIDField(req.ProductID, "product_id")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}

	result, err := c.carts.AddItem(ctx, middleware.UserIDFrom(ctx), productID, req.Quantity)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, result)
}

func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := validators.UUIDParam(r, "productID")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	var req struct {
		Quantity int `json:"quantity" validate:"gte=0"`
	}
	if err := validators.Body(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}

	result, err := c.carts.UpdateItem(ctx, middleware.UserIDFrom(ctx), productID, req.Quantity)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, result)
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := validators.UUIDParam(r, "productID")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}

	result, err := c.carts.RemoveItem(ctx, middleware.UserIDFrom(ctx), productID)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, result)
}
