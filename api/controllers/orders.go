package controllers

import (
	"net/http"

	"github.com/adeyemiadedayo/kasuwa-backend/api/middleware"
	"github.com/adeyemiadedayo/kasuwa-backend/api/responses"
	"github.com/adeyemiadedayo/kasuwa-backend/api/validators"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/orders"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/settlement"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/types"
)

// OrderController serves buyer checkout and order tracking.
type OrderController struct {
	orders     orders.Service
	settlement settlement.Service
	logg       *logger.Logger
}

func NewOrderController(orderSvc orders.Service, settlementSvc settlement.Service, logg *logger.Logger) *OrderController {
	return &OrderController{orders: orderSvc, settlement: settlementSvc, logg: logg}
}

type addressRequest struct {
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2"`
	City       string  `json:"city" validate:"required"`
	Region     string  `json:"region" validate:"required"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country" validate:"required,iso3166_1_alpha2"`
	Phone      string  `json:"phone"`
	Latitude   string  `json:"latitude"`
	Longitude  string  `json:"longitude"`

	CourierRequested bool   `json:"courier_requested"`
	DeliveryPriority string `json:"delivery_priority" validate:"omitempty,oneof=standard express urgent"`
	DeliveryNotes    string `json:"delivery_notes"`
}

func (a *addressRequest) toAddress() *types.Address {
	if a == nil {
		return nil
	}
	addr := &types.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		Region:     a.Region,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
		Latitude:   a.Latitude,
		Longitude:  a.Longitude,
	}
	if a.CourierRequested {
		addr.DeliveryRequest = &types.DeliveryRequest{
			Requested: true,
			Priority:  a.DeliveryPriority,
			Notes:     a.DeliveryNotes,
		}
	}
	return addr
}

type buyNowRequest struct {
	ProductID       string          `json:"product_id" validate:"required,uuid"`
	Quantity        int             `json:"quantity" validate:"required,gt=0"`
	DiscountCode    string          `json:"discount_code"`
	ShippingAddress *addressRequest `json:"shipping_address"`
}

func (c *OrderController) BuyNow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req buyNowRequest
	if err := validators.Body(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	productID, err := parseUUIDField(req.ProductID, "product_id")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}

	result, err := c.orders.BuyNow(ctx, orders.BuyNowInput{
		BuyerID:         middleware.UserIDFrom(ctx),
		ProductID:       productID,
		Quantity:        req.Quantity,
		DiscountCode:    req.DiscountCode,
		ShippingAddress: req.ShippingAddress.toAddress(),
	})
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusCreated, result)
}

type checkoutRequest struct {
	DiscountCode    string          `json:"discount_code"`
	ShippingAddress *addressRequest `json:"shipping_address"`
}

func (c *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req checkoutRequest
	if err := validators.Body(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}

	result, err := c.orders.CheckoutCart(ctx, orders.CheckoutInput{
		BuyerID:         middleware.UserIDFrom(ctx),
		DiscountCode:    req.DiscountCode,
		ShippingAddress: req.ShippingAddress.toAddress(),
	})
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusCreated, result)
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := pagination.FromQuery(r.URL.Query())
	items, total, err := c.orders.List(ctx, middleware.UserIDFrom(ctx), page)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WritePage(w, items, page, total)
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	order, err := c.orders.Get(ctx, middleware.UserIDFrom(ctx), id)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, order)
}

func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	order, err := c.orders.Cancel(ctx, middleware.UserIDFrom(ctx), id)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, order)
}

func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	if err := c.orders.Delete(ctx, middleware.UserIDFrom(ctx), id); err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Verify lets the buyer confirm payment right after returning from the
// gateway, without waiting for the webhook.
func (c *OrderController) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reference := validators.StringParam(r, "reference")
	if reference == "" {
		responses.WriteError(ctx, w, c.logg,
			pkgerrors.New(pkgerrors.CodeValidation, "reference is required"))
		return
	}
	order, err := c.settlement.VerifyForBuyer(ctx, middleware.UserIDFrom(ctx), reference)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, order)
}

// PaymentCallback is where the gateway redirects the buyer after the
// hosted checkout. It verifies and settles the referenced order.
func (c *OrderController) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reference := r.URL.Query().Get("reference")
	if reference == "" {
		responses.WriteError(ctx, w, c.logg,
			pkgerrors.New(pkgerrors.CodeValidation, "reference is required"))
		return
	}

	order, err := c.settlement.SettleByReference(ctx, reference, settlement.SourceCallback)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, order)
}
