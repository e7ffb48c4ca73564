package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/adeyemiadedayo/kasuwa-backend/api/middleware"
	"github.com/adeyemiadedayo/kasuwa-backend/api/responses"
	"github.com/adeyemiadedayo/kasuwa-backend/api/validators"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/products"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/sellers"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// ProductController serves the catalog.
type ProductController struct {
	products products.Service
	sellers  sellers.Service
	logg     *logger.Logger
}

func NewProductController(productSvc products.Service, sellerSvc sellers.Service, logg *logger.Logger) *ProductController {
	return &ProductController{products: productSvc, sellers: sellerSvc, logg: logg}
}

type createProductRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Price       string  `json:"price" validate:"required"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createProductRequest
	if err := validators.Body(r, &req); err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		responses.WriteError(ctx, w, c.logg,
			pkgerrors.New(pkgerrors.CodeValidation, "invalid price"))
		return
	}

	profile, err := c.sellers.ProfileForUser(ctx, middleware.UserIDFrom(ctx))
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}

	product, err := c.products.Create(ctx, products.CreateProductInput{
		SellerID:    profile.ID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       price,
		Stock:       req.Stock,
	})
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusCreated, product)
}

func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validators.UUIDParam(r, "productID")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	product, err := c.products.Get(ctx, id)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, product)
}

func (c *ProductController) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := c.sellers.ProfileForUser(ctx, middleware.UserIDFrom(ctx))
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}

	page := pagination.FromQuery(r.URL.Query())
	items, total, err := c.products.ListBySeller(ctx, profile.ID, page)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WritePage(w, items, page, total)
}
