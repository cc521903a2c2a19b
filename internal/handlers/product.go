package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/invoicing-api/internal/httpx"
	"github.com/diewo77/invoicing-api/internal/models"
	"github.com/diewo77/invoicing-api/internal/repository"
)

type productView struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type productListResponse struct {
	Products []productView `json:"products"`
}

type ProductHandler struct {
	ref *repository.ReferenceStore
	log zerolog.Logger
}

func NewProductHandler(ref *repository.ReferenceStore, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{ref: ref, log: log.With().Str("handler", "products").Logger()}
}

// List: GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.ref.ListProducts(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list products")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	httpx.JSON(w, http.StatusOK, productListResponse{Products: views})
}

// Get: GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	product, err := h.ref.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
			return
		}
		h.log.Error().Err(err).Uint("product_id", id).Msg("get product")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, newProductView(product))
}

func newProductView(p models.Product) productView {
	return productView{ID: p.ID, Name: p.Name, Price: p.Price}
}
