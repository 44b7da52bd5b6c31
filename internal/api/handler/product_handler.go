package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"deals_api/internal/api/middleware"
	"deals_api/internal/app/service"
	"deals_api/internal/common"
	"deals_api/internal/domain/model"
	"deals_api/internal/platform/config"

	"github.com/go-chi/chi/v5"
)

const (
	productEntity = "ProductDeal"
	loadLogEntity = "DataLoadLog"
)

type ProductHandler struct {
	productService *service.ProductService
	loadLogService *service.LoadLogService
}

func NewProductHandler(ps *service.ProductService, ls *service.LoadLogService) *ProductHandler {
	return &ProductHandler{productService: ps, loadLogService: ls}
}

// RegisterRoutes mounts the product endpoints; the caller must install Authenticator.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(read chi.Router) {
		read.Use(middleware.ActiveUserOnly)
		read.Get("/list-products/", h.listProducts)
		read.Get("/get-product-by-id/", h.getProductByID)
		read.Get("/get-product-by-category/", h.getProductsByCategory)
		read.Get("/get-product-by-discount/", h.getProductsByDiscount)
	})

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.AdminOnly)
		admin.Post("/load-products-by-category/", h.loadProducts)
		admin.Post("/create-product/", h.createProduct)
		admin.Put("/update-product/", h.updateProduct)
		admin.Put("/delete-product-by-id/", h.deleteProductByID)
		admin.Put("/delete-product-by-date/", h.deleteProductsByDate)
		admin.Put("/products/deactivate-all-by-date/", h.deactivateProductsByDate)
		admin.Get("/load-logs/", h.listLoadLogs)
	})
}

func (h *ProductHandler) loadProducts(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID("category_id", r.URL.Query().Get("category_id"))
	if err != nil {
		respondWithErr(w, err)
		return
	}
	opts := service.LoadOptions{Normalize: true}
	if normalize, err := boolFromQuery(r, "normalize"); err != nil {
		respondWithErr(w, err)
		return
	} else if normalize != nil {
		opts.Normalize = *normalize
	}

	maxBytes := int64(config.AppConfig.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid multipart upload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Missing CSV file in field 'file'")
		return
	}
	defer file.Close()

	loadedBy := ""
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		loadedBy = claims.Username
	}

	rows, err := h.productService.LoadProductsCSV(r.Context(), categoryID, header.Filename, file, opts, loadedBy)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	log.Printf("INFO: %s loaded %d products into category %d from %s", loadedBy, rows, categoryID, header.Filename)
	common.RespondWithMessage(w, http.StatusCreated, service.LoadSuccessMessage(rows))
}

func (h *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	active, err := boolFromQuery(r, "active")
	if err != nil {
		respondWithErr(w, err)
		return
	}
	h.respondWithProductPage(w, r, model.ProductFilter{Active: active})
}

func (h *ProductHandler) getProductsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID("category_id", r.URL.Query().Get("category_id"))
	if err != nil {
		respondWithErr(w, err)
		return
	}
	h.respondWithProductPage(w, r, model.ProductFilter{CategoryID: &categoryID})
}

func (h *ProductHandler) getProductsByDiscount(w http.ResponseWriter, r *http.Request) {
	order := model.DiscountDesc
	if value := strings.ToLower(r.URL.Query().Get("order")); value != "" {
		order = model.DiscountOrder(value)
		if order != model.DiscountAsc && order != model.DiscountDesc {
			common.RespondWithError(w, http.StatusUnprocessableEntity, "order must be 'asc' or 'desc'")
			return
		}
	}
	h.respondWithProductPage(w, r, model.ProductFilter{DiscountOrder: order})
}

func (h *ProductHandler) respondWithProductPage(w http.ResponseWriter, r *http.Request, filter model.ProductFilter) {
	products, meta, err := h.productService.ListProducts(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, productEntity, products, meta)
}

func (h *ProductHandler) getProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("product_id", r.URL.Query().Get("product_id"))
	if err != nil {
		respondWithErr(w, err)
		return
	}
	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, productEntity, product, nil)
}

func (h *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}
	product, err := h.productService.CreateProduct(r.Context(), req)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusCreated, productEntity, product, nil)
}

func (h *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}
	product, err := h.productService.UpdateProduct(r.Context(), req)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, productEntity, product, nil)
}

// deleteProductByID takes product_id from the query string or a JSON body.
func (h *ProductHandler) deleteProductByID(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("product_id")
	if raw == "" {
		var body struct {
			ProductID uint `json:"product_id"`
		}
		if err := decodeJSON(r, &body); err != nil {
			respondWithErr(w, err)
			return
		}
		raw = strconv.FormatUint(uint64(body.ProductID), 10)
	}
	id, err := parseID("product_id", raw)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	product, err := h.productService.DeleteProduct(r.Context(), id)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, productEntity, product, nil)
}

func (h *ProductHandler) deleteProductsByDate(w http.ResponseWriter, r *http.Request) {
	date, err := dateFromQuery(r)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	count, err := h.productService.DeleteProductsByDate(r.Context(), date)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("A total of %d products were deleted.", count))
}

func (h *ProductHandler) deactivateProductsByDate(w http.ResponseWriter, r *http.Request) {
	date, err := dateFromQuery(r)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	count, err := h.productService.DeactivateProductsByDate(r.Context(), date)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("A total of %d products were deactivated.", count))
}

func (h *ProductHandler) listLoadLogs(w http.ResponseWriter, r *http.Request) {
	entries, meta, err := h.loadLogService.ListLoadLogs(r.Context(), pageFromQuery(r))
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, loadLogEntity, entries, meta)
}
