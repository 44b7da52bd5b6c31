package handler

import (
	"net/http"

	"deals_api/internal/api/middleware"
	"deals_api/internal/app/service"
	"deals_api/internal/common"

	"github.com/go-chi/chi/v5"
)

const categoryEntity = "Category"

type CategoryHandler struct {
	categoryService *service.CategoryService
}

func NewCategoryHandler(cs *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: cs}
}

// RegisterRoutes mounts the category endpoints; the caller must install Authenticator.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.AdminOnly)
	r.Post("/create-category/", h.createCategory)
	r.Get("/list-categories/", h.listCategories)
	r.Get("/get-category/{categoryID}/", h.getCategory)
	r.Put("/update-category", h.updateCategory)
	r.Delete("/delete-category/{categoryID}/", h.deleteCategory)
}

func (h *CategoryHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}
	category, err := h.categoryService.CreateCategory(r.Context(), req)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusCreated, categoryEntity, category, nil)
}

func (h *CategoryHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, meta, err := h.categoryService.ListCategories(r.Context(), pageFromQuery(r))
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, categoryEntity, categories, meta)
}

func (h *CategoryHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("category_id", chi.URLParam(r, "categoryID"))
	if err != nil {
		respondWithErr(w, err)
		return
	}
	category, err := h.categoryService.GetCategory(r.Context(), id)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, categoryEntity, category, nil)
}

func (h *CategoryHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}
	category, err := h.categoryService.UpdateCategory(r.Context(), req)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, categoryEntity, category, nil)
}

func (h *CategoryHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("category_id", chi.URLParam(r, "categoryID"))
	if err != nil {
		respondWithErr(w, err)
		return
	}
	if err := h.categoryService.DeleteCategory(r.Context(), id); err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Category deleted successfully.")
}
