package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/platemenu/platemenu/internal/http/response"
	"github.com/platemenu/platemenu/internal/observability"
	"github.com/platemenu/platemenu/internal/repository"
	"github.com/platemenu/platemenu/internal/service"
)

// MenuHandler serves the owner-facing category and dish endpoints nested
// under a restaurant. Storage is optional; image upload answers 503 when no
// backend is configured.
type MenuHandler struct {
	menuSvc service.MenuServiceInterface
	storage service.StorageService
}

func NewMenuHandler(menuSvc service.MenuServiceInterface, storage service.StorageService) *MenuHandler {
	return &MenuHandler{menuSvc: menuSvc, storage: storage}
}

func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, restaurantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var body service.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	category, err := h.menuSvc.CreateCategory(r.Context(), userID, restaurantID, body)
	if err != nil {
		h.writeMenuError(w, r, err, "failed to create category")
		return
	}
	observability.Audit(r, "menu.category_created", "category_id", category.ID, "restaurant_id", restaurantID)
	response.JSON(w, r, http.StatusCreated, category)
}

func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, restaurantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	categories, err := h.menuSvc.ListCategories(r.Context(), userID, restaurantID)
	if err != nil {
		h.writeMenuError(w, r, err, "failed to list categories")
		return
	}
	response.JSON(w, r, http.StatusOK, categories)
}

func (h *MenuHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, restaurantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	categoryID, err := parsePathID(chi.URLParam(r, "categoryID"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid category id", nil)
		return
	}
	var body service.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	category, err := h.menuSvc.UpdateCategory(r.Context(), userID, restaurantID, categoryID, body)
	if err != nil {
		h.writeMenuError(w, r, err, "failed to update category")
		return
	}
	response.JSON(w, r, http.StatusOK, category)
}

func (h *MenuHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, restaurantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	categoryID, err := parsePathID(chi.URLParam(r, "categoryID"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid category id", nil)
		return
	}
	if err := h.menuSvc.DeleteCategory(r.Context(), userID, restaurantID, categoryID); err != nil {
		h.writeMenuError(w, r, err, "failed to delete category")
		return
	}
	observability.Audit(r, "menu.category_deleted", "category_id", categoryID, "restaurant_id", restaurantID)
	response.JSON(w, r, http.StatusOK, map[string]any{"success": true})
}

func (h *MenuHandler) CreateDish(w http.ResponseWriter, r *http.Request) {
	userID, restaurantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var body service.DishInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	dish, err := h.menuSvc.CreateDish(r.Context(), userID, restaurantID, body)
	if err != nil {
		h.writeMenuError(w, r, err, "failed to create dish")
		return
	}
	observability.Audit(r, "menu.dish_created", "dish_id", dish.ID, "restaurant_id", restaurantID)
	response.JSON(w, r, http.StatusCreated, dish)
}

func (h *MenuHandler) ListDishes(w http.ResponseWriter, r *http.Request) {
	userID, restaurantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	res, err := h.menuSvc.ListDishes(r.Context(), userID, restaurantID, pageReq)
	if err != nil {
		h.writeMenuError(w, r, err, "failed to list dishes")
		return
	}
	response.JSON(w, r, http.StatusOK, paginatedData(res.Items, res.Page, res.PageSize, res.Total, res.TotalPages))
}

func (h *MenuHandler) UpdateDish(w http.ResponseWriter, r *http.Request) {
	userID, restaurantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	dishID, err := parsePathID(chi.URLParam(r, "dishID"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid dish id", nil)
		return
	}
	var body service.DishUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	dish, err := h.menuSvc.UpdateDish(r.Context(), userID, restaurantID, dishID, body)
	if err != nil {
		h.writeMenuError(w, r, err, "failed to update dish")
		return
	}
	response.JSON(w, r, http.StatusOK, dish)
}

func (h *MenuHandler) DeleteDish(w http.ResponseWriter, r *http.Request) {
	userID, restaurantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	dishID, err := parsePathID(chi.URLParam(r, "dishID"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid dish id", nil)
		return
	}
	if err := h.menuSvc.DeleteDish(r.Context(), userID, restaurantID, dishID); err != nil {
		h.writeMenuError(w, r, err, "failed to delete dish")
		return
	}
	observability.Audit(r, "menu.dish_deleted", "dish_id", dishID, "restaurant_id", restaurantID)
	response.JSON(w, r, http.StatusOK, map[string]any{"success": true})
}

func (h *MenuHandler) UploadDishImage(w http.ResponseWriter, r *http.Request) {
	userID, restaurantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	if h.storage == nil {
		response.Error(w, r, http.StatusServiceUnavailable, "STORAGE_DISABLED", "image storage is not configured", nil)
		return
	}
	dishID, err := parsePathID(chi.URLParam(r, "dishID"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid dish id", nil)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "missing image file", nil)
		return
	}
	defer file.Close()

	objectKey, err := h.storage.UploadDishImage(r.Context(), restaurantID, file, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooBig), errors.Is(err, service.ErrInvalidFileType):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to store image", nil)
		}
		return
	}

	imageURL, err := h.storage.DishImageURL(r.Context(), objectKey)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to store image", nil)
		return
	}

	dish, err := h.menuSvc.SetDishImage(r.Context(), userID, restaurantID, dishID, objectKey, imageURL)
	if err != nil {
		_ = h.storage.DeleteDishImage(r.Context(), restaurantID, objectKey)
		h.writeMenuError(w, r, err, "failed to attach image")
		return
	}
	observability.Audit(r, "menu.dish_image_uploaded", "dish_id", dishID, "restaurant_id", restaurantID)
	response.JSON(w, r, http.StatusOK, dish)
}

func (h *MenuHandler) scope(w http.ResponseWriter, r *http.Request) (userID, restaurantID uint, ok bool) {
	userID, authed := callerID(r)
	if !authed {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return 0, 0, false
	}
	restaurantID, err := parsePathID(chi.URLParam(r, "restaurantID"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid restaurant id", nil)
		return 0, 0, false
	}
	return userID, restaurantID, true
}

func (h *MenuHandler) writeMenuError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case isRestaurantNotFound(err):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "restaurant not found", nil)
	case errors.Is(err, repository.ErrCategoryNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "category not found", nil)
	case errors.Is(err, repository.ErrDishNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "dish not found", nil)
	case errors.Is(err, service.ErrInvalidCategory), errors.Is(err, service.ErrInvalidDish):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", fallback, nil)
	}
}
