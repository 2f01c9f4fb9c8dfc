package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/platemenu/platemenu/internal/http/response"
	"github.com/platemenu/platemenu/internal/observability"
	"github.com/platemenu/platemenu/internal/repository"
	"github.com/platemenu/platemenu/internal/service"
)

type RestaurantHandler struct {
	restaurantSvc service.RestaurantServiceInterface
}

func NewRestaurantHandler(restaurantSvc service.RestaurantServiceInterface) *RestaurantHandler {
	return &RestaurantHandler{restaurantSvc: restaurantSvc}
}

func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	var body struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	created, err := h.restaurantSvc.Create(r.Context(), userID, body.Name, body.Location)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRestaurant) {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid restaurant fields", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to create restaurant", nil)
		return
	}

	observability.Audit(r, "restaurant.created",
		"restaurant_id", strconv.FormatUint(uint64(created.ID), 10),
		"owner_id", userID,
	)
	response.JSON(w, r, http.StatusCreated, created)
}

func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	restaurants, err := h.restaurantSvc.ListByOwner(r.Context(), userID)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list restaurants", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, restaurants)
}

func (h *RestaurantHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	restaurantID, err := parsePathID(chi.URLParam(r, "restaurantID"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid restaurant id", nil)
		return
	}
	restaurant, err := h.restaurantSvc.GetOwned(r.Context(), restaurantID, userID)
	if err != nil {
		if isRestaurantNotFound(err) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "restaurant not found", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load restaurant", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, restaurant)
}

func (h *RestaurantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	restaurantID, err := parsePathID(chi.URLParam(r, "restaurantID"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid restaurant id", nil)
		return
	}
	if err := h.restaurantSvc.Delete(r.Context(), restaurantID, userID); err != nil {
		if isRestaurantNotFound(err) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "restaurant not found", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to delete restaurant", nil)
		return
	}
	observability.Audit(r, "restaurant.deleted",
		"restaurant_id", strconv.FormatUint(uint64(restaurantID), 10),
		"owner_id", userID,
	)
	response.JSON(w, r, http.StatusOK, map[string]any{"success": true})
}

// isRestaurantNotFound folds ownership failures into not-found so foreign
// restaurant IDs cannot be probed.
func isRestaurantNotFound(err error) bool {
	return errors.Is(err, repository.ErrRestaurantNotFound) || errors.Is(err, service.ErrNotOwner)
}
