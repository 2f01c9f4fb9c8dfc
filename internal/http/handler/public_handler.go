package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/platemenu/platemenu/internal/http/response"
	"github.com/platemenu/platemenu/internal/repository"
	"github.com/platemenu/platemenu/internal/service"
)

// PublicHandler serves the unauthenticated diner-facing menu.
type PublicHandler struct {
	menuSvc service.MenuServiceInterface
}

func NewPublicHandler(menuSvc service.MenuServiceInterface) *PublicHandler {
	return &PublicHandler{menuSvc: menuSvc}
}

func (h *PublicHandler) Menu(w http.ResponseWriter, r *http.Request) {
	publicID := strings.TrimSpace(chi.URLParam(r, "publicID"))
	if publicID == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid menu id", nil)
		return
	}
	menu, err := h.menuSvc.PublicMenu(r.Context(), publicID)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "menu not found", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load menu", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, menu)
}
