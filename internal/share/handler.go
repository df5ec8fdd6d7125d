package share

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/splitzy/splitzy/pkg/middleware"
	"github.com/splitzy/splitzy/pkg/response"
)

// Handler handles HTTP requests for share link operations
type Handler struct {
	service *Service
}

// NewHandler creates a new share handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register adds the authenticated share endpoints to the bill router
func (h *Handler) Register(r chi.Router) {
	r.Post("/{id}/share-link", h.CreateLink)
	r.Delete("/{id}/share-link", h.RevokeLink)
	r.Get("/{id}/share-text", h.ShareText)
}

// PublicRoutes returns the unauthenticated viewer endpoints
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/bills/{token}", h.PublicSnapshot)

	return r
}

// CreateLink handles POST /bills/{id}/share-link
// @Summary      Create a share link
// @Description  Issue a shareable read-only link for a bill; only the owner may share
// @Tags         share
// @Produce      json
// @Param        id path string true "Bill ID"
// @Success      201 {object} response.APIResponse{data=LinkResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /bills/{id}/share-link [post]
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	link, err := h.service.CreateLink(r.Context(), billID, userID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to create share link")
		return
	}

	response.JSON(w, http.StatusCreated, link)
}

// RevokeLink handles DELETE /bills/{id}/share-link
// @Summary      Revoke a share link
// @Tags         share
// @Param        id path string true "Bill ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Router       /bills/{id}/share-link [delete]
func (h *Handler) RevokeLink(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	if err := h.service.RevokeLink(r.Context(), billID, userID); err != nil {
		h.writeServiceError(w, err, "Failed to revoke share link")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ShareText handles GET /bills/{id}/share-text
// @Summary      Render the split as shareable text
// @Tags         share
// @Produce      json
// @Param        id path string true "Bill ID"
// @Success      200 {object} response.APIResponse{data=ShareTextResponse}
// @Router       /bills/{id}/share-text [get]
func (h *Handler) ShareText(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	text, err := h.service.ShareText(r.Context(), billID, userID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to render share text")
		return
	}

	response.JSON(w, http.StatusOK, &ShareTextResponse{Text: text})
}

// PublicSnapshot handles GET /public/bills/{token}
// @Summary      View a shared bill
// @Description  Read-only, redacted bill snapshot for holders of an active share token; no authentication
// @Tags         share
// @Produce      json
// @Param        token path string true "Share token"
// @Success      200 {object} response.APIResponse{data=PublicSnapshot}
// @Failure      404 {object} response.APIResponse
// @Router       /public/bills/{token} [get]
func (h *Handler) PublicSnapshot(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		response.BadRequest(w, "Missing token")
		return
	}

	snapshot, err := h.service.PublicSnapshot(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrLinkNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to load shared bill")
		return
	}

	response.JSON(w, http.StatusOK, snapshot)
}

// authAndBillID extracts the authenticated user and the {id} URL parameter
func (h *Handler) authAndBillID(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthenticated(w, "Login required")
		return "", uuid.Nil, false
	}

	billID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid bill ID")
		return "", uuid.Nil, false
	}

	return userID, billID, true
}

// writeServiceError maps service errors onto the response envelope
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrBillNotFound), errors.Is(err, ErrLinkNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotOwner):
		response.PermissionDenied(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}
