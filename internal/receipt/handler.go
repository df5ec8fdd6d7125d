package receipt

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/splitzy/splitzy/pkg/response"
)

// Handler handles HTTP requests for receipt structuring
type Handler struct {
	structurer Structurer
}

// NewHandler creates a new receipt handler
func NewHandler(structurer Structurer) *Handler {
	return &Handler{structurer: structurer}
}

// Routes returns the router for receipt endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/structure", h.Structure)

	return r
}

// Structure handles POST /receipts/structure
// @Summary      Structure receipt text
// @Description  Turn raw OCR text into draft line items with optional tax, tip, and total; the result is a suggestion and touches no bill until the user applies it
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        request body StructureRequest true "Raw recognized receipt text"
// @Success      200 {object} response.APIResponse{data=StructuredReceipt}
// @Failure      422 {object} response.APIResponse
// @Failure      502 {object} response.APIResponse
// @Router       /receipts/structure [post]
func (h *Handler) Structure(w http.ResponseWriter, r *http.Request) {
	var req StructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.RawText) == "" {
		response.BadRequest(w, "Receipt text is required")
		return
	}

	result, err := h.structurer.StructureReceipt(r.Context(), req.RawText)
	if err != nil {
		switch {
		case errors.Is(err, ErrParse):
			response.ParseError(w, ErrParse.Error())
		case errors.Is(err, ErrNetwork):
			response.NetworkError(w, err.Error())
		case errors.Is(err, ErrNotConfigured):
			response.Error(w, http.StatusServiceUnavailable, "INTERNAL_ERROR", ErrNotConfigured.Error())
		default:
			response.InternalError(w, "Failed to structure receipt")
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}
