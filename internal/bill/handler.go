package bill

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/splitzy/splitzy/internal/split"
	"github.com/splitzy/splitzy/pkg/middleware"
	"github.com/splitzy/splitzy/pkg/response"
)

// Handler handles HTTP requests for bill operations
type Handler struct {
	service *Service
}

// NewHandler creates a new bill handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for bill endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Get("/{id}/split", h.GetSplit)

	r.Post("/{id}/participants", h.AddParticipant)
	r.Delete("/{id}/participants/{participantId}", h.RemoveParticipant)

	r.Post("/{id}/items", h.AddItem)
	r.Put("/{id}/items/{itemId}", h.UpdateItem)
	r.Delete("/{id}/items/{itemId}", h.RemoveItem)
	r.Put("/{id}/items/{itemId}/assignments", h.SetAssignments)

	return r
}

// Create handles POST /bills
// @Summary      Create a new bill
// @Description  Create an empty bill owned by the authenticated user
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        request body CreateBillRequest true "Bill creation request"
// @Success      201 {object} response.APIResponse{data=BillResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /bills [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthenticated(w, "Login required")
		return
	}

	var req CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.TaxCents < 0 || req.TipCents < 0 {
		response.BadRequest(w, "Tax and tip cannot be negative")
		return
	}

	b, err := h.service.CreateBill(r.Context(), userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create bill")
		return
	}

	response.JSON(w, http.StatusCreated, b.ToResponse())
}

// List handles GET /bills
// @Summary      List bills
// @Description  List the authenticated user's bills, newest first
// @Tags         bills
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]BillResponse}
// @Router       /bills [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthenticated(w, "Login required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	bills, total, err := h.service.ListBills(r.Context(), userID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list bills")
		return
	}

	resp := make([]*BillResponse, len(bills))
	for i, b := range bills {
		resp[i] = b.ToResponse()
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	response.JSONWithMeta(w, http.StatusOK, resp, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// Get handles GET /bills/{id}
// @Summary      Get bill by ID
// @Description  Get a bill with its participants and items
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID"
// @Success      200 {object} response.APIResponse{data=BillResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /bills/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	details, err := h.service.GetBill(r.Context(), billID, userID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to get bill")
		return
	}

	response.JSON(w, http.StatusOK, toDetailsResponse(details))
}

// Update handles PUT /bills/{id}
// @Summary      Update a bill
// @Description  Partially update a bill's title, currency, tax, or tip
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID"
// @Param        request body UpdateBillRequest true "Fields to update"
// @Success      200 {object} response.APIResponse{data=BillResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /bills/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	var req UpdateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if (req.TaxCents != nil && *req.TaxCents < 0) || (req.TipCents != nil && *req.TipCents < 0) {
		response.BadRequest(w, "Tax and tip cannot be negative")
		return
	}

	b, err := h.service.UpdateBill(r.Context(), billID, userID, &req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update bill")
		return
	}

	response.JSON(w, http.StatusOK, b.ToResponse())
}

// Delete handles DELETE /bills/{id}
// @Summary      Delete a bill
// @Tags         bills
// @Param        id path string true "Bill ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Router       /bills/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteBill(r.Context(), billID, userID); err != nil {
		h.writeServiceError(w, err, "Failed to delete bill")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSplit handles GET /bills/{id}/split
// @Summary      Compute the split for a bill
// @Description  Recompute every participant's subtotal, tax share, and tip share from the bill's current items and assignments
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID"
// @Success      200 {object} response.APIResponse{data=SplitResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /bills/{id}/split [get]
func (h *Handler) GetSplit(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	result, participants, err := h.service.ComputeSplit(r.Context(), billID, userID)
	if err != nil {
		if isValidationError(err) {
			response.BadRequest(w, err.Error())
			return
		}
		h.writeServiceError(w, err, "Failed to compute split")
		return
	}

	response.JSON(w, http.StatusOK, ToSplitResponse(result, participants))
}

// AddParticipant handles POST /bills/{id}/participants
// @Summary      Add a participant
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID"
// @Param        request body AddParticipantRequest true "Participant"
// @Success      201 {object} response.APIResponse{data=ParticipantResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /bills/{id}/participants [post]
func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	var req AddParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.DisplayName == "" {
		response.BadRequest(w, "Display name is required")
		return
	}

	p, err := h.service.AddParticipant(r.Context(), billID, userID, &req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to add participant")
		return
	}

	response.JSON(w, http.StatusCreated, p.ToResponse())
}

// RemoveParticipant handles DELETE /bills/{id}/participants/{participantId}
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	participantID, err := uuid.Parse(chi.URLParam(r, "participantId"))
	if err != nil {
		response.BadRequest(w, "Invalid participant ID")
		return
	}

	if err := h.service.RemoveParticipant(r.Context(), billID, participantID, userID); err != nil {
		h.writeServiceError(w, err, "Failed to remove participant")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /bills/{id}/items
// @Summary      Add a line item
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID"
// @Param        request body AddItemRequest true "Line item"
// @Success      201 {object} response.APIResponse{data=ItemResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /bills/{id}/items [post]
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.UnitPriceCents < 0 {
		response.BadRequest(w, "Unit price cannot be negative")
		return
	}
	if req.Quantity < 0 {
		response.BadRequest(w, "Quantity must be positive")
		return
	}

	i, err := h.service.AddItem(r.Context(), billID, userID, &req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to add item")
		return
	}

	response.JSON(w, http.StatusCreated, i.ToResponse())
}

// UpdateItem handles PUT /bills/{id}/items/{itemId}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if (req.UnitPriceCents != nil && *req.UnitPriceCents < 0) || (req.Quantity != nil && *req.Quantity <= 0) {
		response.BadRequest(w, "Invalid price or quantity")
		return
	}

	i, err := h.service.UpdateItem(r.Context(), billID, itemID, userID, &req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update item")
		return
	}

	response.JSON(w, http.StatusOK, i.ToResponse())
}

// RemoveItem handles DELETE /bills/{id}/items/{itemId}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return
	}

	if err := h.service.RemoveItem(r.Context(), billID, itemID, userID); err != nil {
		h.writeServiceError(w, err, "Failed to remove item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetAssignments handles PUT /bills/{id}/items/{itemId}/assignments
// @Summary      Replace an item's assignees
// @Description  Replace the ordered list of participants sharing an item
// @Tags         bills
// @Accept       json
// @Param        id path string true "Bill ID"
// @Param        itemId path string true "Item ID"
// @Param        request body SetAssignmentsRequest true "Ordered participant IDs"
// @Success      204
// @Failure      400 {object} response.APIResponse
// @Router       /bills/{id}/items/{itemId}/assignments [put]
func (h *Handler) SetAssignments(w http.ResponseWriter, r *http.Request) {
	userID, billID, ok := h.authAndBillID(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return
	}

	var req SetAssignmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.SetAssignments(r.Context(), billID, itemID, userID, req.ParticipantIDs); err != nil {
		if errors.Is(err, ErrUnknownAssignee) {
			response.BadRequest(w, err.Error())
			return
		}
		h.writeServiceError(w, err, "Failed to set assignments")
		return
	}

	w.WriteHeader(http.StatusNoContent)
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
	case errors.Is(err, ErrBillNotFound), errors.Is(err, ErrParticipantNotFound), errors.Is(err, ErrItemNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotOwner):
		response.PermissionDenied(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

func toDetailsResponse(details *BillDetails) *BillResponse {
	resp := details.Bill.ToResponse()
	resp.Participants = make([]*ParticipantResponse, len(details.Participants))
	for i, p := range details.Participants {
		resp.Participants[i] = p.ToResponse()
	}
	resp.Items = make([]*ItemResponse, len(details.Items))
	for i, it := range details.Items {
		resp.Items[i] = it.ToResponse()
	}
	return resp
}

// isValidationError reports whether the error came from engine input checks
func isValidationError(err error) bool {
	return errors.Is(err, split.ErrNegativePrice) ||
		errors.Is(err, split.ErrNonPositiveQuantity) ||
		errors.Is(err, split.ErrNegativeAmount) ||
		errors.Is(err, split.ErrUnknownParticipant) ||
		errors.Is(err, split.ErrAmountOverflow)
}
