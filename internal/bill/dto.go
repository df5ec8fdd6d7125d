package bill

import (
	"github.com/google/uuid"

	"github.com/splitzy/splitzy/internal/split"
)

// CreateBillRequest represents the request to create a bill
type CreateBillRequest struct {
	Title    string `json:"title"`
	Currency string `json:"currency"`
	TaxCents int64  `json:"tax_cents"`
	TipCents int64  `json:"tip_cents"`
}

// UpdateBillRequest represents a partial bill update
type UpdateBillRequest struct {
	Title    *string `json:"title,omitempty"`
	Currency *string `json:"currency,omitempty"`
	TaxCents *int64  `json:"tax_cents,omitempty"`
	TipCents *int64  `json:"tip_cents,omitempty"`
}

// AddParticipantRequest represents the request to add a participant to a bill
type AddParticipantRequest struct {
	DisplayName  string  `json:"display_name"`
	LinkedUserID *string `json:"linked_user_id,omitempty"`
}

// AddItemRequest represents the request to add a line item to a bill
type AddItemRequest struct {
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int64  `json:"quantity"`
}

// UpdateItemRequest represents a partial item update
type UpdateItemRequest struct {
	Name           *string `json:"name,omitempty"`
	UnitPriceCents *int64  `json:"unit_price_cents,omitempty"`
	Quantity       *int64  `json:"quantity,omitempty"`
}

// SetAssignmentsRequest replaces an item's assignee list. Order matters: the
// first participants listed absorb leftover cents when the price does not
// divide evenly.
type SetAssignmentsRequest struct {
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
}

// BillResponse represents the response for a bill with its details
type BillResponse struct {
	ID           uuid.UUID              `json:"id"`
	Title        string                 `json:"title"`
	Currency     string                 `json:"currency"`
	TaxCents     int64                  `json:"tax_cents"`
	TipCents     int64                  `json:"tip_cents"`
	LinkActive   bool                   `json:"link_active"`
	CreatedAt    string                 `json:"created_at"`
	Participants []*ParticipantResponse `json:"participants,omitempty"`
	Items        []*ItemResponse        `json:"items,omitempty"`
}

// ParticipantResponse represents the response for a bill participant
type ParticipantResponse struct {
	ID           uuid.UUID `json:"id"`
	DisplayName  string    `json:"display_name"`
	LinkedUserID *string   `json:"linked_user_id,omitempty"`
}

// ItemResponse represents the response for a line item
type ItemResponse struct {
	ID                     uuid.UUID   `json:"id"`
	Name                   string      `json:"name"`
	UnitPriceCents         int64       `json:"unit_price_cents"`
	Quantity               int64       `json:"quantity"`
	AssignedParticipantIDs []uuid.UUID `json:"assigned_participant_ids"`
}

// ShareResponse represents one participant's computed share
type ShareResponse struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	SubtotalCents int64     `json:"subtotal_cents"`
	TaxShareCents int64     `json:"tax_share_cents"`
	TipShareCents int64     `json:"tip_share_cents"`
	TotalCents    int64     `json:"total_cents"`
}

// SplitResponse represents the computed split for a bill
type SplitResponse struct {
	Shares             []*ShareResponse `json:"shares"`
	TotalSubtotalCents int64            `json:"total_subtotal_cents"`
	TotalTaxCents      int64            `json:"total_tax_cents"`
	TotalTipCents      int64            `json:"total_tip_cents"`
	GrandTotalCents    int64            `json:"grand_total_cents"`
}

// ToResponse converts a Bill model to a BillResponse DTO
func (b *Bill) ToResponse() *BillResponse {
	return &BillResponse{
		ID:         b.ID,
		Title:      b.Title,
		Currency:   b.Currency,
		TaxCents:   b.TaxCents,
		TipCents:   b.TipCents,
		LinkActive: b.LinkActive,
		CreatedAt:  b.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Participant model to a ParticipantResponse DTO
func (p *Participant) ToResponse() *ParticipantResponse {
	return &ParticipantResponse{
		ID:           p.ID,
		DisplayName:  p.DisplayName,
		LinkedUserID: p.LinkedUserID,
	}
}

// ToResponse converts an Item model to an ItemResponse DTO
func (i *Item) ToResponse() *ItemResponse {
	ids := i.AssignedParticipantIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return &ItemResponse{
		ID:                     i.ID,
		Name:                   i.Name,
		UnitPriceCents:         i.UnitPriceCents,
		Quantity:               i.Quantity,
		AssignedParticipantIDs: ids,
	}
}

// ToSplitResponse pairs a calculation result with participant display names
func ToSplitResponse(result *split.BillResult, participants []*Participant) *SplitResponse {
	names := make(map[uuid.UUID]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.DisplayName
	}

	shares := make([]*ShareResponse, len(result.ParticipantShares))
	for i, s := range result.ParticipantShares {
		shares[i] = &ShareResponse{
			ParticipantID: s.ParticipantID,
			DisplayName:   names[s.ParticipantID],
			SubtotalCents: s.SubtotalCents,
			TaxShareCents: s.TaxShareCents,
			TipShareCents: s.TipShareCents,
			TotalCents:    s.TotalCents(),
		}
	}

	return &SplitResponse{
		Shares:             shares,
		TotalSubtotalCents: result.TotalSubtotalCents,
		TotalTaxCents:      result.TotalTaxCents,
		TotalTipCents:      result.TotalTipCents,
		GrandTotalCents:    result.GrandTotalCents,
	}
}
