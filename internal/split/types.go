package split

import (
	"errors"

	"github.com/google/uuid"
)

// Participant is a calculation-only view of a bill participant.
// Identity is the ID; Name is display-only.
type Participant struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// LineItem is a priced, quantity-bearing entry on the bill. The order of
// AssignedParticipantIDs is significant: when an item's price does not divide
// evenly, the first participants in the list absorb the extra cents.
type LineItem struct {
	ID                     uuid.UUID   `json:"id"`
	Name                   string      `json:"name"`
	UnitPriceCents         int64       `json:"unit_price_cents"`
	Quantity               int64       `json:"quantity"`
	AssignedParticipantIDs []uuid.UUID `json:"assigned_participant_ids"`
}

// BillInput is the full snapshot the engine computes from.
type BillInput struct {
	Items        []LineItem    `json:"items"`
	TaxCents     int64         `json:"tax_cents"`
	TipCents     int64         `json:"tip_cents"`
	Participants []Participant `json:"participants"`
}

// ParticipantShare is one participant's computed portion of the bill.
type ParticipantShare struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	SubtotalCents int64     `json:"subtotal_cents"`
	TaxShareCents int64     `json:"tax_share_cents"`
	TipShareCents int64     `json:"tip_share_cents"`
}

// TotalCents is the participant's subtotal plus their tax and tip shares.
func (s ParticipantShare) TotalCents() int64 {
	return s.SubtotalCents + s.TaxShareCents + s.TipShareCents
}

// BillResult is the engine's output. ParticipantShares is ordered the same as
// the input participant list.
type BillResult struct {
	ParticipantShares  []ParticipantShare `json:"participant_shares"`
	TotalSubtotalCents int64              `json:"total_subtotal_cents"`
	TotalTaxCents      int64              `json:"total_tax_cents"`
	TotalTipCents      int64              `json:"total_tip_cents"`
	GrandTotalCents    int64              `json:"grand_total_cents"`
}

// Validation errors
var (
	ErrNegativePrice       = errors.New("item unit price cannot be negative")
	ErrNonPositiveQuantity = errors.New("item quantity must be positive")
	ErrNegativeAmount      = errors.New("tax and tip cannot be negative")
	ErrUnknownParticipant  = errors.New("item assigned to unknown participant")
	ErrAmountOverflow      = errors.New("monetary amount overflows")
)
