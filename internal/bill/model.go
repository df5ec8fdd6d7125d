package bill

import (
	"time"

	"github.com/google/uuid"
)

// Bill represents a single shared bill owned by a user
type Bill struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Title      string    `json:"title"`
	Currency   string    `json:"currency"`
	TaxCents   int64     `json:"tax_cents"`
	TipCents   int64     `json:"tip_cents"`
	ShareToken *string   `json:"share_token,omitempty"`
	LinkActive bool      `json:"link_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Participant represents a person on a bill. LinkedUserID is set when the
// participant corresponds to a registered user (used for notifications).
type Participant struct {
	ID           uuid.UUID `json:"id"`
	BillID       uuid.UUID `json:"bill_id"`
	DisplayName  string    `json:"display_name"`
	LinkedUserID *string   `json:"linked_user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Item represents a priced line on a bill. AssignedParticipantIDs preserves
// assignment order, which decides who absorbs leftover cents.
type Item struct {
	ID                     uuid.UUID   `json:"id"`
	BillID                 uuid.UUID   `json:"bill_id"`
	Name                   string      `json:"name"`
	UnitPriceCents         int64       `json:"unit_price_cents"`
	Quantity               int64       `json:"quantity"`
	AssignedParticipantIDs []uuid.UUID `json:"assigned_participant_ids"`
	CreatedAt              time.Time   `json:"created_at"`
}

// BillDetails combines a bill with its participants and items
type BillDetails struct {
	Bill         *Bill
	Participants []*Participant
	Items        []*Item
}
