package share

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles share link persistence on top of the bills schema
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new share repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetBillOwner returns the owner of a bill, or found=false if the bill does
// not exist
func (r *Repository) GetBillOwner(ctx context.Context, billID uuid.UUID) (string, bool, error) {
	var ownerID string
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM bills WHERE id = $1`, billID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get bill owner: %w", err)
	}
	return ownerID, true, nil
}

// SetShareToken stores a new share token on the bill and activates the link
func (r *Repository) SetShareToken(ctx context.Context, billID uuid.UUID, token string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bills SET share_token = $2, link_active = true WHERE id = $1`, billID, token)
	if err != nil {
		return fmt.Errorf("failed to set share token: %w", err)
	}
	return nil
}

// GetShareToken returns the bill's current token, if any
func (r *Repository) GetShareToken(ctx context.Context, billID uuid.UUID) (*string, error) {
	var token *string
	err := r.db.QueryRowContext(ctx, `SELECT share_token FROM bills WHERE id = $1`, billID).Scan(&token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share token: %w", err)
	}
	return token, nil
}

// ClearShareToken removes the token and deactivates the link
func (r *Repository) ClearShareToken(ctx context.Context, billID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bills SET share_token = NULL, link_active = false WHERE id = $1`, billID)
	if err != nil {
		return fmt.Errorf("failed to clear share token: %w", err)
	}
	return nil
}

// GetSnapshotByToken assembles the redacted public snapshot for an active
// share token. Returns nil when the token is unknown or the link is revoked.
func (r *Repository) GetSnapshotByToken(ctx context.Context, token string) (*PublicSnapshot, error) {
	var billID uuid.UUID
	snapshot := &PublicSnapshot{Items: []PublicItem{}, Participants: []string{}}

	query := `
		SELECT id, title, currency, created_at, tax_cents, tip_cents
		FROM bills
		WHERE share_token = $1 AND link_active = true
	`

	var createdAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&billID,
		&snapshot.Title,
		&snapshot.Currency,
		&createdAt,
		&snapshot.TaxCents,
		&snapshot.TipCents,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shared bill: %w", err)
	}
	if createdAt.Valid {
		snapshot.CreatedAt = createdAt.Time.UTC().Format("2006-01-02T15:04:05Z")
	}

	participantQuery := `
		SELECT id, display_name
		FROM participants
		WHERE bill_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, participantQuery, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared participants: %w", err)
	}
	defer rows.Close()

	names := make(map[uuid.UUID]string)
	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan shared participant: %w", err)
		}
		names[id] = name
		snapshot.Participants = append(snapshot.Participants, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemQuery := `
		SELECT id, name, unit_price_cents, quantity
		FROM items
		WHERE bill_id = $1
		ORDER BY created_at, id
	`

	itemRows, err := r.db.QueryContext(ctx, itemQuery, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared items: %w", err)
	}
	defer itemRows.Close()

	itemIndex := make(map[uuid.UUID]int)
	for itemRows.Next() {
		var id uuid.UUID
		item := PublicItem{AssignedTo: []string{}}
		if err := itemRows.Scan(&id, &item.Name, &item.UnitPriceCents, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan shared item: %w", err)
		}
		itemIndex[id] = len(snapshot.Items)
		snapshot.Items = append(snapshot.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	assignQuery := `
		SELECT a.item_id, a.participant_id
		FROM item_assignments a
		JOIN items i ON i.id = a.item_id
		WHERE i.bill_id = $1
		ORDER BY a.item_id, a.position
	`

	assignRows, err := r.db.QueryContext(ctx, assignQuery, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var itemID, participantID uuid.UUID
		if err := assignRows.Scan(&itemID, &participantID); err != nil {
			return nil, fmt.Errorf("failed to scan shared assignment: %w", err)
		}
		if idx, ok := itemIndex[itemID]; ok {
			snapshot.Items[idx].AssignedTo = append(snapshot.Items[idx].AssignedTo, names[participantID])
		}
	}

	return snapshot, assignRows.Err()
}
