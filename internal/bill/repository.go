package bill

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles bill, participant, and item persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new bill repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateBill inserts a new bill into the database
func (r *Repository) CreateBill(ctx context.Context, ownerID string, req *CreateBillRequest) (*Bill, error) {
	query := `
		INSERT INTO bills (id, owner_id, title, currency, tax_cents, tip_cents, link_active)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING id, owner_id, title, currency, tax_cents, tip_cents, share_token, link_active, created_at
	`

	b := &Bill{}
	err := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		ownerID,
		req.Title,
		req.Currency,
		req.TaxCents,
		req.TipCents,
	).Scan(
		&b.ID,
		&b.OwnerID,
		&b.Title,
		&b.Currency,
		&b.TaxCents,
		&b.TipCents,
		&b.ShareToken,
		&b.LinkActive,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}

	return b, nil
}

// GetBillByID retrieves a bill by its ID
func (r *Repository) GetBillByID(ctx context.Context, id uuid.UUID) (*Bill, error) {
	query := `
		SELECT id, owner_id, title, currency, tax_cents, tip_cents, share_token, link_active, created_at
		FROM bills
		WHERE id = $1
	`

	b := &Bill{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID,
		&b.OwnerID,
		&b.Title,
		&b.Currency,
		&b.TaxCents,
		&b.TipCents,
		&b.ShareToken,
		&b.LinkActive,
		&b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return b, nil
}

// ListBillsByOwner retrieves bills owned by a user, newest first
func (r *Repository) ListBillsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*Bill, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bills WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}

	query := `
		SELECT id, owner_id, title, currency, tax_cents, tip_cents, share_token, link_active, created_at
		FROM bills
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*Bill
	for rows.Next() {
		b := &Bill{}
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Title, &b.Currency, &b.TaxCents, &b.TipCents, &b.ShareToken, &b.LinkActive, &b.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}

	return bills, total, rows.Err()
}

// UpdateBill applies a partial update to a bill
func (r *Repository) UpdateBill(ctx context.Context, id uuid.UUID, req *UpdateBillRequest) (*Bill, error) {
	query := `
		UPDATE bills
		SET title = COALESCE($2, title),
		    currency = COALESCE($3, currency),
		    tax_cents = COALESCE($4, tax_cents),
		    tip_cents = COALESCE($5, tip_cents)
		WHERE id = $1
		RETURNING id, owner_id, title, currency, tax_cents, tip_cents, share_token, link_active, created_at
	`

	b := &Bill{}
	err := r.db.QueryRowContext(ctx, query, id, req.Title, req.Currency, req.TaxCents, req.TipCents).Scan(
		&b.ID,
		&b.OwnerID,
		&b.Title,
		&b.Currency,
		&b.TaxCents,
		&b.TipCents,
		&b.ShareToken,
		&b.LinkActive,
		&b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update bill: %w", err)
	}

	return b, nil
}

// DeleteBill removes a bill and, via cascading constraints, its participants,
// items, and assignments
func (r *Repository) DeleteBill(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrBillNotFound
	}

	return nil
}

// AddParticipant inserts a new participant on a bill
func (r *Repository) AddParticipant(ctx context.Context, billID uuid.UUID, req *AddParticipantRequest) (*Participant, error) {
	query := `
		INSERT INTO participants (id, bill_id, display_name, linked_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, bill_id, display_name, linked_user_id, created_at
	`

	p := &Participant{}
	err := r.db.QueryRowContext(ctx, query, uuid.New(), billID, req.DisplayName, req.LinkedUserID).Scan(
		&p.ID,
		&p.BillID,
		&p.DisplayName,
		&p.LinkedUserID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}

	return p, nil
}

// ListParticipants retrieves the participants of a bill in insertion order
func (r *Repository) ListParticipants(ctx context.Context, billID uuid.UUID) ([]*Participant, error) {
	query := `
		SELECT id, bill_id, display_name, linked_user_id, created_at
		FROM participants
		WHERE bill_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*Participant
	for rows.Next() {
		p := &Participant{}
		if err := rows.Scan(&p.ID, &p.BillID, &p.DisplayName, &p.LinkedUserID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// DeleteParticipant removes a participant and their assignments from a bill
func (r *Repository) DeleteParticipant(ctx context.Context, billID, participantID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM participants WHERE id = $1 AND bill_id = $2`, participantID, billID)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrParticipantNotFound
	}

	return nil
}

// AddItem inserts a new line item on a bill
func (r *Repository) AddItem(ctx context.Context, billID uuid.UUID, req *AddItemRequest) (*Item, error) {
	query := `
		INSERT INTO items (id, bill_id, name, unit_price_cents, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, bill_id, name, unit_price_cents, quantity, created_at
	`

	i := &Item{}
	err := r.db.QueryRowContext(ctx, query, uuid.New(), billID, req.Name, req.UnitPriceCents, req.Quantity).Scan(
		&i.ID,
		&i.BillID,
		&i.Name,
		&i.UnitPriceCents,
		&i.Quantity,
		&i.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	return i, nil
}

// UpdateItem applies a partial update to a line item
func (r *Repository) UpdateItem(ctx context.Context, billID, itemID uuid.UUID, req *UpdateItemRequest) (*Item, error) {
	query := `
		UPDATE items
		SET name = COALESCE($3, name),
		    unit_price_cents = COALESCE($4, unit_price_cents),
		    quantity = COALESCE($5, quantity)
		WHERE id = $1 AND bill_id = $2
		RETURNING id, bill_id, name, unit_price_cents, quantity, created_at
	`

	i := &Item{}
	err := r.db.QueryRowContext(ctx, query, itemID, billID, req.Name, req.UnitPriceCents, req.Quantity).Scan(
		&i.ID,
		&i.BillID,
		&i.Name,
		&i.UnitPriceCents,
		&i.Quantity,
		&i.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return i, nil
}

// DeleteItem removes a line item and its assignments
func (r *Repository) DeleteItem(ctx context.Context, billID, itemID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM items WHERE id = $1 AND bill_id = $2`, itemID, billID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}

	return nil
}

// ListItems retrieves a bill's line items with their assignee lists in
// assignment order
func (r *Repository) ListItems(ctx context.Context, billID uuid.UUID) ([]*Item, error) {
	query := `
		SELECT id, bill_id, name, unit_price_cents, quantity, created_at
		FROM items
		WHERE bill_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	byID := make(map[uuid.UUID]*Item)
	for rows.Next() {
		i := &Item{AssignedParticipantIDs: []uuid.UUID{}}
		if err := rows.Scan(&i.ID, &i.BillID, &i.Name, &i.UnitPriceCents, &i.Quantity, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, i)
		byID[i.ID] = i
	}
	if err := rows.Err(); err != nil {
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
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var itemID, participantID uuid.UUID
		if err := assignRows.Scan(&itemID, &participantID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if i, ok := byID[itemID]; ok {
			i.AssignedParticipantIDs = append(i.AssignedParticipantIDs, participantID)
		}
	}

	return items, assignRows.Err()
}

// SetAssignments replaces an item's assignee list, preserving the given order
// via the position column
func (r *Repository) SetAssignments(ctx context.Context, itemID uuid.UUID, participantIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM item_assignments WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}

	for pos, pid := range participantIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO item_assignments (item_id, participant_id, position) VALUES ($1, $2, $3)`,
			itemID, pid, pos)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignments: %w", err)
	}

	return nil
}

// GetItemByID retrieves a single item scoped to a bill
func (r *Repository) GetItemByID(ctx context.Context, billID, itemID uuid.UUID) (*Item, error) {
	query := `
		SELECT id, bill_id, name, unit_price_cents, quantity, created_at
		FROM items
		WHERE id = $1 AND bill_id = $2
	`

	i := &Item{AssignedParticipantIDs: []uuid.UUID{}}
	err := r.db.QueryRowContext(ctx, query, itemID, billID).Scan(
		&i.ID,
		&i.BillID,
		&i.Name,
		&i.UnitPriceCents,
		&i.Quantity,
		&i.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return i, nil
}
