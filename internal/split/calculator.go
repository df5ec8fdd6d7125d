// Package split implements the bill-split allocation engine: given priced,
// quantity-bearing line items assigned to subsets of participants plus
// aggregate tax and tip, it computes how many cents each participant owes.
// All arithmetic is on integer minor units; the shares always sum back to the
// bill total exactly.
package split

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// fracEpsilon is the tie window for fractional-remainder ranking. Two
// remainders closer than this are considered equal and ordered by
// participant ID instead.
const fracEpsilon = 1e-6

// Validate checks the input against the engine's contract: non-negative
// prices, positive quantities, non-negative tax/tip, assignments that
// reference known participants, and products that fit in int64.
func Validate(in BillInput) error {
	if in.TaxCents < 0 || in.TipCents < 0 {
		return ErrNegativeAmount
	}

	known := make(map[uuid.UUID]bool, len(in.Participants))
	for _, p := range in.Participants {
		known[p.ID] = true
	}

	for _, item := range in.Items {
		if item.UnitPriceCents < 0 {
			return ErrNegativePrice
		}
		if item.Quantity <= 0 {
			return ErrNonPositiveQuantity
		}
		if item.UnitPriceCents > 0 && item.Quantity > math.MaxInt64/item.UnitPriceCents {
			return ErrAmountOverflow
		}
		for _, pid := range item.AssignedParticipantIDs {
			if !known[pid] {
				return ErrUnknownParticipant
			}
		}
	}

	return nil
}

// Calculate computes the split for a single bill snapshot. It is pure and
// deterministic: identical input yields identical output, and it may be called
// concurrently without coordination.
//
// Items with no assignees contribute to nobody's subtotal and are excluded
// from TotalSubtotalCents, even though tax and tip still ride on the grand
// total. That asymmetry is a deliberate product behavior carried over from
// the shipping app.
func Calculate(in BillInput) (*BillResult, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	// Step 1: per-participant subtotals from item assignments.
	subtotals := make(map[uuid.UUID]int64, len(in.Participants))
	for _, p := range in.Participants {
		subtotals[p.ID] = 0
	}

	var totalSubtotal int64
	for _, item := range in.Items {
		n := int64(len(item.AssignedParticipantIDs))
		if n == 0 {
			continue
		}

		totalItemPrice := item.UnitPriceCents * item.Quantity
		if totalSubtotal > math.MaxInt64-totalItemPrice {
			return nil, ErrAmountOverflow
		}
		totalSubtotal += totalItemPrice

		// The first `remainder` assignees, in assignment-list order, each
		// absorb one extra cent so the item sums back exactly.
		base := totalItemPrice / n
		remainder := totalItemPrice % n
		for i, pid := range item.AssignedParticipantIDs {
			share := base
			if int64(i) < remainder {
				share++
			}
			subtotals[pid] += share
		}
	}

	// Step 2: apportion tax and tip against the subtotals.
	taxShares, err := allocateProportionally(in.TaxCents, in.Participants, subtotals, totalSubtotal)
	if err != nil {
		return nil, err
	}
	tipShares, err := allocateProportionally(in.TipCents, in.Participants, subtotals, totalSubtotal)
	if err != nil {
		return nil, err
	}

	// Step 3: assemble. The grand total comes from the input tax/tip, not the
	// re-summed allocations, so rounding can never perturb it.
	shares := make([]ParticipantShare, len(in.Participants))
	for i, p := range in.Participants {
		shares[i] = ParticipantShare{
			ParticipantID: p.ID,
			SubtotalCents: subtotals[p.ID],
			TaxShareCents: taxShares[p.ID],
			TipShareCents: tipShares[p.ID],
		}
	}

	return &BillResult{
		ParticipantShares:  shares,
		TotalSubtotalCents: totalSubtotal,
		TotalTaxCents:      in.TaxCents,
		TotalTipCents:      in.TipCents,
		GrandTotalCents:    totalSubtotal + in.TaxCents + in.TipCents,
	}, nil
}

// allocateProportionally distributes amount across participants in proportion
// to their subtotals using largest-remainder (Hamilton) apportionment: floor
// every share with integer math, then hand the leftover cents to the
// participants with the largest fractional remainders. Ties within
// fracEpsilon are broken by ascending participant ID string so the output is
// reproducible regardless of input iteration order.
func allocateProportionally(amount int64, participants []Participant, subtotals map[uuid.UUID]int64, totalSubtotal int64) (map[uuid.UUID]int64, error) {
	shares := make(map[uuid.UUID]int64, len(participants))

	// Nothing to apportion against: the amount stays on the grand total but
	// is attributed to nobody.
	if totalSubtotal == 0 || amount == 0 {
		for _, p := range participants {
			shares[p.ID] = 0
		}
		return shares, nil
	}

	type remainder struct {
		id   uuid.UUID
		key  string
		frac float64
	}

	remainders := make([]remainder, 0, len(participants))
	var allocated int64
	for _, p := range participants {
		sub := subtotals[p.ID]
		if sub > 0 && sub > math.MaxInt64/amount {
			return nil, ErrAmountOverflow
		}

		// Floor share in exact integer math; float64 is used only to rank
		// the fractional remainders below.
		product := sub * amount
		floored := product / totalSubtotal
		shares[p.ID] = floored
		allocated += floored

		frac := float64(product%totalSubtotal) / float64(totalSubtotal)
		remainders = append(remainders, remainder{id: p.ID, key: p.ID.String(), frac: frac})
	}

	sort.Slice(remainders, func(i, j int) bool {
		if math.Abs(remainders[i].frac-remainders[j].frac) > fracEpsilon {
			return remainders[i].frac > remainders[j].frac
		}
		return remainders[i].key < remainders[j].key
	})

	// 0 <= leftover < len(participants) by construction.
	leftover := amount - allocated
	for i := int64(0); i < leftover && i < int64(len(remainders)); i++ {
		shares[remainders[i].id]++
	}

	return shares, nil
}
