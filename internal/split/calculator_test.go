package split

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pA = Participant{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Name: "A"}
	pB = Participant{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Name: "B"}
	pC = Participant{ID: uuid.MustParse("00000000-0000-0000-0000-000000000003"), Name: "C"}
)

func item(priceCents, quantity int64, assignees ...uuid.UUID) LineItem {
	return LineItem{
		ID:                     uuid.New(),
		Name:                   "item",
		UnitPriceCents:         priceCents,
		Quantity:               quantity,
		AssignedParticipantIDs: assignees,
	}
}

func shareFor(t *testing.T, result *BillResult, p Participant) ParticipantShare {
	t.Helper()
	for _, s := range result.ParticipantShares {
		if s.ParticipantID == p.ID {
			return s
		}
	}
	t.Fatalf("no share for participant %s", p.ID)
	return ParticipantShare{}
}

func TestCalculate_SingleParticipant(t *testing.T) {
	result, err := Calculate(BillInput{
		Items:        []LineItem{item(1000, 1, pA.ID)},
		TaxCents:     100,
		TipCents:     200,
		Participants: []Participant{pA},
	})
	require.NoError(t, err)

	require.Len(t, result.ParticipantShares, 1)
	s := result.ParticipantShares[0]
	assert.Equal(t, int64(1000), s.SubtotalCents)
	assert.Equal(t, int64(100), s.TaxShareCents)
	assert.Equal(t, int64(200), s.TipShareCents)
	assert.Equal(t, int64(1300), s.TotalCents())
	assert.Equal(t, int64(1000), result.TotalSubtotalCents)
	assert.Equal(t, int64(1300), result.GrandTotalCents)
}

func TestCalculate_EqualTwoWaySplit(t *testing.T) {
	result, err := Calculate(BillInput{
		Items:        []LineItem{item(2000, 1, pA.ID, pB.ID)},
		TaxCents:     200,
		TipCents:     400,
		Participants: []Participant{pA, pB},
	})
	require.NoError(t, err)

	for _, p := range []Participant{pA, pB} {
		s := shareFor(t, result, p)
		assert.Equal(t, int64(1000), s.SubtotalCents)
		assert.Equal(t, int64(100), s.TaxShareCents)
		assert.Equal(t, int64(200), s.TipShareCents)
	}
}

func TestCalculate_RemainderByAssignmentOrder(t *testing.T) {
	// 100 cents three ways: the first assignee in list order gets the extra
	// cent, regardless of participant IDs.
	result, err := Calculate(BillInput{
		Items:        []LineItem{item(100, 1, pA.ID, pB.ID, pC.ID)},
		Participants: []Participant{pA, pB, pC},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(34), shareFor(t, result, pA).SubtotalCents)
	assert.Equal(t, int64(33), shareFor(t, result, pB).SubtotalCents)
	assert.Equal(t, int64(33), shareFor(t, result, pC).SubtotalCents)
	assert.Equal(t, int64(100), result.TotalSubtotalCents)
}

func TestCalculate_RemainderFollowsListNotIDOrder(t *testing.T) {
	// Same item, assignment list reversed: now C absorbs the extra cent.
	result, err := Calculate(BillInput{
		Items:        []LineItem{item(100, 1, pC.ID, pB.ID, pA.ID)},
		Participants: []Participant{pA, pB, pC},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(34), shareFor(t, result, pC).SubtotalCents)
	assert.Equal(t, int64(33), shareFor(t, result, pB).SubtotalCents)
	assert.Equal(t, int64(33), shareFor(t, result, pA).SubtotalCents)
}

func TestCalculate_ProportionalTaxAndTip(t *testing.T) {
	result, err := Calculate(BillInput{
		Items: []LineItem{
			item(1000, 1, pA.ID),
			item(3000, 1, pB.ID),
		},
		TaxCents:     400,
		TipCents:     800,
		Participants: []Participant{pA, pB},
	})
	require.NoError(t, err)

	sA := shareFor(t, result, pA)
	sB := shareFor(t, result, pB)
	assert.Equal(t, int64(100), sA.TaxShareCents)
	assert.Equal(t, int64(200), sA.TipShareCents)
	assert.Equal(t, int64(300), sB.TaxShareCents)
	assert.Equal(t, int64(600), sB.TipShareCents)
}

func TestCalculate_LargestRemainderTieBreakByID(t *testing.T) {
	// Equal subtotals of 100 each, tax 100: floors are 33,33,33 with one cent
	// left over. The tie is broken by ascending participant ID string, so pA
	// gets 34.
	result, err := Calculate(BillInput{
		Items: []LineItem{
			item(100, 1, pA.ID),
			item(100, 1, pB.ID),
			item(100, 1, pC.ID),
		},
		TaxCents:     100,
		Participants: []Participant{pA, pB, pC},
	})
	require.NoError(t, err)

	var sum int64
	taxes := make([]int64, 0, 3)
	for _, s := range result.ParticipantShares {
		sum += s.TaxShareCents
		taxes = append(taxes, s.TaxShareCents)
	}
	assert.Equal(t, int64(100), sum)
	assert.ElementsMatch(t, []int64{33, 33, 34}, taxes)
	assert.Equal(t, int64(34), shareFor(t, result, pA).TaxShareCents)
}

func TestCalculate_TieBreakIgnoresParticipantOrder(t *testing.T) {
	input := BillInput{
		Items: []LineItem{
			item(100, 1, pA.ID),
			item(100, 1, pB.ID),
			item(100, 1, pC.ID),
		},
		TaxCents:     100,
		Participants: []Participant{pC, pB, pA},
	}
	result, err := Calculate(input)
	require.NoError(t, err)

	// Lowest ID still wins the leftover cent even when listed last.
	assert.Equal(t, int64(34), shareFor(t, result, pA).TaxShareCents)
}

func TestCalculate_ZeroSubtotalLeavesTaxUnattributed(t *testing.T) {
	result, err := Calculate(BillInput{
		Items:        []LineItem{item(500, 1)}, // nobody assigned
		TaxCents:     500,
		TipCents:     0,
		Participants: []Participant{pA, pB},
	})
	require.NoError(t, err)

	for _, s := range result.ParticipantShares {
		assert.Zero(t, s.SubtotalCents)
		assert.Zero(t, s.TaxShareCents)
		assert.Zero(t, s.TipShareCents)
	}
	assert.Equal(t, int64(0), result.TotalSubtotalCents)
	// The unallocatable tax still counts toward the grand total.
	assert.Equal(t, int64(500), result.GrandTotalCents)
}

func TestCalculate_UnassignedItemExcludedFromSubtotal(t *testing.T) {
	result, err := Calculate(BillInput{
		Items: []LineItem{
			item(1000, 1, pA.ID),
			item(700, 1), // unassigned, vanishes from the split
		},
		Participants: []Participant{pA},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), result.TotalSubtotalCents)
	assert.Equal(t, int64(1000), shareFor(t, result, pA).SubtotalCents)
}

func TestCalculate_QuantityMultipliesUnitPrice(t *testing.T) {
	// 2 beers @ 500 shared two ways.
	result, err := Calculate(BillInput{
		Items:        []LineItem{item(500, 2, pA.ID, pB.ID)},
		Participants: []Participant{pA, pB},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(500), shareFor(t, result, pA).SubtotalCents)
	assert.Equal(t, int64(500), shareFor(t, result, pB).SubtotalCents)
}

func TestCalculate_Conservation(t *testing.T) {
	// A messy bill: odd prices, shared items, unassigned item, awkward tax.
	input := BillInput{
		Items: []LineItem{
			item(333, 3, pA.ID, pB.ID),
			item(101, 1, pB.ID, pC.ID, pA.ID),
			item(1999, 1, pC.ID),
			item(250, 2), // unassigned
		},
		TaxCents:     517,
		TipCents:     999,
		Participants: []Participant{pA, pB, pC},
	}
	result, err := Calculate(input)
	require.NoError(t, err)

	var subSum, taxSum, tipSum int64
	for _, s := range result.ParticipantShares {
		subSum += s.SubtotalCents
		taxSum += s.TaxShareCents
		tipSum += s.TipShareCents
	}
	assert.Equal(t, result.TotalSubtotalCents, subSum)
	assert.Equal(t, int64(517), taxSum)
	assert.Equal(t, int64(999), tipSum)
	assert.Equal(t, result.TotalSubtotalCents+517+999, result.GrandTotalCents)
}

func TestCalculate_Idempotent(t *testing.T) {
	input := BillInput{
		Items: []LineItem{
			item(777, 1, pA.ID, pB.ID, pC.ID),
			item(1250, 2, pB.ID, pC.ID),
		},
		TaxCents:     321,
		TipCents:     654,
		Participants: []Participant{pA, pB, pC},
	}

	first, err := Calculate(input)
	require.NoError(t, err)
	second, err := Calculate(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidate_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		input   BillInput
		wantErr error
	}{
		{
			name: "negative price",
			input: BillInput{
				Items:        []LineItem{item(-1, 1, pA.ID)},
				Participants: []Participant{pA},
			},
			wantErr: ErrNegativePrice,
		},
		{
			name: "zero quantity",
			input: BillInput{
				Items:        []LineItem{item(100, 0, pA.ID)},
				Participants: []Participant{pA},
			},
			wantErr: ErrNonPositiveQuantity,
		},
		{
			name: "negative tax",
			input: BillInput{
				TaxCents:     -1,
				Participants: []Participant{pA},
			},
			wantErr: ErrNegativeAmount,
		},
		{
			name: "negative tip",
			input: BillInput{
				TipCents:     -1,
				Participants: []Participant{pA},
			},
			wantErr: ErrNegativeAmount,
		},
		{
			name: "unknown assignee",
			input: BillInput{
				Items:        []LineItem{item(100, 1, pB.ID)},
				Participants: []Participant{pA},
			},
			wantErr: ErrUnknownParticipant,
		},
		{
			name: "price times quantity overflows",
			input: BillInput{
				Items:        []LineItem{item(1<<40, 1<<40, pA.ID)},
				Participants: []Participant{pA},
			},
			wantErr: ErrAmountOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCalculate_NoParticipants(t *testing.T) {
	// An empty bill is valid and produces an empty, zero-total result.
	result, err := Calculate(BillInput{})
	require.NoError(t, err)
	assert.Empty(t, result.ParticipantShares)
	assert.Zero(t, result.GrandTotalCents)
}
