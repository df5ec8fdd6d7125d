package share

import (
	"fmt"
	"strings"

	"github.com/splitzy/splitzy/internal/bill"
	"github.com/splitzy/splitzy/internal/split"
)

// RenderShareText builds the plain-text summary of a computed split, one
// line per participant plus the grand total.
func RenderShareText(details *bill.BillDetails, result *split.BillResult) string {
	title := details.Bill.Title
	if title == "" {
		title = "Bill Split"
	}

	names := make(map[string]string, len(details.Participants))
	for _, p := range details.Participants {
		names[p.ID.String()] = p.DisplayName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title)
	for _, s := range result.ParticipantShares {
		fmt.Fprintf(&b, "- %s: %s\n", names[s.ParticipantID.String()], formatCents(s.TotalCents(), details.Bill.Currency))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", formatCents(result.GrandTotalCents, details.Bill.Currency))
	b.WriteString("\nSplit with Splitzy")

	return b.String()
}

// formatCents renders minor units as "CUR 12.34" without going through
// floating point.
func formatCents(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s %s%d.%02d", currency, sign, cents/100, cents%100)
}
