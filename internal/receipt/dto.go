package receipt

// StructureRequest carries raw OCR text to be turned into draft line items
type StructureRequest struct {
	RawText string `json:"raw_text"`
}

// DraftItem is a best-effort item extracted from receipt text. It becomes a
// bill line item only after the user reviews it.
type DraftItem struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// StructuredReceipt is the model's reading of a receipt. Tax, tip, and total
// are nil when not found on the receipt.
type StructuredReceipt struct {
	Items      []DraftItem `json:"items"`
	TaxCents   *int64      `json:"tax_cents,omitempty"`
	TipCents   *int64      `json:"tip_cents,omitempty"`
	TotalCents *int64      `json:"total_cents,omitempty"`
}
