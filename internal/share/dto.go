package share

// LinkResponse is returned when a share link is created
type LinkResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// ShareTextResponse carries the rendered plain-text summary of a bill
type ShareTextResponse struct {
	Text string `json:"text"`
}

// PublicItem is the redacted view of a line item for link viewers
type PublicItem struct {
	Name           string   `json:"name"`
	UnitPriceCents int64    `json:"unit_price_cents"`
	Quantity       int64    `json:"quantity"`
	AssignedTo     []string `json:"assigned_to"`
}

// PublicSnapshot is the read-only view served to holders of an active share
// token. It deliberately carries no user or participant identifiers, only
// display names.
type PublicSnapshot struct {
	Title        string       `json:"title"`
	Currency     string       `json:"currency"`
	CreatedAt    string       `json:"created_at"`
	TaxCents     int64        `json:"tax_cents"`
	TipCents     int64        `json:"tip_cents"`
	Items        []PublicItem `json:"items"`
	Participants []string     `json:"participants"`
}
