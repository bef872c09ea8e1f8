package models

// SellerAll selects every registered source.
const SellerAll = "all"

// SearchRequest is the input to the aggregator.
type SearchRequest struct {
	// Query is the product search text. Must be at least 2 characters
	// after trimming.
	Query string `form:"query" json:"query"`

	// Seller filters sources: "all" (default) or one source name.
	// Unrecognised values behave like "all".
	Seller string `form:"seller" json:"seller,omitempty"`

	// Limit caps how many listings each source contributes.
	// Default: 50.
	Limit int `form:"limit" json:"limit,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults(defaultLimit int) {
	if r.Seller == "" {
		r.Seller = SellerAll
	}
	if r.Limit <= 0 {
		r.Limit = defaultLimit
	}
}
