package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Source identifies one external catalog.
type Source string

const (
	SourceAmazon      Source = "amazon"
	SourceFlipkart    Source = "flipkart"
	SourceMDComputers Source = "mdcomputers"
	SourceBing        Source = "bing"
)

// SiteName is the human-facing label for a source.
func (s Source) SiteName() string {
	switch s {
	case SourceAmazon:
		return "Amazon"
	case SourceFlipkart:
		return "Flipkart"
	case SourceMDComputers:
		return "MD Computers"
	case SourceBing:
		return "Bing Shopping"
	default:
		return string(s)
	}
}

// RawRecord is one unnormalized item as an adapter extracted it. Keys are
// source-specific; the normalizer owns the mapping to canonical fields.
type RawRecord map[string]string

// PriceUnavailableText is the JSON form of a price that could not be parsed.
const PriceUnavailableText = "unavailable"

// Price is either a numeric amount or unavailable.
type Price struct {
	Amount float64
	Valid  bool
}

// PriceUnavailable is the sentinel for a missing or unparseable price.
var PriceUnavailable = Price{}

// PriceOf returns a valid price with the given amount.
func PriceOf(amount float64) Price {
	return Price{Amount: amount, Valid: true}
}

func (p Price) String() string {
	if !p.Valid {
		return PriceUnavailableText
	}
	return strconv.FormatFloat(p.Amount, 'f', -1, 64)
}

// MarshalJSON encodes a valid price as a number and anything else as
// the string "unavailable".
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return json.Marshal(PriceUnavailableText)
	}
	return []byte(strconv.FormatFloat(p.Amount, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number, or any string (treated as unavailable).
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '"' || bytes.Equal(data, []byte("null")) {
		*p = PriceUnavailable
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*p = PriceOf(f)
	return nil
}

// ProductListing is the canonical shape every source is normalized into.
// Required fields are always populated; optional ones are empty strings.
type ProductListing struct {
	Title    string `json:"title"`
	Price    Price  `json:"price"`
	Link     string `json:"link"`
	Source   Source `json:"source"`
	Site     string `json:"site"`
	Brand    string `json:"brand"`
	Seller   string `json:"seller"`
	Category string `json:"category"`
}
