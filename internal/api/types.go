package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Listing is a property listing as served by the marketplace backend.
type Listing struct {
	PropertyID       FlexString `json:"property_id"`
	Title            string     `json:"title"`
	PropertyType     string     `json:"property_type"`
	PurchaseCategory string     `json:"purchase_category"`
	State            string     `json:"state"`
	City             string     `json:"city"`
	Location         string     `json:"location"`
	Status           string     `json:"status"`
	Price            FlexString `json:"price"`
	Bedrooms         int        `json:"bedrooms"`
	Bathrooms        int        `json:"bathrooms"`
	ImageURL         string     `json:"image_url"`
}

// ListingsResponse is the wrapped form of the listings endpoint payload.
type ListingsResponse struct {
	Listings []Listing `json:"listings"`
}

// GeocodeResponse is the reverse-geocode proxy payload.
type GeocodeResponse struct {
	DisplayName string         `json:"display_name"`
	Address     GeocodeAddress `json:"address"`
}

// GeocodeAddress holds the address components of a reverse-geocode result.
type GeocodeAddress struct {
	State   string `json:"state"`
	Region  string `json:"region"`
	County  string `json:"county"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Region returns the first non-empty regional component of the address.
func (r *GeocodeResponse) Region() string {
	if r == nil {
		return ""
	}
	for _, v := range []string{r.Address.State, r.Address.Region, r.Address.County} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// FlexString decodes from either a JSON string or a JSON number.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }
