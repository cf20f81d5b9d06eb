package backend

import "context"

// NearbyPlacesRequest is the body for POST /maps/places/nearby. BusinessType
// is the place category to search for; both the competition and deep-clone
// layers use this endpoint with different category semantics.
type NearbyPlacesRequest struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMiles  float64 `json:"radius_miles"`
	BusinessType string  `json:"business_type"`
	Limit        int     `json:"limit,omitempty"`
}

// NearbyPlacesResponse holds the places returned by the nearby search.
type NearbyPlacesResponse struct {
	Places []Place `json:"places"`
}

// Place is a single nearby place. The backend proxies more than one upstream
// provider, so several fields arrive under either of two names; use the
// accessor methods rather than reading the raw fields.
type Place struct {
	ID               string  `json:"id"`
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	Lat              float64 `json:"lat"`
	Latitude         float64 `json:"latitude"`
	Lng              float64 `json:"lng"`
	Longitude        float64 `json:"longitude"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	ReviewCount      int     `json:"review_count"`
	Address          string  `json:"address"`
	FormattedAddress string  `json:"formatted_address"`
}

// Identifier returns whichever of id/place_id is set.
func (p Place) Identifier() string {
	if p.ID != "" {
		return p.ID
	}
	return p.PlaceID
}

// Coordinates returns the place position, preferring the short field names.
func (p Place) Coordinates() (lat, lng float64) {
	lat, lng = p.Lat, p.Lng
	if lat == 0 && p.Latitude != 0 {
		lat = p.Latitude
	}
	if lng == 0 && p.Longitude != 0 {
		lng = p.Longitude
	}
	return lat, lng
}

// Reviews returns whichever review count field is set.
func (p Place) Reviews() int {
	if p.UserRatingsTotal != 0 {
		return p.UserRatingsTotal
	}
	return p.ReviewCount
}

// FullAddress returns whichever address field is set.
func (p Place) FullAddress() string {
	if p.Address != "" {
		return p.Address
	}
	return p.FormattedAddress
}

// NearbyPlaces searches for places of a given business type around a point.
func (c *httpClient) NearbyPlaces(ctx context.Context, req NearbyPlacesRequest) (*NearbyPlacesResponse, error) {
	var resp NearbyPlacesResponse
	if err := c.post(ctx, "/maps/places/nearby", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
