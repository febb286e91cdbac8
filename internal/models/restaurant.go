package models

// IndexEntry is one search hit: just enough to look the full record up.
type IndexEntry struct {
	ID      string `json:"RestaurantID"`
	Cuisine string `json:"Cuisine"`
}

// Restaurant is the full record resolved from the record store.
type Restaurant struct {
	ID          string  `json:"BusinessID"`
	Name        string  `json:"Name"`
	Address     string  `json:"Address"`
	Rating      float64 `json:"Rating"`
	ReviewCount int     `json:"NumberOfReviews"`
}
