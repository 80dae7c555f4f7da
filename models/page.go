package models

// Page is the paginated list envelope shared by the catalog endpoints.
type Page[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}
