package models

type Pagination struct {
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	HasMore     bool `json:"hasMore"`
}

// ListResult is the body of GET /api/pokemon.
type ListResult struct {
	Pokemon    []PokemonSummary `json:"pokemon"`
	Pagination Pagination       `json:"pagination"`
}
