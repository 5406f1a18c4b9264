// internal/domain/diagnostics/dto.go
package diagnostics

// CollectionSummary is what a store reports about its collections or tables.
type CollectionSummary struct {
	Total int
	Names []string
}

// DatabaseCheck is the body of the test_database diagnostic.
type DatabaseCheck struct {
	Success         bool     `json:"success"`
	Message         string   `json:"message,omitempty"`
	Collections     *int     `json:"collections,omitempty"`
	CollectionNames []string `json:"collection_names,omitempty"`
	Error           string   `json:"error,omitempty"`
	Required        []string `json:"required,omitempty"`
}
