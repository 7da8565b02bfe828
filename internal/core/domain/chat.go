package domain

// SearchResult is the best-matching passage for a (document, query) pair as
// scored by the document-search backend.
type SearchResult struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// ChatAnswer is the generated answer returned to the chat surface, paired
// with the relevance score of the passage it was grounded on.
type ChatAnswer struct {
	Text  string  `json:"answer"`
	Score float64 `json:"score"`
}
