package domain

// Section is one structural unit of a parsed document. Content may be empty
// for sections not flagged as obligation-bearing; the structuring stage never
// requests verbatim text for those.
type Section struct {
	Number         string `json:"section_number"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	PageStart      int    `json:"page_start"`
	PageEnd        int    `json:"page_end"`
	HasObligations bool   `json:"has_obligations"`
}

// DocumentStructure is the structuring stage's output for one document.
type DocumentStructure struct {
	Title         string    `json:"title"`
	DocumentType  string    `json:"document_type"`
	EffectiveDate string    `json:"effective_date"`
	Version       string    `json:"version"`
	TotalPages    int       `json:"total_pages"`
	Sections      []Section `json:"sections"`
}
