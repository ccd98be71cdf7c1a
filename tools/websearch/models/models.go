package models

// Result is one search hit: the real URL plus the text shown for it.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
