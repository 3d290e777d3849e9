package model

// AppError is the error payload carried by every typed error in the
// pipeline. Stage tells an automated wrapper which phase failed
// (fetch_sub / parse_sub / assemble / emit).
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage"`

	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"` // <= 200 chars
	Hint    string `json:"hint,omitempty"`
}
