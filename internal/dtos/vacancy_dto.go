package dtos

// VacancySubmission is the body of POST /.
type VacancySubmission struct {
	Text        string `json:"text"`
	Channel     string `json:"channel"`
	Keyword     string `json:"keyword"`
	HasImage    bool   `json:"has_image"`
	Timestamp   string `json:"timestamp"`
	MessageLink string `json:"message_link"`
}

// IngestResponse is returned for a processed submission.
type IngestResponse struct {
	OK    bool   `json:"ok"`
	ID    uint   `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// ErrorResponse is returned when a request is refused before processing.
type ErrorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}
