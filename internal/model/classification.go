package model

// ClassificationRequest is the body of POST /classify.
type ClassificationRequest struct {
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

// ClassificationResponse is returned by POST /classify.
type ClassificationResponse struct {
	Confidence     *float64 `json:"confidence,omitempty"`
	Intent         string   `json:"intent"`
	RawResponse    string   `json:"raw_response,omitempty"`
	ProcessingTime float64  `json:"processing_time"`
}

// BatchResult is one positional element of a POST /batch-label response.
// Exactly one of Intent or Error is set.
type BatchResult struct {
	Input  string `json:"input"`
	Intent string `json:"intent,omitempty"`
	Error  string `json:"error,omitempty"`
}

// AuditRecord is one line of the append-only classification audit log.
type AuditRecord struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Summary reports the outcome of a batch labeling run.
type Summary struct {
	Attempted int
	Labeled   int
	Skipped   int
}
