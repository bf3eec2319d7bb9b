package models

// WorkflowMessage is the payload carried by a queued workflow request.
type WorkflowMessage struct {
	RunID string `json:"run_id,omitempty"`
	Query string `json:"query"`
}
