package model

// Audit is one review/annotation pass over a piece, read from the separate
// auditing database. Content, when present, is the reviewer-approved overview
// text for the piece referenced by ArtID.
type Audit struct {
	AuditID     int    `json:"audit_id"`
	Auditor     string `json:"auditor"`
	Content     string `json:"content"`
	StartTime   string `json:"start_time"`
	PublishTime string `json:"publish_time"`
	Flagged     bool   `json:"flagged"`
	ArtID       int    `json:"art_id"`
	ChatGPTTime string `json:"chatgpt_time"`
	Skipped     bool   `json:"skipped"`
	GPTOutput   string `json:"gpt_output"`
	GPTModel    string `json:"gpt_model"`
}

// HasContent reports whether the audit carries text worth copying into a
// piece overview.
func (a Audit) HasContent() bool {
	return a.Content != ""
}
