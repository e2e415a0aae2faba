package constants

// DocumentStatus is the processing status the persistence layer keeps per document.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// MaxRetries caps the externally triggered retries of a single document.
const MaxRetries = 3
