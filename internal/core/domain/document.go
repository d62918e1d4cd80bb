package domain

import "time"

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// CommencementDate is one {date, description} pair attached to a document.
// Date is an ISO day (YYYY-MM-DD).
type CommencementDate struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

type Document struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Source            string             `json:"source"`
	DocumentType      string             `json:"document_type"`
	FileHash          string             `json:"file_hash"`
	StoragePath       string             `json:"storage_path"`
	EffectiveDate     string             `json:"effective_date,omitempty"`
	Version           string             `json:"version,omitempty"`
	SectionCount      int                `json:"section_count"`
	PageCount         int                `json:"page_count"`
	CommencementDates []CommencementDate `json:"commencement_dates,omitempty"`
	Status            ProcessingStatus   `json:"status"`
	Error             string             `json:"error,omitempty"`
	ProcessingCost    float64            `json:"processing_cost"`
	ObligationCount   int                `json:"obligation_count"`
	Archived          bool               `json:"archived"`
	UploadedAt        time.Time          `json:"uploaded_at"`
	ProcessedAt       *time.Time         `json:"processed_at,omitempty"`
}

// Upload carries everything the ingest path needs. Hash is computed by the
// caller (the HTTP adapter) over the raw bytes and is trusted as the
// document's identity for duplicate detection.
type Upload struct {
	Filename     string
	Title        string
	Source       string
	DocumentType string
	Hash         string
	Content      []byte
}

// PlatformStats aggregates archived documents that produced obligations.
type PlatformStats struct {
	DocumentCount    int     `json:"document_count"`
	TotalObligations int     `json:"total_obligations"`
	TotalPages       int     `json:"total_pages"`
	TotalCost        float64 `json:"total_cost"`
}
