package pipeline

import "time"

// Stage is one named step of a tenant's sales pipeline, ordered by
// OrderIndex.
type Stage struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OrderIndex int       `json:"orderIndex"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Lead struct {
	ID             string    `json:"id"`
	CompanyName    string    `json:"companyName"`
	ContactName    string    `json:"contactName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	SourceID       string    `json:"sourceId"`
	CurrentStageID string    `json:"currentStageId"`
	Status         string    `json:"status"`
	AssignedTo     string    `json:"assignedTo"`
	IsConverted    bool      `json:"isConverted"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type StageHistoryEntry struct {
	ID          string    `json:"id"`
	LeadID      string    `json:"leadId"`
	FromStageID string    `json:"fromStageId"`
	ToStageID   string    `json:"toStageId"`
	ChangedBy   string    `json:"changedBy"`
	Notes       string    `json:"notes,omitempty"`
	ChangedAt   time.Time `json:"changedAt"`
}

// StageMetrics is derived on demand from history; it is never stored.
type StageMetrics struct {
	StageID        string `json:"stageId"`
	StageName      string `json:"stageName"`
	StageCount     int    `json:"stageCount"`
	AvgTimeInStage string `json:"avgTimeInStage"`
	ConversionRate int    `json:"conversionRate"`
}

type Opportunity struct {
	ID                string     `json:"id"`
	LeadID            string     `json:"leadId"`
	Name              string     `json:"name"`
	Amount            float64    `json:"amount"`
	Currency          string     `json:"currency"`
	Status            string     `json:"status"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// DateRange bounds a metrics query; nil ends are unbounded.
type DateRange struct {
	From *time.Time
	To   *time.Time
}
