package notifications

import "time"

const (
	TypeLeadStale        = "lead_stale"
	TypeLeadAssigned     = "lead_assigned"
	TypeWorkLogPending   = "worklog_pending"
	TypeWorkLogDecided   = "worklog_decided"
	TypePayslipApproved  = "payslip_approved"
	TypeDocumentUploaded = "document_uploaded"
)

type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
