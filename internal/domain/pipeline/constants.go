package pipeline

const (
	LeadStatusNew         = "new"
	LeadStatusContacted   = "contacted"
	LeadStatusQualified   = "qualified"
	LeadStatusUnqualified = "unqualified"

	OpportunityStatusOpen = "open"
	OpportunityStatusWon  = "won"
	OpportunityStatusLost = "lost"
)

var LeadStatuses = []string{LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusUnqualified}

var OpportunityStatuses = []string{OpportunityStatusOpen, OpportunityStatusWon, OpportunityStatusLost}
