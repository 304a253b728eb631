package domain

type AlertType string

const (
	AlertTypeOverdue        AlertType = "overdue"
	AlertTypeDocumentExpiry AlertType = "document_expiry"
	AlertTypeLicenseExpiry  AlertType = "license_expiry"
)

type AlertPriority string

const (
	AlertPriorityHigh   AlertPriority = "high"
	AlertPriorityMedium AlertPriority = "medium"
	AlertPriorityLow    AlertPriority = "low"
)

// Alert is a derived operational warning; alerts are never persisted, they
// are recomputed on each scan.
type Alert struct {
	Type     AlertType         `json:"type"`
	Priority AlertPriority     `json:"priority"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Data     map[string]string `json:"data,omitempty"`
}

// PriorityWeight orders alerts high to low for display.
func (a Alert) PriorityWeight() int {
	switch a.Priority {
	case AlertPriorityHigh:
		return 3
	case AlertPriorityMedium:
		return 2
	default:
		return 1
	}
}
