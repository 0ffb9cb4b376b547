package domain

import "time"

// DeliveryStatus is the per-recipient outcome of a bulk send.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// Delivery records the outcome of one recipient in a bulk dispatch.
type Delivery struct {
	Number    string         `json:"number"`
	Status    DeliveryStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// BulkReport accumulates the result of one bulk dispatch. At any point
// during the run Sent+Failed equals the number of recipients processed
// so far; after completion both sums equal the full recipient count.
type BulkReport struct {
	Success bool       `json:"success"`
	Sent    int        `json:"sent"`
	Failed  int        `json:"failed"`
	Details []Delivery `json:"details"`
}

// GroupRoster is the result of extracting participant numbers from a group.
type GroupRoster struct {
	Success          bool     `json:"success"`
	GroupName        string   `json:"groupName,omitempty"`
	ParticipantCount int      `json:"participantCount,omitempty"`
	Numbers          []string `json:"numbers"`
	Error            string   `json:"error,omitempty"`
}

// GroupCreation is the result of creating a new group.
type GroupCreation struct {
	Success          bool   `json:"success"`
	GroupID          string `json:"groupId,omitempty"`
	GroupName        string `json:"groupName,omitempty"`
	ParticipantCount int    `json:"participantCount,omitempty"`
	Error            string `json:"error,omitempty"`
}
