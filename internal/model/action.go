package model

import "time"

// ActionType is what a customer asks the mailroom to do with a mail item.
type ActionType string

const (
	ActionOpenAndScan ActionType = "OPEN_AND_SCAN"
	ActionForward     ActionType = "FORWARD"
	ActionShred       ActionType = "SHRED"
	ActionHold        ActionType = "HOLD"
)

// Valid reports whether a is a known action type.
func (a ActionType) Valid() bool {
	switch a {
	case ActionOpenAndScan, ActionForward, ActionShred, ActionHold:
		return true
	}
	return false
}

// RequiresKYC reports whether the requester must have an approved identity check.
// Holding an item exposes nothing and destroys nothing, so it is exempt.
func (a ActionType) RequiresKYC() bool {
	return a != ActionHold
}

// ResultStatus is the mail item status once the action is completed.
func (a ActionType) ResultStatus() MailStatus {
	switch a {
	case ActionOpenAndScan:
		return MailScanned
	case ActionForward:
		return MailForwarded
	case ActionShred:
		return MailShredded
	default:
		return MailHeld
	}
}

// RequestStatus is the workflow state of a mail action request.
type RequestStatus string

const (
	RequestPending    RequestStatus = "PENDING"
	RequestApproved   RequestStatus = "APPROVED"
	RequestInProgress RequestStatus = "IN_PROGRESS"
	RequestCompleted  RequestStatus = "COMPLETED"
	RequestRejected   RequestStatus = "REJECTED"
	RequestCanceled   RequestStatus = "CANCELED"
)

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestInProgress, RequestCompleted, RequestRejected, RequestCanceled:
		return true
	}
	return false
}

// Actionable reports whether the request still blocks new requests on the same item.
func (s RequestStatus) Actionable() bool {
	return s == RequestPending || s == RequestApproved || s == RequestInProgress
}

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:    {RequestApproved, RequestInProgress, RequestRejected, RequestCanceled},
	RequestApproved:   {RequestInProgress, RequestRejected},
	RequestInProgress: {RequestCompleted},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to RequestStatus) bool {
	for _, s := range requestTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ActionableStatuses lists the statuses that count as an open request.
func ActionableStatuses() []RequestStatus {
	return []RequestStatus{RequestPending, RequestApproved, RequestInProgress}
}

// MailActionRequest is a customer's instruction for one mail item.
type MailActionRequest struct {
	ID             string        `json:"id"`
	MailItemID     string        `json:"mail_item_id"`
	UserID         string        `json:"user_id"`
	Action         ActionType    `json:"action"`
	Status         RequestStatus `json:"status"`
	ForwardAddress string        `json:"forward_address,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	Carrier        string        `json:"carrier,omitempty"`
	TrackingNumber string        `json:"tracking_number,omitempty"`
	ProcessedBy    *string       `json:"processed_by,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}
