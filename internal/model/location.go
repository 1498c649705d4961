package model

import (
	"fmt"
	"time"
)

// Location is a physical mailroom site.
type Location struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AddressLine string    `json:"address_line"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	PostalCode  string    `json:"postal_code"`
	Country     string    `json:"country"`
	Clusters    []Cluster `json:"clusters,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Cluster groups mailboxes inside a location (a wall, a rack, a room).
type Cluster struct {
	ID         string    `json:"id"`
	LocationID string    `json:"location_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// MailboxStatus is the rental state of a mailbox.
type MailboxStatus string

const (
	MailboxAvailable MailboxStatus = "AVAILABLE"
	MailboxAssigned  MailboxStatus = "ASSIGNED"
	MailboxDisabled  MailboxStatus = "DISABLED"
)

// Valid reports whether s is a known mailbox status.
func (s MailboxStatus) Valid() bool {
	return s == MailboxAvailable || s == MailboxAssigned || s == MailboxDisabled
}

// Mailbox is a numbered box inside a cluster. UserID is set iff Status is ASSIGNED.
type Mailbox struct {
	ID        string        `json:"id"`
	ClusterID string        `json:"cluster_id"`
	BoxNumber string        `json:"box_number"`
	Size      Dimensions    `json:"size"`
	Status    MailboxStatus `json:"status"`
	UserID    *string       `json:"user_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// MailboxAddress is a mailbox together with the site it lives in, as shown to its renter.
type MailboxAddress struct {
	Mailbox  Mailbox  `json:"mailbox"`
	Cluster  Cluster  `json:"cluster"`
	Location Location `json:"location"`
}

// Lines renders the postal address a customer gives out for their mailbox.
func (a MailboxAddress) Lines() []string {
	return []string{
		fmt.Sprintf("%s #%s", a.Location.AddressLine, a.Mailbox.BoxNumber),
		fmt.Sprintf("%s, %s %s", a.Location.City, a.Location.State, a.Location.PostalCode),
		a.Location.Country,
	}
}
