package model

import "time"

// MailKind is the physical form of a mail item.
type MailKind string

const (
	MailLetter MailKind = "LETTER"
	MailParcel MailKind = "PARCEL"
)

// Valid reports whether k is a known mail kind.
func (k MailKind) Valid() bool {
	return k == MailLetter || k == MailParcel
}

// MailStatus is the handling state of a mail item.
type MailStatus string

const (
	MailReceived  MailStatus = "RECEIVED"
	MailScanned   MailStatus = "SCANNED"
	MailForwarded MailStatus = "FORWARDED"
	MailShredded  MailStatus = "SHREDDED"
	MailHeld      MailStatus = "HELD"
)

// Valid reports whether s is a known mail status.
func (s MailStatus) Valid() bool {
	switch s {
	case MailReceived, MailScanned, MailForwarded, MailShredded, MailHeld:
		return true
	}
	return false
}

// Terminal reports whether the item has left the mailroom for good.
func (s MailStatus) Terminal() bool {
	return s == MailForwarded || s == MailShredded
}

// MailItem is one piece of physical mail received into a mailbox.
type MailItem struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	MailboxID   string     `json:"mailbox_id"`
	Sender      string     `json:"sender"`
	Kind        MailKind   `json:"kind"`
	Size        Dimensions `json:"size"`
	WeightGrams int        `json:"weight_grams"`
	Oversized   bool       `json:"oversized"`
	Status      MailStatus `json:"status"`
	EnvelopeKey string     `json:"-"`
	ScanKey     string     `json:"-"`
	HasEnvelope bool       `json:"has_envelope"`
	HasScan     bool       `json:"has_scan"`
	ReceivedAt  time.Time  `json:"received_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Decorate fills the derived has_* flags from the storage keys.
func (m *MailItem) Decorate() {
	m.HasEnvelope = m.EnvelopeKey != ""
	m.HasScan = m.ScanKey != ""
}
