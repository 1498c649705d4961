// Package notify delivers customer emails about their mail.
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mailroom/internal/model"
)

// Message is a plain-text email to one recipient.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Notifier sends customer notifications.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier writes notifications to the log instead of sending them.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	n.log.Info("notification",
		zap.String("channel", "log"),
		zap.String("to", redact(msg.To)),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// MailReceived tells a customer that a new item arrived in their mailbox.
func MailReceived(to model.Profile, item model.MailItem) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", greeting(to))
	fmt.Fprintf(&b, "A new %s from %s arrived in your mailbox.\n", strings.ToLower(string(item.Kind)), senderOrUnknown(item.Sender))
	if item.Oversized {
		b.WriteString("It is larger than your mailbox and is being kept at the front desk.\n")
	}
	b.WriteString("\nSign in to choose what we should do with it.\n")
	return Message{To: to.Email, Subject: "You have new mail", Text: b.String()}
}

// ActionCompleted tells a customer that their request was carried out.
func ActionCompleted(to model.Profile, req model.MailActionRequest) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", greeting(to))
	fmt.Fprintf(&b, "Your %s request has been completed.\n", actionLabel(req.Action))
	if req.Action == model.ActionForward && req.TrackingNumber != "" {
		fmt.Fprintf(&b, "Carrier: %s\nTracking number: %s\n", req.Carrier, req.TrackingNumber)
	}
	return Message{To: to.Email, Subject: "Your mail request is complete", Text: b.String()}
}

// ActionRejected tells a customer that their request was declined.
func ActionRejected(to model.Profile, req model.MailActionRequest) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", greeting(to))
	fmt.Fprintf(&b, "Your %s request was declined.\n", actionLabel(req.Action))
	if req.Notes != "" {
		fmt.Fprintf(&b, "Reason: %s\n", req.Notes)
	}
	return Message{To: to.Email, Subject: "Your mail request was declined", Text: b.String()}
}

func greeting(p model.Profile) string {
	if p.FullName != "" {
		return p.FullName
	}
	return "there"
}

func senderOrUnknown(s string) string {
	if s == "" {
		return "an unknown sender"
	}
	return s
}

func actionLabel(a model.ActionType) string {
	return strings.ToLower(strings.ReplaceAll(string(a), "_", " "))
}

// redact keeps the first character of the local part and the domain.
func redact(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
