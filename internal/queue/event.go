// Package queue defines message payloads exchanged over the message broker.
// Mail delivery is an external concern: the API only publishes what should
// be sent and a consumer (here, or a real mail relay in production) drains
// the queue.
package queue

// Mail kinds published to the mail.outbound queue.
const (
	MailInvitation = "invitation"
	MailRecovery   = "recovery"
)

// MailEvent is published whenever the API wants an email delivered. It
// contains everything a downstream mailer needs without querying the
// primary database.
type MailEvent struct {
	Kind      string `json:"kind"`       // invitation | recovery
	To        string `json:"to"`         // recipient address
	TeamName  string `json:"team_name,omitempty"`  // invitation: inviting team
	CoachName string `json:"coach_name,omitempty"` // invitation: inviting coach
	Token     string `json:"token,omitempty"`      // recovery: raw reset token
	QueuedAt  string `json:"queued_at"`
}
