package entity

import "time"

const MailStatusPending = "pending"

type MailContent struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// MailMessage is the document consumed by the external mail sender.
type MailMessage struct {
	ID        string      `json:"id"`
	To        string      `json:"to"`
	Message   MailContent `json:"message"`
	CreatedAt time.Time   `json:"createdAt"`
	Status    string      `json:"status"`
}
