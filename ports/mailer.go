package ports

import "context"

// ContactResult is what the mailing provider returns for a contact operation
type ContactResult struct {
	ID      string `json:"id,omitempty"`
	Object  string `json:"object,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// Mailer manages newsletter audience contacts
type Mailer interface {
	AddContact(ctx context.Context, audienceID, email string) (*ContactResult, error)
	RemoveContact(ctx context.Context, audienceID, email string) (*ContactResult, error)
}
