// Package resend adapts the Resend contacts API to ports.Mailer.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"impactdash/ports"
)

// Mailer manages audience contacts through Resend
type Mailer struct {
	client *resend.Client
}

var _ ports.Mailer = (*Mailer)(nil)

// New creates a mailer for apiKey
func New(apiKey string) *Mailer {
	return &Mailer{client: resend.NewClient(apiKey)}
}

// AddContact subscribes email to the audience
func (m *Mailer) AddContact(ctx context.Context, audienceID, email string) (*ports.ContactResult, error) {
	resp, err := m.client.Contacts.CreateWithContext(ctx, &resend.CreateContactRequest{
		Email:        email,
		AudienceId:   audienceID,
		Unsubscribed: false,
	})
	if err != nil {
		return nil, fmt.Errorf("resend create contact: %w", err)
	}
	return &ports.ContactResult{ID: resp.Id, Object: resp.Object}, nil
}

// RemoveContact deletes the contact with email from the audience
func (m *Mailer) RemoveContact(ctx context.Context, audienceID, email string) (*ports.ContactResult, error) {
	resp, err := m.client.Contacts.RemoveWithContext(ctx, audienceID, email)
	if err != nil {
		return nil, fmt.Errorf("resend remove contact: %w", err)
	}
	return &ports.ContactResult{ID: resp.Id, Object: resp.Object, Deleted: resp.Deleted}, nil
}
