package app

import (
	"context"
	"regexp"

	"impactdash/internal"
	"impactdash/internal/errors"
	"impactdash/ports"
)

const (
	MsgEmailRequired     = "E-Mail-Adresse ist erforderlich"
	MsgEmailInvalid      = "Ungültige E-Mail-Adresse"
	MsgNewsletterConfig  = "Newsletter-Konfiguration fehlt"
	MsgSubscribeFailed   = "Anmeldung fehlgeschlagen. Bitte versuche es später erneut."
	MsgUnsubscribeFailed = "Abmeldung fehlgeschlagen. Bitte versuche es später erneut."
	MsgSubscribed        = "Erfolgreich angemeldet!"
	MsgUnsubscribed      = "Erfolgreich abgemeldet!"
	MsgUnexpectedFailure = "Ein unerwarteter Fehler ist aufgetreten"
)

// emailPattern is local@domain.tld with no whitespace (including Unicode
// spaces) and a single @ per part.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// ValidEmail reports whether email has the accepted shape
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NewsletterService adds and removes audience contacts
type NewsletterService struct {
	mailer     ports.Mailer
	audienceID string
	logger     *internal.Logger
}

// NewNewsletterService creates a newsletter service
func NewNewsletterService(mailer ports.Mailer, audienceID string, logger *internal.Logger) *NewsletterService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &NewsletterService{mailer: mailer, audienceID: audienceID, logger: logger}
}

func (s *NewsletterService) validate(email string) error {
	if email == "" {
		return errors.ValidationError(MsgEmailRequired)
	}
	if !ValidEmail(email) {
		return errors.ValidationError(MsgEmailInvalid)
	}
	if s.audienceID == "" || s.mailer == nil {
		s.logger.Error("[NewsletterService] RESEND_AUDIENCE_ID is not configured")
		return errors.ConfigInvalid(MsgNewsletterConfig)
	}
	return nil
}

// Subscribe adds email to the audience
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*ports.ContactResult, error) {
	if err := s.validate(email); err != nil {
		return nil, err
	}
	res, err := s.mailer.AddContact(ctx, s.audienceID, email)
	if err != nil {
		s.logger.Error("[NewsletterService] subscribe failed: %v", err)
		return nil, errors.ExternalFailure(MsgSubscribeFailed, err)
	}
	s.logger.Info("[NewsletterService] newsletter subscription successful")
	return res, nil
}

// Unsubscribe removes email from the audience
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) (*ports.ContactResult, error) {
	if err := s.validate(email); err != nil {
		return nil, err
	}
	res, err := s.mailer.RemoveContact(ctx, s.audienceID, email)
	if err != nil {
		s.logger.Error("[NewsletterService] unsubscribe failed: %v", err)
		return nil, errors.ExternalFailure(MsgUnsubscribeFailed, err)
	}
	s.logger.Info("[NewsletterService] newsletter unsubscribe successful")
	return res, nil
}
