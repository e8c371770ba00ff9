package mailer

import (
	"context"
	"strings"

	"github.com/iliyamo/photoshare-api/internal/queue"
	"github.com/iliyamo/photoshare-api/internal/utils"
)

// ConfirmPath is the route serving confirmation links.
const ConfirmPath = "/v1/auth/confirmed_email/"

// TokenIssuer mints email-confirmation tokens.
type TokenIssuer interface {
	IssueEmailToken(email string) (utils.Token, error)
}

// ConfirmationMailer turns signup events into confirmation emails.
type ConfirmationMailer struct {
	tokens TokenIssuer
	sender *Sender
}

func NewConfirmationMailer(tokens TokenIssuer, sender *Sender) *ConfirmationMailer {
	return &ConfirmationMailer{tokens: tokens, sender: sender}
}

// HandleSignup implements queue.SignupHandler.
func (m *ConfirmationMailer) HandleSignup(ctx context.Context, ev queue.SignupEvent) error {
	tok, err := m.tokens.IssueEmailToken(ev.Email)
	if err != nil {
		return err
	}
	return m.sender.SendConfirmation(ctx, ev.Email, ev.Username, ConfirmLink(ev.HostURL, tok.Raw))
}

// ConfirmLink joins host and token into the public confirmation URL.
func ConfirmLink(hostURL, token string) string {
	return strings.TrimRight(hostURL, "/") + ConfirmPath + token
}
