package activation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"

	"orgaccount-backend/shared/database/models"
	"orgaccount-backend/shared/database/repository"
	"orgaccount-backend/shared/email"
	utils "orgaccount-backend/shared/utils/auth"
)

var (
	// ErrInvalidTicket covers expired, tampered and already-consumed tickets.
	ErrInvalidTicket = errors.New("Invalid or expired activation link.")
	// ErrUnknownAccount reports an activation request for a nonexistent account.
	ErrUnknownAccount = errors.New("User not found.")
)

// emailTemplate renders the activation email body.
var emailTemplate = template.Must(template.New("activation").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .button { display: inline-block; padding: 12px 24px; background-color: #4CAF50; color: #fff; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 24px; font-size: 12px; color: #888; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Welcome, {{.FirstName}}!</h2>
        <p>Thanks for signing up. Please confirm your email address to activate your account.</p>
        <p><a class="button" href="{{.Link}}">Activate Account</a></p>
        <p>If the button does not work, copy this link into your browser:</p>
        <p>{{.Link}}</p>
        <div class="footer">
            <p>This link expires in {{.TTLHours}} hours. If you did not create this account, you can ignore this email.</p>
        </div>
    </div>
</body>
</html>
`))

// Service owns the pending -> active transition. Tickets are stateless:
// signed over the account's current credential state, so they cannot be
// replayed after the password or last-login changes.
type Service struct {
	accounts   repository.AccountRepository
	dispatcher email.Dispatcher
	secret     string
	ttl        time.Duration
	baseURL    string
}

func NewService(accounts repository.AccountRepository, dispatcher email.Dispatcher, secret string, ttl time.Duration, baseURL string) *Service {
	return &Service{
		accounts:   accounts,
		dispatcher: dispatcher,
		secret:     secret,
		ttl:        ttl,
		baseURL:    baseURL,
	}
}

// Request issues an activation ticket for the account and emails the link.
func (s *Service) Request(ctx context.Context, user *models.User) error {
	ticket, err := utils.MakeActivationTicket(s.secret, user, s.ttl)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/activate/%s/%s", s.baseURL, user.ID, ticket)

	var body bytes.Buffer
	data := struct {
		FirstName string
		Link      string
		TTLHours  int
	}{
		FirstName: user.FirstName,
		Link:      link,
		TTLHours:  int(s.ttl.Hours()),
	}
	if err := emailTemplate.Execute(&body, data); err != nil {
		return err
	}

	return s.dispatcher.Send(user.Email, "Activate your account", body.String(), true)
}

// Resend re-issues the activation email for a still-pending account. The
// outcome for unknown emails and non-pending accounts is identical so the
// endpoint cannot be used to probe which addresses are registered.
func (s *Service) Resend(ctx context.Context, emailAddr string) error {
	user, err := s.accounts.GetByEmail(ctx, utils.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if user.Status != models.StatusPending {
		return nil
	}

	return s.Request(ctx, user)
}

// Confirm verifies the ticket against the account's current state and
// promotes a pending account to active.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID, ticket string) (*models.User, error) {
	user, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, err
	}

	// A ticket only means anything while the account is still pending.
	if user.Status != models.StatusPending {
		return nil, ErrInvalidTicket
	}

	if err := utils.VerifyActivationTicket(s.secret, user, ticket); err != nil {
		return nil, ErrInvalidTicket
	}

	if err := s.accounts.UpdateStatus(ctx, id, models.StatusActive); err != nil {
		return nil, err
	}

	user.Status = models.StatusActive
	return user, nil
}
