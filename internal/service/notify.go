package service

import (
	"fmt"

	"dashboard-backend/internal/config"
	apperrors "dashboard-backend/internal/errors"
	"dashboard-backend/internal/logger"

	"github.com/wneessen/go-mail"
)

// SMTPNotifier delivers invitation mail over SMTP. It implements Notifier and
// is always invoked detached from the primary write path.
type SMTPNotifier struct {
	cfg *config.Config
	log *logger.Logger
}

// NewSMTPNotifier creates a new SMTP notifier
func NewSMTPNotifier(cfg *config.Config) *SMTPNotifier {
	return &SMTPNotifier{
		cfg: cfg,
		log: logger.New(),
	}
}

// SendInvitation sends the invitation mail with an acceptance link embedding
// the token.
func (n *SMTPNotifier) SendInvitation(email string, data InvitationEmailData) error {
	if n.cfg.SMTPHost == "" {
		return apperrors.ErrSMTPNotConfigured
	}

	acceptURL := fmt.Sprintf("%s/invitations/accept/%s", n.cfg.AppBaseURL, data.Token)

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("You've been invited to join %s", data.TeamName))
	msg.SetBodyString(mail.TypeTextHTML, invitationMailBody(acceptURL, data))

	opts := []mail.Option{mail.WithPort(n.cfg.SMTPPort)}
	if n.cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.SMTPUser),
			mail.WithPassword(n.cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(n.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("send invitation mail: %w", err)
	}

	n.log.WithField("email", email).Info("invitation email sent")
	return nil
}

// invitationMailBody renders the HTML body for an invitation mail. The expiry
// line comes from the invitation itself, so it tracks the configured TTL.
func invitationMailBody(acceptURL string, data InvitationEmailData) string {
	return fmt.Sprintf(
		`<p>%s invited you to join the team <b>%s</b> at <b>%s</b> as a %s.</p>
<p><a href="%s">Accept invitation</a></p>
<p>This invitation expires on %s.</p>`,
		data.InviterName, data.TeamName, data.OrganizationName, data.Role, acceptURL,
		data.ExpiresAt.Format("January 2, 2006"),
	)
}

// LogNotifier is used when SMTP is not configured. It records the invitation
// instead of delivering it, keeping create flows working in development.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a new log-only notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.New()}
}

// SendInvitation logs the invitation instead of sending mail
func (n *LogNotifier) SendInvitation(email string, data InvitationEmailData) error {
	n.log.WithFields(map[string]interface{}{
		"email": email,
		"team":  data.TeamName,
		"role":  data.Role,
	}).Info("invitation issued (mail delivery disabled)")
	return nil
}
