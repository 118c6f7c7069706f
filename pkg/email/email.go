package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"
	"time"
)

// Config holds SMTP configuration
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	FrontendURL  string
}

// Invitation is the data rendered into an invitation email
type Invitation struct {
	To         string
	SourceName string
	Role       string
	Code       string
	InvitedBy  string
	ExpiresAt  time.Time
}

// Sender sends transactional emails over SMTP
type Sender struct {
	config Config
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSender creates a new SMTP sender
func NewSender(config Config) *Sender {
	return &Sender{config: config, send: smtp.SendMail}
}

// Enabled reports whether an SMTP host is configured
func (s *Sender) Enabled() bool {
	return s.config.SMTPHost != ""
}

// SendInvitation mails the accept link for a source invitation
func (s *Sender) SendInvitation(inv Invitation) error {
	acceptURL := fmt.Sprintf("%s/invitations/accept?code=%s",
		s.config.FrontendURL,
		url.QueryEscape(inv.Code),
	)

	body, err := renderInvitation(inv, acceptURL)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("You're invited to %s", inv.SourceName)
	return s.deliver(inv.To, s.buildHTMLEmail(inv.To, subject, body))
}

func (s *Sender) deliver(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *Sender) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)
	return []byte(headers + htmlBody)
}

var invitationTmpl = template.Must(template.New("invitation").Parse(invitationTemplate))

func renderInvitation(inv Invitation, acceptURL string) (string, error) {
	data := struct {
		Invitation
		AcceptURL string
		Expires   string
	}{
		Invitation: inv,
		AcceptURL:  acceptURL,
		Expires:    inv.ExpiresAt.Format("2 Jan 2006"),
	}

	var buf bytes.Buffer
	if err := invitationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const invitationTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Invitation</title></head>
<body style="margin:0;padding:0;font-family:'Segoe UI',Tahoma,Verdana,sans-serif;background-color:#f4f7fa;">
  <table role="presentation" style="max-width:600px;margin:40px auto;background:#ffffff;border-radius:12px;">
    <tr>
      <td style="padding:40px 30px;">
        <h2 style="color:#1a1a2e;margin:0 0 20px 0;">Join {{.SourceName}}</h2>
        <p style="color:#4a5568;font-size:16px;line-height:1.6;">
          {{if .InvitedBy}}{{.InvitedBy}} invited you{{else}}You have been invited{{end}} to <strong>{{.SourceName}}</strong> as <strong>{{.Role}}</strong>.
        </p>
        <p style="color:#4a5568;font-size:16px;line-height:1.6;">This invitation expires on {{.Expires}}.</p>
        <p style="margin:30px 0;">
          <a href="{{.AcceptURL}}" style="display:inline-block;padding:14px 28px;background:#4f46e5;color:#ffffff;text-decoration:none;border-radius:8px;">Accept invitation</a>
        </p>
        <p style="color:#718096;font-size:14px;">Or use this code: <code>{{.Code}}</code></p>
      </td>
    </tr>
  </table>
</body>
</html>
`
