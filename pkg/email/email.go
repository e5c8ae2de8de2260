package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"go-hackathon-backend/config"
	"go-hackathon-backend/internal/domain"
	"go-hackathon-backend/pkg/logger"
)

// Service sends lifecycle emails via SMTP. It implements
// domain.Notifier: Send reports success/failure by boolean and the
// caller decides what that means for the surrounding transition.
type Service struct {
	host        string
	port        string
	username    string
	password    string
	fromEmail   string
	frontendURL string
}

// NewService creates an email service from SMTP configuration.
func NewService(cfg *config.Config) *Service {
	return &Service{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.SMTPUsername,
		password:    cfg.SMTPPassword,
		fromEmail:   cfg.SMTPFromEmail,
		frontendURL: cfg.FrontendURL,
	}
}

type templateData struct {
	FirstName   string
	Deadline    string
	FrontendURL string
}

const baseTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1a1a2e; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .cta { display: inline-block; background: #e94560; color: white; padding: 12px 24px; text-decoration: none; margin-top: 10px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>{{.Title}}</h1></div>
        <div class="content">{{.Body}}</div>
        <div class="footer"><p>You are receiving this email because you applied to the hackathon.</p></div>
    </div>
</body>
</html>`

var emailContent = map[domain.EmailKind]struct {
	Subject string
	Title   string
	Body    string
}{
	domain.EmailInvite: {
		Subject: "You're invited!",
		Title:   "Invitation",
		Body: `<p>Hi {{.FirstName}},</p>
<p>Great news: you have been invited to the hackathon!</p>
<p>Please confirm your spot before <strong>{{.Deadline}}</strong>. Unanswered invites are released after the deadline.</p>
<p><a class="cta" href="{{.FrontendURL}}/dashboard">Confirm my spot</a></p>`,
	},
	domain.EmailRejected: {
		Subject: "Application update",
		Title:   "Application Update",
		Body: `<p>Hi {{.FirstName}},</p>
<p>Thank you for applying. Unfortunately we cannot offer you a spot this time.</p>
<p>We would love to see you apply again next year.</p>`,
	},
	domain.EmailConfirmed: {
		Subject: "See you there!",
		Title:   "Spot Confirmed",
		Body: `<p>Hi {{.FirstName}},</p>
<p>Your spot is confirmed. Event details and the check-in QR code are on your dashboard.</p>
<p><a class="cta" href="{{.FrontendURL}}/dashboard">Open dashboard</a></p>`,
	},
	domain.EmailDetails: {
		Subject: "Event details",
		Title:   "Event Details",
		Body: `<p>Hi {{.FirstName}},</p>
<p>The event is getting close. Venue, schedule, and travel information are on your dashboard.</p>
<p><a class="cta" href="{{.FrontendURL}}/dashboard">Open dashboard</a></p>`,
	},
}

// Send dispatches the email of the given kind to the applicant.
// Returns false on any failure; the failure is logged here with the
// applicant id so a committed transition is never blocked on SMTP.
func (s *Service) Send(a *domain.Applicant, kind domain.EmailKind) bool {
	content, ok := emailContent[kind]
	if !ok {
		logger.Log.Error("Unknown email kind", "kind", string(kind), "applicant_id", a.ID)
		return false
	}

	data := templateData{
		FirstName:   a.FirstName,
		FrontendURL: s.frontendURL,
	}
	if a.InviteAcceptDeadline != nil {
		data.Deadline = a.InviteAcceptDeadline.Format("Monday, 2 January 2006 15:04 MST")
	}

	bodyTmpl, err := template.New("body").Parse(content.Body)
	if err != nil {
		logger.Log.Error("Email body template parse failed", "kind", string(kind), "error", err)
		return false
	}
	var bodyBuf bytes.Buffer
	if err := bodyTmpl.Execute(&bodyBuf, data); err != nil {
		logger.Log.Error("Email body template exec failed", "kind", string(kind), "error", err)
		return false
	}

	pageTmpl, err := template.New("page").Parse(baseTemplate)
	if err != nil {
		return false
	}
	var pageBuf bytes.Buffer
	if err := pageTmpl.Execute(&pageBuf, map[string]any{
		"Title": content.Title,
		"Body":  template.HTML(bodyBuf.String()),
	}); err != nil {
		return false
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		a.Email,
		content.Subject,
		pageBuf.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{a.Email}, msg); err != nil {
		logger.Log.Error("Email send failed", "kind", string(kind), "applicant_id", a.ID, "error", err)
		return false
	}
	return true
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *Service) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
