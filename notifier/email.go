package notifier

import (
	"bytes"
	"cine-grid/config"
	"cine-grid/grid"
	"cine-grid/render"
	"fmt"
	"log"

	gomail "gopkg.in/mail.v2"
)

// Sender delivers composed messages; *gomail.Dialer satisfies it
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier mails the rendered ratings grid
type EmailNotifier struct {
	senderEmail    string
	recipientEmail string
	sender         Sender
}

// NewEmailNotifier creates a notifier that sends through SMTP
func NewEmailNotifier(cfg config.EmailConfig) (*EmailNotifier, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("email notifications need an SMTP host and recipient")
	}

	log.Printf("Email Configuration: Host=%s, Port=%d, Sender=%s, Token=%s, Recipient=%s",
		cfg.SMTPHost, cfg.SMTPPort, cfg.SenderEmail, maskSecret(cfg.SenderPassword), cfg.RecipientEmail)

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.SenderPassword)
	return NewEmailNotifierWithSender(cfg, d), nil
}

// NewEmailNotifierWithSender uses sender in place of an SMTP dialer
func NewEmailNotifierWithSender(cfg config.EmailConfig, sender Sender) *EmailNotifier {
	return &EmailNotifier{
		senderEmail:    cfg.SenderEmail,
		recipientEmail: cfg.RecipientEmail,
		sender:         sender,
	}
}

// NotifyChart sends the chart as HTML with a plain text bar chart alternative.
// Empty layouts are skipped.
func (n *EmailNotifier) NotifyChart(username string, year int, layout grid.Layout) error {
	if layout.Empty {
		log.Println("No rated reviews to notify about")
		return nil
	}

	title := render.Title(username, year)

	var htmlBody bytes.Buffer
	if err := (&render.HTML{Title: title}).Render(&htmlBody, layout); err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	var textBody bytes.Buffer
	if err := (&render.Text{Title: title}).Render(&textBody, layout); err != nil {
		return fmt.Errorf("failed to render email text: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.senderEmail)
	m.SetHeader("To", n.recipientEmail)
	m.SetHeader("Subject", fmt.Sprintf("cine-grid: %s (%d films)", title, layout.Total))
	m.SetBody("text/plain", textBody.String())
	m.AddAlternative("text/html", htmlBody.String())

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Email notification sent to %s with %d rated films", n.recipientEmail, layout.Total)
	return nil
}

func maskSecret(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) > 8:
		return secret[:4] + "..." + secret[len(secret)-4:]
	default:
		return "***"
	}
}
