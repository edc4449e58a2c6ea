// Package email forwards contact-page messages to the team inbox through Resend.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

var inquiryTemplate = template.Must(template.New("inquiry").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin:0;padding:24px;font-family:Arial,Helvetica,sans-serif;background-color:#f1f5f9;">
  <table width="560" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:32px;">
    <tr><td>
      <h2 style="color:#0f172a;font-size:18px;margin:0 0 16px 0;">New contact message</h2>
      <p style="color:#475569;font-size:14px;margin:0 0 4px 0;"><strong>{{.Name}}</strong> &lt;{{.Email}}&gt;</p>
      <p style="color:#94a3b8;font-size:12px;margin:0 0 16px 0;">{{.CreatedAt.Format "2006-01-02 15:04 MST"}}</p>
      <p style="color:#0f172a;font-size:15px;line-height:1.6;white-space:pre-wrap;margin:0;">{{.Message}}</p>
    </td></tr>
  </table>
</body>
</html>`))

// ResendMailer implements ports.Mailer with the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
	inbox  string
}

// NewResendMailer builds a mailer that sends from from to inbox.
// from must belong to a domain verified in Resend.
func NewResendMailer(apiKey, from, inbox string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		inbox:  inbox,
	}
}

var _ ports.Mailer = (*ResendMailer)(nil)

// SendInquiry mails inq to the inbox with the sender as reply-to.
func (m *ResendMailer) SendInquiry(ctx context.Context, inq *domain.Inquiry) error {
	body, err := renderInquiry(inq)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{m.inbox},
		ReplyTo: inq.Email,
		Subject: fmt.Sprintf("Contact: %s", inq.Name),
		Html:    body,
	}
	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send inquiry email: %w", err)
	}
	return nil
}

func renderInquiry(inq *domain.Inquiry) (string, error) {
	var buf bytes.Buffer
	if err := inquiryTemplate.Execute(&buf, inq); err != nil {
		return "", fmt.Errorf("render inquiry email: %w", err)
	}
	return buf.String(), nil
}
