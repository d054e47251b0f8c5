package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender   `json:"sender"`
	To          []BrevoTo     `json:"to"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"htmlContent"`
	ReplyTo     *BrevoReplyTo `json:"replyTo,omitempty"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type BrevoReplyTo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Sender sends transactional emails. Nil = no-op.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, username string) error
	SendInvestmentReceived(ctx context.Context, toEmail, username, firmName, amount, transactionID string) error
}

// BrevoClient sends emails via Brevo (Sendinblue) API using SENDINBLUE_API_KEY and MAIL_FROM.
// An empty APIKey turns every send into a no-op.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Endpoint string // defaults to the Brevo v3 endpoint
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@multinvest.com"
}

func (c *BrevoClient) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return brevoAPI
}

func (c *BrevoClient) send(ctx context.Context, toEmail, toName, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "MultiInvest"},
		To:          []BrevoTo{{Email: toEmail, Name: toName}},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoReplyTo{Email: "support@multinvest.com", Name: "MultiInvest Support"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome is sent after signup.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, username string) error {
	if username == "" {
		username = "there"
	}
	return c.send(ctx, toEmail, username, "Welcome to MultiInvest", EmailLayout(welcomeContent(username)))
}

// SendInvestmentReceived confirms that an investment was recorded as pending.
func (c *BrevoClient) SendInvestmentReceived(ctx context.Context, toEmail, username, firmName, amount, transactionID string) error {
	if username == "" {
		username = "there"
	}
	content := investmentReceivedContent(username, firmName, amount, transactionID)
	return c.send(ctx, toEmail, username, "We received your investment", EmailLayout(content))
}

func welcomeContent(username string) string {
	return fmt.Sprintf(`
    <h1>Welcome, %s!</h1>
    <p>Your <strong>MultiInvest</strong> account is ready. Browse the current opportunities and submit your first investment from the dashboard.</p>
    <p>Completed investments grow by 5%% for every full 30 days they are held.</p>
    <p style="margin-top: 20px; font-size: 14px; color: #666;">
      If you did not sign up for this account, please contact our support team.
    </p>
    <p>The MultiInvest Team</p>
`, EscapeHTML(username))
}

func investmentReceivedContent(username, firmName, amount, transactionID string) string {
	return fmt.Sprintf(`
    <h1>Investment received</h1>
    <p>Hi %s,</p>
    <p>We recorded your investment of <strong>$%s</strong> in <strong>%s</strong> (transaction <code>%s</code>).</p>
    <p>It stays <strong>pending</strong> until our team confirms the transfer. You can follow its status on your dashboard.</p>
    <p>The MultiInvest Team</p>
`, EscapeHTML(username), EscapeHTML(amount), EscapeHTML(firmName), EscapeHTML(transactionID))
}
