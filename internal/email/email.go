// Package email delivers the rendered newsletter through Microsoft Graph
// using the OAuth2 client-credentials flow.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"hnletter/internal/logger"
)

const (
	defaultAuthorityBase = "https://login.microsoftonline.com"
	defaultGraphBase     = "https://graph.microsoft.com/v1.0"
	graphScope           = "https://graph.microsoft.com/.default"
)

// Sender sends mail as a fixed sender address via the Graph sendMail
// endpoint. Graph answers 202 Accepted on success; anything else is a
// failure reported to the caller, never a crash.
type Sender struct {
	httpClient    *http.Client
	clientID      string
	tenantID      string
	clientSecret  string
	senderEmail   string
	authorityBase string
	graphBase     string
}

// Option configures a Sender.
type Option func(*Sender)

// WithAuthorityBase overrides the identity-provider base URL (for testing).
func WithAuthorityBase(base string) Option {
	return func(s *Sender) { s.authorityBase = base }
}

// WithGraphBase overrides the Graph API base URL (for testing).
func WithGraphBase(base string) Option {
	return func(s *Sender) { s.graphBase = base }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Sender) { s.httpClient = hc }
}

// NewSender creates a Graph mail sender.
func NewSender(clientID, tenantID, clientSecret, senderEmail string, opts ...Option) *Sender {
	s := &Sender{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		clientID:      clientID,
		tenantID:      tenantID,
		clientSecret:  clientSecret,
		senderEmail:   senderEmail,
		authorityBase: defaultAuthorityBase,
		graphBase:     defaultGraphBase,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type emailAddress struct {
	Address string `json:"address"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type messageBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type message struct {
	Subject      string      `json:"subject"`
	Body         messageBody `json:"body"`
	ToRecipients []recipient `json:"toRecipients"`
}

type sendMailRequest struct {
	Message message `json:"message"`
}

// Send acquires an access token and posts one sendMail request. Token
// failures, auth rejections, throttling, and transport failures come back as
// distinct errors; the caller treats all of them as a failed delivery and
// keeps the process alive for the next scheduled run.
func (s *Sender) Send(ctx context.Context, subject, htmlBody string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	token, err := s.acquireToken(ctx)
	if err != nil {
		return fmt.Errorf("acquire access token: %w", err)
	}
	logger.Get().Debug().Msg("graph access token acquired")

	payload := sendMailRequest{
		Message: message{
			Subject: subject,
			Body:    messageBody{ContentType: "HTML", Content: htmlBody},
		},
	}
	for _, addr := range recipients {
		payload.Message.ToRecipients = append(payload.Message.ToRecipients, recipient{
			EmailAddress: emailAddress{Address: addr},
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sendMail request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/users/%s/sendMail", s.graphBase, s.senderEmail)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create sendMail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post sendMail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted {
		logger.Get().Info().Int("recipients", len(recipients)).Msg("newsletter sent")
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("sendMail rejected by Graph (status %d): %s", resp.StatusCode, snippet)
	case http.StatusTooManyRequests:
		return fmt.Errorf("sendMail throttled by Graph (status 429): %s", snippet)
	default:
		return fmt.Errorf("sendMail failed (status %d): %s", resp.StatusCode, snippet)
	}
}

// acquireToken runs the client-credentials flow against the tenant's token
// endpoint for the Graph default scope.
func (s *Sender) acquireToken(ctx context.Context) (string, error) {
	conf := clientcredentials.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", s.authorityBase, s.tenantID),
		Scopes:       []string{graphScope},
	}

	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	token, err := conf.Token(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}
