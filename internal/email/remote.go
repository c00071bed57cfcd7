package email

import (
	"context"
	"encoding/base64"

	"github.com/nooktextiles/nook/internal/remote"
)

// RemoteSender delivers email through the mail endpoint of the NOOK
// backend. Failures surface as remote.ErrUnavailable so callers can
// fall back to the mock sender.
type RemoteSender struct {
	client *remote.Client
}

func NewRemoteSender(client *remote.Client) *RemoteSender {
	return &RemoteSender{client: client}
}

type remoteAttachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

type sendRequest struct {
	To          []string           `json:"to"`
	From        string             `json:"from,omitempty"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Text        string             `json:"text,omitempty"`
	Attachments []remoteAttachment `json:"attachments,omitempty"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
}

func (s *RemoteSender) Send(ctx context.Context, email *Email) (string, error) {
	req := sendRequest{
		To:      email.To,
		From:    email.From,
		Subject: email.Subject,
		HTML:    email.HTMLBody,
		Text:    email.TextBody,
	}
	for _, a := range email.Attachments {
		req.Attachments = append(req.Attachments, remoteAttachment{
			Filename:    a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			ContentType: a.ContentType,
		})
	}

	var resp sendResponse
	if err := s.client.PostJSON(ctx, "/api/email/send-order", req, &resp); err != nil {
		return "", err
	}
	return resp.MessageID, nil
}
