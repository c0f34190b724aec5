package mailbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mailmind-ai/mailmind/pkg/models"
)

// GmailSource reads message metadata and snippets through the Gmail API.
// It only ever lists and gets; labels, read state and content are left
// untouched.
type GmailSource struct {
	svc    *gmail.Service
	query  string
	logger *zap.Logger
}

// GmailOptions configures a GmailSource.
type GmailOptions struct {
	// CredentialsFile is the OAuth client secret JSON.
	CredentialsFile string
	// TokenFile holds a previously obtained user token.
	TokenFile string
	// Query filters listed messages; defaults to unread outside
	// spam/trash.
	Query string
}

const defaultQuery = "is:unread -in:spam -in:trash"

// NewGmailSource builds a GmailSource from OAuth credential and token
// files. The token must already exist; obtaining one interactively is
// the CLI's concern, not this package's.
func NewGmailSource(ctx context.Context, opts GmailOptions, logger *zap.Logger) (*GmailSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	creds, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(creds, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}

	token, err := tokenFromFile(opts.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("load gmail token: %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return newGmailSource(svc, opts.Query, logger), nil
}

func newGmailSource(svc *gmail.Service, query string, logger *zap.Logger) *GmailSource {
	if query == "" {
		query = defaultQuery
	}
	return &GmailSource{svc: svc, query: query, logger: logger}
}

// ListUnread returns up to max messages matching the configured query,
// with subject, sender and snippet filled in. Messages that fail to
// fetch are skipped with a warning rather than failing the whole list.
func (s *GmailSource) ListUnread(ctx context.Context, max int64) ([]models.Message, error) {
	list, err := s.svc.Users.Messages.List("me").
		Q(s.query).MaxResults(max).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]models.Message, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := s.svc.Users.Messages.Get("me", ref.Id).
			Format("metadata").MetadataHeaders("Subject", "From").
			Context(ctx).Do()
		if err != nil {
			s.logger.Warn("skipping unreadable message", zap.String("id", ref.Id), zap.Error(err))
			continue
		}
		messages = append(messages, toMessage(msg))
	}

	s.logger.Debug("listed unread messages",
		zap.String("query", s.query),
		zap.Int("count", len(messages)))
	return messages, nil
}

func toMessage(msg *gmail.Message) models.Message {
	out := models.Message{
		ID:      msg.Id,
		Subject: "(No Subject)",
		From:    "(Unknown)",
		Snippet: msg.Snippet,
	}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "Subject":
				out.Subject = h.Value
			case "From":
				out.From = h.Value
			}
		}
	}
	for _, label := range msg.LabelIds {
		if label == "UNREAD" {
			out.Unread = true
		}
	}
	return out
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return token, nil
}
