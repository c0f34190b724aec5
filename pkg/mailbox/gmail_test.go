package mailbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func newFakeGmail(t *testing.T, handler http.HandlerFunc) *GmailSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication())
	require.NoError(t, err)

	return newGmailSource(svc, "", zap.NewNop())
}

func TestListUnread(t *testing.T) {
	source := newFakeGmail(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "messages/m1"):
			json.NewEncoder(w).Encode(gmail.Message{
				Id:       "m1",
				Snippet:  "Thanks for the update.",
				LabelIds: []string{"UNREAD", "INBOX"},
				Payload: &gmail.MessagePart{Headers: []*gmail.MessagePartHeader{
					{Name: "Subject", Value: "Project status"},
					{Name: "From", Value: "alex@example.com"},
				}},
			})
		case strings.Contains(r.URL.Path, "messages/m2"):
			json.NewEncoder(w).Encode(gmail.Message{
				Id:      "m2",
				Snippet: "Lunch tomorrow?",
			})
		default:
			assert.Equal(t, defaultQuery, r.URL.Query().Get("q"))
			json.NewEncoder(w).Encode(gmail.ListMessagesResponse{
				Messages: []*gmail.Message{{Id: "m1"}, {Id: "m2"}},
			})
		}
	})

	messages, err := source.ListUnread(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "Project status", messages[0].Subject)
	assert.Equal(t, "alex@example.com", messages[0].From)
	assert.Equal(t, "Thanks for the update.", messages[0].Snippet)
	assert.True(t, messages[0].Unread)

	// missing headers fall back to placeholders
	assert.Equal(t, "(No Subject)", messages[1].Subject)
	assert.Equal(t, "(Unknown)", messages[1].From)
}

func TestListUnreadSkipsUnreadableMessages(t *testing.T) {
	source := newFakeGmail(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "messages/bad"):
			http.Error(w, "boom", http.StatusInternalServerError)
		case strings.Contains(r.URL.Path, "messages/good"):
			json.NewEncoder(w).Encode(gmail.Message{Id: "good", Snippet: "ok"})
		default:
			json.NewEncoder(w).Encode(gmail.ListMessagesResponse{
				Messages: []*gmail.Message{{Id: "bad"}, {Id: "good"}},
			})
		}
	})

	messages, err := source.ListUnread(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "good", messages[0].ID)
}

func TestListUnreadListFailure(t *testing.T) {
	source := newFakeGmail(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	_, err := source.ListUnread(context.Background(), 10)
	assert.Error(t, err)
}
