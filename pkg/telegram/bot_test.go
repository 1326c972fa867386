package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessagePostsForm(t *testing.T) {
	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, r.ParseForm())
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	bot := NewBotWithURL("secret", srv.URL)
	require.NoError(t, bot.SendMessage(context.Background(), "42", "sweep done"))

	assert.Equal(t, "/botsecret/sendMessage", gotPath)
	assert.Equal(t, "42", gotChat)
	assert.Equal(t, "sweep done", gotText)
}

func TestSendMessageReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewBotWithURL("bad", srv.URL).SendMessage(context.Background(), "42", "x")
	assert.ErrorContains(t, err, "telegram API error")
}
