package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentionalhq/notifier/pkg/email"
)

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	t.Run("writes html and metadata files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)
		assert.Equal(t, "dev", sender.Provider())

		messageID, err := sender.SendEmail(context.Background(), email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Daily Check-In Reminder",
			BodyHTML: "<p>Hi Alex!</p>",
			Tag:      "daily_checkin",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, messageID)

		htmlFiles, err := filepath.Glob(filepath.Join(dir, "*_daily_checkin.html"))
		require.NoError(t, err)
		require.Len(t, htmlFiles, 1)

		body, err := os.ReadFile(htmlFiles[0])
		require.NoError(t, err)
		assert.Equal(t, "<p>Hi Alex!</p>", string(body))

		jsonFiles, err := filepath.Glob(filepath.Join(dir, "*_daily_checkin.json"))
		require.NoError(t, err)
		require.Len(t, jsonFiles, 1)

		raw, err := os.ReadFile(jsonFiles[0])
		require.NoError(t, err)

		var meta struct {
			MessageID string `json:"message_id"`
			SendTo    string `json:"send_to"`
			Subject   string `json:"subject"`
			Tag       string `json:"tag"`
		}
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, messageID, meta.MessageID)
		assert.Equal(t, "user@example.com", meta.SendTo)
		assert.Equal(t, "Daily Check-In Reminder", meta.Subject)
		assert.Equal(t, "daily_checkin", meta.Tag)
	})

	t.Run("falls back to subject for filenames", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		_, err := sender.SendEmail(context.Background(), email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Weekly Progress Review!",
			BodyHTML: "<p>hello</p>",
		})
		require.NoError(t, err)

		files, err := filepath.Glob(filepath.Join(dir, "*_weekly_progress_review.html"))
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("rejects invalid params without writing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		_, err := sender.SendEmail(context.Background(), email.SendEmailParams{
			SendTo:   "not-an-address",
			Subject:  "s",
			BodyHTML: "<p>x</p>",
		})
		require.ErrorIs(t, err, email.ErrInvalidRecipient)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
