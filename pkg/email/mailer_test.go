package email_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tutorhub/pkg/email"
)

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func validParams() email.SendEmailParams {
	return email.SendEmailParams{
		SendTo:   "teacher@example.com",
		Subject:  "New booking request",
		BodyHTML: "<p>hello</p>",
		Tag:      "booking_pending",
	}
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*email.SendEmailParams)
		errMsg string
	}{
		{name: "valid", mutate: func(*email.SendEmailParams) {}},
		{name: "missing recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = " " }, errMsg: "SendTo is required"},
		{name: "malformed recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = "teacher" }, errMsg: "SendTo must be a valid email address"},
		{name: "missing subject", mutate: func(p *email.SendEmailParams) { p.Subject = "" }, errMsg: "Subject is required"},
		{name: "missing body", mutate: func(p *email.SendEmailParams) { p.BodyHTML = "" }, errMsg: "BodyHTML is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, email.ErrInvalidParams)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewPostmarkClient(t *testing.T) {
	t.Parallel()

	valid := email.Config{
		PostmarkServerToken:  "server",
		PostmarkAccountToken: "account",
		SenderEmail:          "no-reply@example.com",
		SupportEmail:         "support@example.com",
	}

	client, err := email.NewPostmarkClient(valid)
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.True(t, valid.PostmarkEnabled())

	tests := []struct {
		name   string
		mutate func(*email.Config)
		errMsg string
	}{
		{name: "server token", mutate: func(c *email.Config) { c.PostmarkServerToken = "" }, errMsg: "PostmarkServerToken is required"},
		{name: "account token", mutate: func(c *email.Config) { c.PostmarkAccountToken = "" }, errMsg: "PostmarkAccountToken is required"},
		{name: "sender", mutate: func(c *email.Config) { c.SenderEmail = "nope" }, errMsg: "SenderEmail must be a valid email address"},
		{name: "support", mutate: func(c *email.Config) { c.SupportEmail = "" }, errMsg: "SupportEmail must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)
			client, err := email.NewPostmarkClient(cfg)
			assert.Nil(t, client)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "emails")
	sender := email.NewDevSender(dir)

	require.NoError(t, sender.SendEmail(context.Background(), validParams()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var htmlFile, jsonFile string
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".html":
			htmlFile = e.Name()
		case ".json":
			jsonFile = e.Name()
		}
	}
	assert.True(t, strings.HasSuffix(htmlFile, "_booking_pending.html"))

	body, err := os.ReadFile(filepath.Join(dir, htmlFile))
	require.NoError(t, err)
	assert.Equal(t, "<p>hello</p>", string(body))

	raw, err := os.ReadFile(filepath.Join(dir, jsonFile))
	require.NoError(t, err)
	var meta map[string]string
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "teacher@example.com", meta["send_to"])
	assert.Equal(t, "New booking request", meta["subject"])

	err = sender.SendEmail(context.Background(), email.SendEmailParams{})
	assert.ErrorIs(t, err, email.ErrInvalidParams)
}

func TestRateLimitedSender(t *testing.T) {
	t.Parallel()

	t.Run("delegates to next sender", func(t *testing.T) {
		t.Parallel()

		next := new(MockEmailSender)
		next.On("SendEmail", mock.Anything, validParams()).Return(nil).Twice()

		sender := email.NewRateLimitedSender(next, 100, 2)
		require.NoError(t, sender.SendEmail(context.Background(), validParams()))
		require.NoError(t, sender.SendEmail(context.Background(), validParams()))
		next.AssertExpectations(t)
	})

	t.Run("gives up when context ends while waiting", func(t *testing.T) {
		t.Parallel()

		next := new(MockEmailSender)
		next.On("SendEmail", mock.Anything, mock.Anything).Return(nil).Once()

		sender := email.NewRateLimitedSender(next, 0.001, 1)
		require.NoError(t, sender.SendEmail(context.Background(), validParams()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := sender.SendEmail(ctx, validParams())
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
		next.AssertNumberOfCalls(t, "SendEmail", 1)
	})

	t.Run("non-positive rate disables limiting", func(t *testing.T) {
		t.Parallel()

		next := new(MockEmailSender)
		assert.Same(t, email.EmailSender(next), email.NewRateLimitedSender(next, 0, 1))
	})
}

func TestRender(t *testing.T) {
	t.Parallel()

	component := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<h1>"+templ.EscapeString("Tom & Jerry")+"</h1>")
		return err
	})

	html, err := email.Render(context.Background(), component)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Tom &amp; Jerry</h1>", html)

	failing := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return errors.New("render failed")
	})
	_, err = email.Render(context.Background(), failing)
	assert.Error(t, err)
}
