package mail

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/Till769/zero2prod/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderConfirmation(t *testing.T) {
	html, text, err := RenderConfirmation("le guin", "https://api.example.com/subscriptions/confirm?subscription_token=abc")
	require.NoError(t, err)

	assert.Contains(t, html, "le guin")
	assert.Contains(t, html, `href="https://api.example.com/subscriptions/confirm?subscription_token=abc"`)
	assert.Contains(t, text, "le guin")
	assert.Contains(t, text, "https://api.example.com/subscriptions/confirm?subscription_token=abc")
}

func TestRenderConfirmationEscapesName(t *testing.T) {
	html, _, err := RenderConfirmation("a<b>c", "https://example.com")
	require.NoError(t, err)
	assert.NotContains(t, html, "a<b>c")
	assert.Contains(t, html, "a&lt;b&gt;c")
}

func TestRenderIssue(t *testing.T) {
	html, err := RenderIssue(IssueData{
		Title:    "Issue #1",
		Body:     "<p>Hello readers</p>",
		SiteName: "Dispatches",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Issue #1")
	assert.Contains(t, html, "<p>Hello readers</p>", "rendered markdown body must not be re-escaped")
	assert.Contains(t, html, "Dispatches")
}

func TestRenderIssueDefaultsSiteName(t *testing.T) {
	html, err := RenderIssue(IssueData{Title: "t", Body: "<p>b</p>", SiteName: "  "})
	require.NoError(t, err)
	assert.Contains(t, html, "Newsletter")
}

func TestSendDisabledIsNoop(t *testing.T) {
	s := New(Config{Enable: false})
	assert.NoError(t, s.Send(Message{To: []string{"x@example.com"}, Subject: "s", Text: "t"}))
}

func TestWriteSMTPBodyMultipart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSMTPBody(&buf, Message{
		HTML: "<p>hi</p>",
		Text: "hi",
	}))

	out := buf.String()
	assert.Contains(t, out, "Content-Type: multipart/alternative")
	assert.Contains(t, out, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, out, "Content-Type: text/html; charset=UTF-8")
	// Plain part first so clients prefer the HTML alternative.
	assert.Less(t,
		bytes.Index(buf.Bytes(), []byte("text/plain")),
		bytes.Index(buf.Bytes(), []byte("text/html")))
}

func TestWriteSMTPBodySingleParts(t *testing.T) {
	var htmlOnly bytes.Buffer
	require.NoError(t, writeSMTPBody(&htmlOnly, Message{HTML: "<p>hi</p>"}))
	assert.Contains(t, htmlOnly.String(), "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>hi</p>")

	var textOnly bytes.Buffer
	require.NoError(t, writeSMTPBody(&textOnly, Message{Text: "hi"}))
	assert.Contains(t, textOnly.String(), "Content-Type: text/plain; charset=UTF-8\r\n\r\nhi")
}

func TestBuildMailConfigSMTP(t *testing.T) {
	full := config.DefaultFullConfig()
	full.MailOptions.Enable = true
	full.MailOptions.From = "news@example.com"
	full.MailOptions.SMTP = &config.SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		User: "smtp-user",
		Pass: "smtp-pass",
	}

	mc := BuildMailConfig(&full)
	assert.True(t, mc.Enable)
	assert.Equal(t, "smtp.example.com", mc.Host)
	assert.Equal(t, 587, mc.Port)
	assert.Equal(t, "smtp-user", mc.User)
	assert.Equal(t, "smtp-pass", mc.Pass)
	assert.Equal(t, "news@example.com", mc.From)
	assert.False(t, mc.UseResend)
}

func TestBuildMailConfigResend(t *testing.T) {
	full := config.DefaultFullConfig()
	full.MailOptions.Enable = true
	full.MailOptions.Provider = "resend"
	full.MailOptions.Resend = &config.ResendConfig{APIKey: "re_123"}

	mc := BuildMailConfig(&full)
	assert.True(t, mc.UseResend)
	assert.Equal(t, "re_123", mc.ResendKey)
}

func TestBuildMailConfigSMTPProviderIgnoresResendKey(t *testing.T) {
	full := config.DefaultFullConfig()
	full.MailOptions.Provider = "smtp"
	full.MailOptions.Resend = &config.ResendConfig{APIKey: "re_123"}

	mc := BuildMailConfig(&full)
	assert.False(t, mc.UseResend, "explicit smtp provider wins over a configured resend key")
}

func TestBuildMailConfigNil(t *testing.T) {
	assert.Equal(t, Config{}, BuildMailConfig(nil))
}

func TestRenderIssueYearInFooter(t *testing.T) {
	html, err := RenderIssue(IssueData{Title: "t", Body: "<p>b</p>", SiteName: "S"})
	require.NoError(t, err)
	assert.Contains(t, html, fmt.Sprintf("&copy;%d", time.Now().Year()))
}
