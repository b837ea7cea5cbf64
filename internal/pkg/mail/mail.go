package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"
)

// Config holds mail provider settings (mapped from FullConfig.MailOptions).
type Config struct {
	Enable    bool   `json:"enable"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	User      string `json:"user"`
	Pass      string `json:"pass"`
	From      string `json:"from"`
	UseResend bool   `json:"use_resend"`
	ResendKey string `json:"resend_key"`
}

// Message is a single email to send. HTML and Text are alternative bodies;
// when both are set the SMTP path sends a multipart/alternative payload.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// EmailSender is the outbound transport boundary. Tests substitute a
// recording fake.
type EmailSender interface {
	Send(msg Message) error
}

// Sender sends emails via SMTP or Resend.
type Sender struct {
	cfg Config
}

func New(cfg Config) *Sender {
	return &Sender{cfg: cfg}
}

// Send dispatches an email. Uses Resend if configured, otherwise SMTP.
func (s *Sender) Send(msg Message) error {
	if !s.cfg.Enable {
		return nil
	}
	if s.cfg.UseResend && s.cfg.ResendKey != "" {
		return s.sendResend(msg)
	}
	return s.sendSMTP(msg)
}

// sendSMTP sends via net/smtp.
func (s *Sender) sendSMTP(msg Message) error {
	host := s.cfg.Host
	port := s.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	from := s.cfg.From
	if from == "" {
		from = s.cfg.User
	}

	var body bytes.Buffer
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString(fmt.Sprintf("From: %s\r\n", from))
	body.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	body.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))

	if err := writeSMTPBody(&body, msg); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, host)
	return smtp.SendMail(addr, auth, from, msg.To, body.Bytes())
}

func writeSMTPBody(w io.Writer, msg Message) error {
	switch {
	case msg.HTML != "" && msg.Text != "":
		mw := multipart.NewWriter(w)
		if _, err := fmt.Fprintf(w, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary()); err != nil {
			return err
		}
		// Plain part first so clients prefer the HTML alternative.
		part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=UTF-8"}})
		if err != nil {
			return err
		}
		if _, err := io.WriteString(part, msg.Text); err != nil {
			return err
		}
		part, err = mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/html; charset=UTF-8"}})
		if err != nil {
			return err
		}
		if _, err := io.WriteString(part, msg.HTML); err != nil {
			return err
		}
		return mw.Close()
	case msg.HTML != "":
		_, err := fmt.Fprintf(w, "Content-Type: text/html; charset=UTF-8\r\n\r\n%s", msg.HTML)
		return err
	default:
		_, err := fmt.Fprintf(w, "Content-Type: text/plain; charset=UTF-8\r\n\r\n%s", msg.Text)
		return err
	}
}

// sendResend sends via the Resend HTTP API.
func (s *Sender) sendResend(msg Message) error {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.User
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"from":    from,
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
		"text":    msg.Text,
	})

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ResendKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("resend error %d: %s", resp.StatusCode, errResp.Message)
	}
	return nil
}

const confirmationTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">Welcome to our newsletter!</h2>
  <p>Hi {{.Name}}, thanks for subscribing. Click the button below to confirm your email address:</p>
  <p style="margin-top:24px">
    <a href="{{.Link}}" style="background:#4f46e5;color:#fff;padding:8px 16px;text-decoration:none;border-radius:4px">Confirm my subscription</a>
  </p>
  <p style="color:#999;font-size:12px">If you didn't request this, you can safely ignore this email.</p>
</div>
</body>
</html>`

const issueTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h1 style="font-size:20px;color:#333">{{.Title}}</h1>
  <div style="font-size:14px;line-height:1.6;color:#333">{{.Body}}</div>
  <hr style="width:100%;border:none;border-top:1px solid #eaeaea;margin:26px 0" />
  <p style="color:#999;font-size:12px;text-align:center">You are receiving this because you confirmed your subscription to {{.SiteName}}.<br />&copy;{{year}} {{.SiteName}}</p>
</div>
</body>
</html>`

// ConfirmationData is the data for subscription confirmation emails.
type ConfirmationData struct {
	Name string
	Link string
}

// IssueData is the data for newsletter issue emails.
type IssueData struct {
	Title    string
	Body     template.HTML
	Text     string
	SiteName string
}

func renderTemplate(tpl string, data interface{}) (string, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},
	}).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderConfirmation produces the HTML and plain-text bodies of a confirmation
// email. Pure formatting: no I/O, safe to call anywhere.
func RenderConfirmation(name, link string) (html string, text string, err error) {
	html, err = renderTemplate(confirmationTpl, ConfirmationData{Name: name, Link: link})
	if err != nil {
		return "", "", err
	}
	text = fmt.Sprintf("Hi %s,\nWelcome to our newsletter!\nVisit %s to confirm your subscription.", name, link)
	return html, text, nil
}

// SendConfirmation sends a confirmation email to a new or returning subscriber.
func (s *Sender) SendConfirmation(to, name, link string) error {
	html, text, err := RenderConfirmation(name, link)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: "Welcome!",
		HTML:    html,
		Text:    text,
	})
}

// RenderIssue produces the HTML body of a newsletter issue email.
func RenderIssue(data IssueData) (string, error) {
	if strings.TrimSpace(data.SiteName) == "" {
		data.SiteName = "Newsletter"
	}
	return renderTemplate(issueTpl, data)
}
