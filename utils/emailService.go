package utils

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"lms/config"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers one HTML email.
type Mailer interface {
	Send(toName, toEmail, subject, htmlBody string) error
}

// Mail is the process-wide mailer, set by InitMailer.
var Mail Mailer = &ConsoleMailer{}

// InitMailer picks SendGrid when an API key is configured, the console otherwise.
func InitMailer() {
	if config.AppConfig.SendgridApiKey == "" {
		Mail = &ConsoleMailer{}
		return
	}
	Mail = NewSendgridMailer(config.AppConfig.SendgridApiKey, config.AppConfig.AppName, config.AppConfig.EmailSender)
}

type SendgridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
	prefix string
}

func NewSendgridMailer(key, appName, fromEmail string) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(key),
		from:   sgmail.NewEmail(appName, fromEmail),
		prefix: "[" + appName + "] ",
	}
}

func (m *SendgridMailer) Send(toName, toEmail, subject, htmlBody string) error {
	msg := sgmail.NewSingleEmail(m.from, m.prefix+subject, sgmail.NewEmail(toName, toEmail), "", htmlBody)
	res, err := m.client.Send(msg)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// consoleKeep bounds how many subjects a ConsoleMailer remembers.
const consoleKeep = 100

// ConsoleMailer writes emails to the log and remembers the latest subjects for inspection.
type ConsoleMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *ConsoleMailer) Send(toName, toEmail, subject, htmlBody string) error {
	m.mu.Lock()
	if len(m.sent) == consoleKeep {
		copy(m.sent, m.sent[1:])
		m.sent = m.sent[:consoleKeep-1]
	}
	m.sent = append(m.sent, toEmail+": "+subject)
	m.mu.Unlock()
	log.Printf("[MAIL] to=%s <%s> subject=%q", toName, toEmail, subject)
	return nil
}

// Subjects returns a copy of the recorded subjects, oldest first.
func (m *ConsoleMailer) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

// SendEmail delivers in the background and logs failures.
func SendEmail(toName, toEmail, subject, title, body string) {
	mailer := Mail
	html := getEmailTemplate(title, body)
	go func() {
		if err := mailer.Send(toName, toEmail, subject, html); err != nil {
			log.Printf("[MAIL] Error sending %q to %s: %v", subject, toEmail, err)
		}
	}()
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1B2A4E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B2A4E; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #3D7BD9; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">You are receiving this email because you have an account on %s.</div>
		</div>
	</body>
	</html>
	`, config.AppConfig.AppName, title, bodyContent, config.AppConfig.AppName)
}

func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your account has been created. Join a group and start your first module.</p>
	`, name)
	SendEmail(name, email, "Welcome", "Welcome Onboard!", body)
}

func SendApprovalResponseEmail(email, name, moduleTitle, status, reason string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your access request for <strong>%s</strong> was <strong>%s</strong>.</p>
	`, name, moduleTitle, status)
	if reason != "" {
		body += fmt.Sprintf(`<div class="info-box">%s</div>`, reason)
	}
	SendEmail(name, email, "Module access "+status, "Access request "+status, body)
}

func SendGradeEmail(email, name, projectTitle string, score, maxScore float64) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your submission for <strong>%s</strong> has been graded.</p>
		<div class="info-box">Score: <strong>%.2f / %.2f</strong></div>
	`, name, projectTitle, score, maxScore)
	SendEmail(name, email, "New grade: "+projectTitle, "Submission Graded", body)
}

func SendModuleUnlockedEmail(email, name, moduleTitle string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Well done! <strong>%s</strong> is now unlocked.</p>
	`, name, moduleTitle)
	SendEmail(name, email, "Module unlocked: "+moduleTitle, "Next Module Unlocked", body)
}
