package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendCompanyOTP(toEmail, companyName, code string) error
	SendApplicationDecision(toEmail, studentName, companyName string, approved bool, reason string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

// SendCompanyOTP sends the one-time login code to the company contact address
func (s *EmailServiceImpl) SendCompanyOTP(toEmail, companyName, code string) error {
	// If credentials are not configured, log the code instead (development only)
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("code", code).
			Msg("SMTP credentials not configured - OTP email not sent. Use the code above for testing.")
		return nil
	}

	subject := "Staj Portalı Giriş Kodu"
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Tek Kullanımlık Giriş Kodu</h2>
				<p>Sayın %s yetkilisi,</p>
				<p>Staj portalına giriş için tek kullanımlık kodunuz:</p>
				<div style="text-align: center; margin: 30px 0;">
					<span style="font-size: 28px; letter-spacing: 8px; font-weight: bold;">%s</span>
				</div>
				<p>Kod 5 dakika içinde geçerliliğini yitirir ve yalnızca bir kez kullanılabilir.</p>
				<p>Bu isteği siz yapmadıysanız bu e-postayı yok sayabilirsiniz.</p>
			</div>
		</body>
		</html>
	`, companyName, code)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendApplicationDecision notifies the student of the company's decision
func (s *EmailServiceImpl) SendApplicationDecision(toEmail, studentName, companyName string, approved bool, reason string) error {
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Bool("approved", approved).
			Msg("SMTP credentials not configured - decision email not sent.")
		return nil
	}

	var subject, verdict string
	if approved {
		subject = "Staj Başvurunuz Onaylandı"
		verdict = fmt.Sprintf("<p>%s staj başvurunuzu <strong>onayladı</strong>.</p>", companyName)
	} else {
		subject = "Staj Başvurunuz Reddedildi"
		verdict = fmt.Sprintf("<p>%s staj başvurunuzu <strong>reddetti</strong>.</p><p>Gerekçe: %s</p>", companyName, reason)
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Staj Başvurusu Sonucu</h2>
				<p>Merhaba %s,</p>
				%s
				<p>Detaylar için portala giriş yapabilirsiniz.</p>
			</div>
		</body>
		</html>
	`, studentName, verdict)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth(
		"",
		s.config.Username,
		s.config.Password,
		s.config.Host,
	)

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + htmlBody

	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			InsecureSkipVerify: true,
			ServerName:         s.config.Host,
		}

		conn, err := tls.Dial("tcp", serverAddress, tlsConfig)
		if err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to create SMTP client")
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Quit()

		if err = client.Auth(auth); err != nil {
			s.logger.Error().Err(err).Msg("SMTP authentication failed")
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}

		if err = client.Mail(s.config.FromEmail); err != nil {
			return fmt.Errorf("failed to set sender: %w", err)
		}
		if err = client.Rcpt(toEmail); err != nil {
			return fmt.Errorf("failed to set recipient: %w", err)
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("failed to get data writer: %w", err)
		}
		if _, err = w.Write([]byte(message)); err != nil {
			return fmt.Errorf("failed to write email message: %w", err)
		}
		if err = w.Close(); err != nil {
			return fmt.Errorf("failed to close data writer: %w", err)
		}

		return nil
	}

	// Simple SMTP without TLS
	if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, []byte(message)); err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
