package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"orgaccount-backend/shared/config"
)

// SMTPDispatcher delivers mail over SMTP using the settings in config.
type SMTPDispatcher struct {
	config *config.Config
}

func NewSMTPDispatcher(cfg *config.Config) *SMTPDispatcher {
	return &SMTPDispatcher{config: cfg}
}

func (d *SMTPDispatcher) Send(to, subject, body string, isHTML bool) error {
	if err := d.send(to, subject, body, isHTML); err != nil {
		return &DispatchError{To: to, Err: err}
	}
	return nil
}

func (d *SMTPDispatcher) send(to, subject, body string, isHTML bool) error {
	addr := fmt.Sprintf("%s:%s", d.config.SMTPHost, d.config.SMTPPort)

	var client *smtp.Client
	var err error

	if d.config.SMTPPort == "465" {
		tlsConfig := &tls.Config{
			ServerName: d.config.SMTPHost,
		}

		conn, dialErr := tls.Dial("tcp", addr, tlsConfig)
		if dialErr != nil {
			client, err = smtp.Dial(addr)
			if err != nil {
				return err
			}
		} else {
			client, err = smtp.NewClient(conn, d.config.SMTPHost)
			if err != nil {
				return err
			}
		}
	} else {
		client, err = smtp.Dial(addr)
		if err != nil {
			return err
		}

		if ok, _ := client.Extension("STARTTLS"); ok {
			tlsConfig := &tls.Config{ServerName: d.config.SMTPHost}
			if err = client.StartTLS(tlsConfig); err != nil {
				// Non-critical error, continue without TLS
			}
		}
	}
	defer client.Close()

	if d.config.SMTPUsername != "" {
		auth := smtp.PlainAuth("", d.config.SMTPUsername, d.config.SMTPPassword, d.config.SMTPHost)
		if err = client.Auth(auth); err != nil {
			return err
		}
	}

	if err = client.Mail(d.config.EmailFrom); err != nil {
		return err
	}

	if err = client.Rcpt(to); err != nil {
		return err
	}

	var contentType string
	if isHTML {
		contentType = "text/html; charset=UTF-8"
	} else {
		contentType = "text/plain; charset=UTF-8"
	}

	message := fmt.Sprintf("To: %s\r\n"+
		"From: %s <%s>\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n",
		to,
		d.config.EmailFromName,
		d.config.EmailFrom,
		subject,
		contentType,
		body)

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err = w.Write([]byte(message)); err != nil {
		return err
	}

	if err = w.Close(); err != nil {
		return err
	}

	client.Quit()

	return nil
}
