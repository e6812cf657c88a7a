// Package email delivers one-time passcodes over SMTP.
package email

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
)

// ErrNotConfigured is returned when SMTP settings are missing. The caller
// surfaces it as a flow-level failure; it must never crash the process.
var ErrNotConfigured = errors.New("email transport is not configured")

// implicitTLSPort is the submission port where the server opens with a TLS
// handshake instead of a plaintext greeting. smtp.SendMail cannot speak it.
const implicitTLSPort = "465"

// Sender sends passcode mail through a single SMTP endpoint using PLAIN auth.
type Sender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string

	// sendMail is a seam for tests; defaults to smtp.SendMail, which expects
	// a plaintext greeting and upgrades via STARTTLS when offered.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	// sendMailTLS is the seam for port 465; defaults to sendMailOverTLS.
	sendMailTLS func(host, addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSender constructs a Sender. Any field may be empty; configuration is
// checked at send time so a missing credential degrades to an error on the
// affected flow only.
func NewSender(host, port, username, password, from string) *Sender {
	return &Sender{
		Host:        host,
		Port:        port,
		Username:    username,
		Password:    password,
		From:        from,
		sendMail:    smtp.SendMail,
		sendMailTLS: sendMailOverTLS,
	}
}

// SendPasscode emails a 6-digit verification code to the recipient. The body
// states the 10-minute validity window the passcode manager enforces.
func (s *Sender) SendPasscode(to, code string) error {
	if s.Host == "" || s.From == "" {
		return ErrNotConfigured
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Your verification code\r\n\r\n"+
		"Your one-time passcode is: %s\r\n\r\n"+
		"This code is valid for 10 minutes. Do not share it with anyone.\r\n\r\n"+
		"This is an auto-generated email. Please do not reply.\r\n",
		s.From, to, code)

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	var err error
	if s.Port == implicitTLSPort {
		err = s.sendMailTLS(s.Host, addr, auth, s.From, []string{to}, []byte(msg))
	} else {
		err = s.sendMail(addr, auth, s.From, []string{to}, []byte(msg))
	}
	if err != nil {
		return fmt.Errorf("send passcode mail: %w", err)
	}
	return nil
}

// sendMailOverTLS performs the SMTP transaction over an implicit-TLS
// connection: handshake first, then the SMTP dialogue on the secured stream.
func sendMailOverTLS(host, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if a != nil {
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
