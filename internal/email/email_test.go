package email

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func TestSendPasscode_ImplicitTLSPort(t *testing.T) {
	var (
		gotHost string
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	s := NewSender("smtp.example.com", "465", "mailer@example.com", "secret", "no-reply@example.com")
	plainCalled := false
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		plainCalled = true
		return nil
	}
	s.sendMailTLS = func(host, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotHost, gotAddr, gotAuth, gotFrom, gotTo, gotMsg = host, addr, a, from, to, string(msg)
		return nil
	}

	if err := s.SendPasscode("user@example.com", "123456"); err != nil {
		t.Fatalf("SendPasscode: %v", err)
	}
	if plainCalled {
		t.Fatalf("port 465 must not use the plaintext-greeting transport")
	}
	if gotHost != "smtp.example.com" || gotAddr != "smtp.example.com:465" {
		t.Fatalf("host = %q, addr = %q", gotHost, gotAddr)
	}
	if gotFrom != "no-reply@example.com" {
		t.Fatalf("from = %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "user@example.com" {
		t.Fatalf("to = %v", gotTo)
	}
	if gotAuth == nil {
		t.Fatalf("expected PLAIN auth when username is set")
	}
	if !strings.Contains(gotMsg, "Your one-time passcode is: 123456") {
		t.Fatalf("message missing passcode: %q", gotMsg)
	}
	if !strings.Contains(gotMsg, "Subject: Your verification code") {
		t.Fatalf("message missing subject: %q", gotMsg)
	}
	if !strings.Contains(gotMsg, "valid for 10 minutes") {
		t.Fatalf("message missing validity note: %q", gotMsg)
	}
}

func TestSendPasscode_SubmissionPortUsesStartTLSPath(t *testing.T) {
	var gotAddr string
	s := NewSender("smtp.example.com", "587", "mailer@example.com", "secret", "no-reply@example.com")
	tlsCalled := false
	s.sendMailTLS = func(string, string, smtp.Auth, string, []string, []byte) error {
		tlsCalled = true
		return nil
	}
	s.sendMail = func(addr string, _ smtp.Auth, _ string, _ []string, _ []byte) error {
		gotAddr = addr
		return nil
	}

	if err := s.SendPasscode("user@example.com", "123456"); err != nil {
		t.Fatalf("SendPasscode: %v", err)
	}
	if tlsCalled {
		t.Fatalf("port 587 must not use the implicit-TLS transport")
	}
	if gotAddr != "smtp.example.com:587" {
		t.Fatalf("addr = %q", gotAddr)
	}
}

func TestSendPasscode_NoAuthWithoutUsername(t *testing.T) {
	var gotAuth smtp.Auth = smtp.PlainAuth("", "x", "y", "z")
	s := NewSender("localhost", "25", "", "", "no-reply@example.com")
	s.sendMail = func(_ string, a smtp.Auth, _ string, _ []string, _ []byte) error {
		gotAuth = a
		return nil
	}

	if err := s.SendPasscode("user@example.com", "000000"); err != nil {
		t.Fatalf("SendPasscode: %v", err)
	}
	if gotAuth != nil {
		t.Fatalf("expected nil auth without username")
	}
}

func TestSendPasscode_NotConfigured(t *testing.T) {
	cases := []*Sender{
		NewSender("", "465", "", "", "no-reply@example.com"), // no host
		NewSender("smtp.example.com", "465", "", "", ""),     // no from
	}
	for i, s := range cases {
		if err := s.SendPasscode("user@example.com", "123456"); !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("case %d: err = %v, want ErrNotConfigured", i, err)
		}
	}
}

func TestSendPasscode_TransportErrorWrapped(t *testing.T) {
	sentinel := errors.New("connection refused")
	s := NewSender("smtp.example.com", "465", "", "", "no-reply@example.com")
	s.sendMailTLS = func(string, string, smtp.Auth, string, []string, []byte) error {
		return sentinel
	}

	err := s.SendPasscode("user@example.com", "123456")
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want wrapped sentinel", err)
	}
}
