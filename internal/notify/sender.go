package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	gomail "github.com/emersion/go-message/mail"

	"pingplatform/internal/config"
	"pingplatform/internal/models"
)

// Sender delivers out-of-band alerts when a scan flags a counterfeit.
type Sender interface {
	SendCounterfeitAlert(ctx context.Context, alert models.CounterfeitAlert) error
}

type LogSender struct{}

func (LogSender) SendCounterfeitAlert(ctx context.Context, alert models.CounterfeitAlert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Printf("counterfeit_alert id=%s product=%q brand=%q location=%q severity=%s",
		alert.ID, alert.Product, alert.Brand, alert.Location, alert.Severity)
	return nil
}

type SMTPSender struct {
	host string
	port int
	from string
	to   []string
}

func NewSender(cfg config.Config) Sender {
	switch cfg.AlertSender {
	case "smtp":
		return SMTPSender{
			host: cfg.SMTPHost,
			port: cfg.SMTPPort,
			from: cfg.AlertFrom,
			to:   cfg.AlertTo,
		}
	default:
		return LogSender{}
	}
}

const defaultDialTimeout = 10 * time.Second

// SendCounterfeitAlert delivers over SMTP. The dial honors ctx and the
// whole exchange is bounded by ctx's deadline.
func (s SMTPSender) SendCounterfeitAlert(ctx context.Context, alert models.CounterfeitAlert) error {
	if len(s.to) == 0 {
		return fmt.Errorf("no alert recipients configured")
	}
	msg, err := ComposeAlert(s.from, s.to, alert, time.Now().UTC())
	if err != nil {
		return err
	}
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	dialer := &net.Dialer{Timeout: defaultDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if err := client.Mail(s.from); err != nil {
		return err
	}
	for _, r := range s.to {
		if err := client.Rcpt(strings.TrimSpace(r)); err != nil {
			return err
		}
	}
	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// ComposeAlert renders the RFC 5322 alert message.
func ComposeAlert(from string, to []string, alert models.CounterfeitAlert, at time.Time) ([]byte, error) {
	var h gomail.Header
	h.SetDate(at)
	h.SetAddressList("From", []*gomail.Address{{Name: "Ping Alerts", Address: from}})
	rcpts := make([]*gomail.Address, 0, len(to))
	for _, addr := range to {
		rcpts = append(rcpts, &gomail.Address{Address: strings.TrimSpace(addr)})
	}
	h.SetAddressList("To", rcpts)
	h.SetSubject(fmt.Sprintf("[%s] Counterfeit detected: %s", strings.ToUpper(string(alert.Severity)), alert.Product))
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := gomail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	body := fmt.Sprintf("Alert: %s\r\nProduct: %s\r\nBrand: %s\r\nLocation: %s\r\nScan: %s\r\nReported: %s\r\n",
		alert.ID, alert.Product, alert.Brand, alert.Location, alert.ScanID, alert.ReportedAt.Format(time.RFC3339))
	if _, err := w.Write([]byte(body)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
