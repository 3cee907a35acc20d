package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("repcal.internal.notify")

type SmtpConfig struct {
	Enabled      bool     `json:"enabled"`
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	To           []string `json:"to"`
}

// Notifier emails a summary when theaters fail to scrape. Disabled by
// default, nothing in the pipeline depends on it succeeding.
type Notifier struct {
	config SmtpConfig
}

func New(config SmtpConfig) Notifier {
	return Notifier{config: config}
}

func (n Notifier) Enabled() bool {
	return n.config.Enabled && n.config.Server != "" && len(n.config.To) > 0
}

// ScrapeFailures sends one email listing the theaters whose scrape
// failed this run.
func (n Notifier) ScrapeFailures(ctx context.Context, failures map[string]error) error {
	ctx, span := tracer.Start(ctx, "ScrapeFailures")
	defer span.End()

	if !n.Enabled() || len(failures) == 0 {
		return nil
	}

	var lines []string
	for theater, err := range failures {
		lines = append(lines, fmt.Sprintf("- %s: %v", theater, err))
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Rep Cinema Calendar <%s>", n.config.EmailAddress)
	mail.To = n.config.To
	mail.Subject = fmt.Sprintf("Scrape failures: %d theater(s)", len(failures))
	mail.Text = []byte(fmt.Sprintf(`The following theaters failed to scrape on the last run:

%s

Existing data files were left untouched, the calendar still serves the
previous scrape for these theaters.`, strings.Join(lines, "\n")))

	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)
	err := mail.Send(addr, smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
