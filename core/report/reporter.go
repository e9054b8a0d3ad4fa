package report

import (
	"bytes"
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/analytics"
)

// TemplateName is the email template rendered for a report.
const TemplateName = "analytics_report"

// ErrNoRecipient is returned when reports are requested but no recipient is configured.
var ErrNoRecipient = errors.New("no report recipient configured")

var nowFunc = time.Now

type (
	// Data is what the report templates see under .Data.
	Data struct {
		GeneratedOn string
		Overall     analytics.Overall
		Insights    []string
	}

	// Reporter mails the analytics of the moment, spreadsheet attached.
	Reporter struct {
		analytics *analytics.Service
		mailSvc   core.EmailService
		recipient mail.Address
		enabled   bool
	}
)

func NewReporter(analyticsSvc *analytics.Service, mailSvc core.EmailService, conf *core.Config) *Reporter {
	recipient, ok := conf.ReportRecipient()
	return &Reporter{
		analytics: analyticsSvc,
		mailSvc:   mailSvc,
		recipient: recipient,
		enabled:   ok,
	}
}

func (r *Reporter) Enabled() bool { return r.enabled }

func (r *Reporter) Recipient() mail.Address { return r.recipient }

// Compose builds the report message for o without sending it.
func (r *Reporter) Compose(o analytics.Overall) (*core.EmailMessage, error) {
	now := nowFunc()
	msg := &core.EmailMessage{
		To:           []mail.Address{r.recipient},
		Subject:      "Attendance report for " + now.Format("Jan 2, 2006"),
		TemplateName: TemplateName,
		TemplateData: Data{
			GeneratedOn: now.Format("Mon, Jan 2 2006 15:04"),
			Overall:     o,
			Insights:    o.Insights(),
		},
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, o, now); err != nil {
		return nil, errors.Wrap(err, "exporting analytics")
	}
	if err := msg.Attach(&buf, Filename(now), XLSXContentType); err != nil {
		return nil, err
	}
	return msg, nil
}

// SendReport fetches the current analytics and mails them to the configured recipient.
func (r *Reporter) SendReport(ctx context.Context) error {
	if !r.enabled {
		return ErrNoRecipient
	}
	o, err := r.analytics.Overall(ctx)
	if err != nil {
		return err
	}
	msg, err := r.Compose(o)
	if err != nil {
		return err
	}
	r.mailSvc.SendMessages(msg)
	return nil
}
