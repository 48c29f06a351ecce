package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"salescrm_backend/internal/analytics/transport"
	"salescrm_backend/platform/currency"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTPSender with the given credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, to []string, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) SendTransferNotice(ctx context.Context, toEmail string, notice TransferNotice) error {
	content, err := renderEmailTemplate("transfer_notice.html", transferNoticeData{
		baseEmailData: baseEmailData{
			Title:   "Lead transferido",
			Heading: "Um lead da sua carteira foi transferido",
		},
		ClientName:   notice.ClientName,
		NewOwnerName: notice.NewOwnerName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, []string{toEmail}, fmt.Sprintf(subjectTransferNoticeFmt, notice.ClientName), content)
}

func (s *SMTPSender) SendDailyDigest(ctx context.Context, to []string, date time.Time, dashboard transport.DashboardResponse) error {
	dateLabel := date.Format("02/01/2006")
	content, err := renderEmailTemplate("daily_digest.html", dailyDigestData{
		baseEmailData: baseEmailData{
			Title:   "Resumo diario",
			Heading: "Resumo diario de vendas",
		},
		Date:           dateLabel,
		Metrics:        digestMetrics(dashboard),
		AbandonedLeads: dashboard.AbandonedLeads,
		TopSellers:     digestSellers(dashboard, 5),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, to, fmt.Sprintf(subjectDailyDigestFmt, dateLabel), content)
}

func digestMetrics(d transport.DashboardResponse) []digestMetricRow {
	return []digestMetricRow{
		{
			Label:     "Leads",
			Current:   fmt.Sprintf("%.0f", d.Leads.Current),
			Previous:  fmt.Sprintf("%.0f", d.Leads.Previous),
			ChangePct: fmt.Sprintf("%+.1f%%", d.Leads.ChangePct),
		},
		{
			Label:     "Vendas",
			Current:   fmt.Sprintf("%.0f", d.Sales.Current),
			Previous:  fmt.Sprintf("%.0f", d.Sales.Previous),
			ChangePct: fmt.Sprintf("%+.1f%%", d.Sales.ChangePct),
		},
		{
			Label:     "Receita",
			Current:   currency.FormatBRLCents(int64(d.RevenueCents.Current)),
			Previous:  currency.FormatBRLCents(int64(d.RevenueCents.Previous)),
			ChangePct: fmt.Sprintf("%+.1f%%", d.RevenueCents.ChangePct),
		},
		{
			Label:     "Conversao",
			Current:   fmt.Sprintf("%.1f%%", d.ConversionRate.Current),
			Previous:  fmt.Sprintf("%.1f%%", d.ConversionRate.Previous),
			ChangePct: fmt.Sprintf("%+.1f%%", d.ConversionRate.ChangePct),
		},
	}
}

func digestSellers(d transport.DashboardResponse, limit int) []digestSellerRow {
	rows := make([]digestSellerRow, 0, limit)
	for _, s := range d.Ranking {
		if len(rows) == limit {
			break
		}
		rows = append(rows, digestSellerRow{
			Name:    s.SellerName,
			Sales:   s.SalesCount,
			Revenue: s.Revenue,
		})
	}
	return rows
}

var _ Sender = (*SMTPSender)(nil)
