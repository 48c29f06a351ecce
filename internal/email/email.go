// Package email delivers transactional notifications over SMTP. A nil
// Sender is valid everywhere one is consumed and means delivery is
// disabled.
package email

import (
	"context"
	"time"

	"salescrm_backend/internal/analytics/transport"
	"salescrm_backend/platform/config"
)

// TransferNotice tells a seller that one of their leads moved to someone
// else through the staleness rule.
type TransferNotice struct {
	PreviousOwnerName string
	NewOwnerName      string
	ClientName        string
}

// Sender delivers the notification emails.
type Sender interface {
	SendTransferNotice(ctx context.Context, toEmail string, notice TransferNotice) error
	SendDailyDigest(ctx context.Context, to []string, date time.Time, dashboard transport.DashboardResponse) error
}

// NewSender builds the SMTP sender from configuration. Returns nil when
// email delivery is disabled; callers treat a nil Sender as a no-op.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() || cfg.GetSMTPHost() == "" {
		return nil
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
