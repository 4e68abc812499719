package services

import (
	"fmt"
	"orthoiq-api/internal/config"

	"github.com/resend/resend-go/v2"
)

// NotificationService sends consultation lifecycle emails.
type NotificationService interface {
	SendTierUpgrade(to, consultationID, newTier string) error
}

type resendNotificationService struct {
	client *resend.Client
	from   string
}

func NewNotificationService(cfg *config.EmailConfig) NotificationService {
	return &resendNotificationService{
		client: resend.NewClient(cfg.APIKey),
		from:   cfg.FromAddress,
	}
}

func (s *resendNotificationService) SendTierUpgrade(to, consultationID, newTier string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: "Your OrthoIQ consultation was reviewed",
		Html: fmt.Sprintf(`
			<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
				<h2 style="color: #333;">Good news from OrthoIQ</h2>
				<p>A medical reviewer looked over your consultation and it has been upgraded to the <strong>%s</strong> tier.</p>
				<p style="color: #888; font-size: 14px;">Consultation %s</p>
			</div>
		`, newTier, consultationID),
	}

	_, err := s.client.Emails.Send(params)
	return err
}
