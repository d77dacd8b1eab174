// Package notify delivers sanction letters and decision notices over
// SES email and SNS SMS. Delivery reports success or failure only;
// retry policy belongs to the caller.
package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	apperrors "finsync-advisor/internal/common/errors"
	"finsync-advisor/internal/common/logger"
	"finsync-advisor/internal/common/metrics"
	"finsync-advisor/internal/models"
	"finsync-advisor/internal/sanction"
)

type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
	SendRawEmail(ctx context.Context, input *ses.SendRawEmailInput) (*ses.SendRawEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Config struct {
	FromEmail    string
	EmailEnabled bool
	SMSEnabled   bool
	SMSSenderID  string
}

type Notifier struct {
	cfg Config
	ses SESService
	sns SNSService
	log logger.Logger
}

func NewNotifier(cfg Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{cfg: cfg, ses: sesClient, sns: snsClient, log: log}
}

// SendSanctionLetter emails the letter body with a plain-text copy
// attached. Returns a typed delivery error; never retries itself.
func (n *Notifier) SendSanctionLetter(ctx context.Context, toEmail string, letter *models.SanctionLetter) error {
	if !n.cfg.EmailEnabled {
		n.log.Info("email delivery disabled, skipping", map[string]interface{}{
			"letterNumber": letter.LetterNumber,
		})
		return nil
	}

	subject := fmt.Sprintf("Your Loan Sanction Letter %s - FinSync AI", letter.LetterNumber)
	body := "Dear Customer,\n\nCongratulations! Your personal loan has been sanctioned. " +
		"Please find the sanction letter attached. The offer is valid for 15 days from the date of issue.\n\n" +
		"Regards,\nFinSync AI"

	raw := buildRawMessage(n.cfg.FromEmail, toEmail, subject, body,
		fmt.Sprintf("%s.txt", letter.LetterNumber), []byte(letter.Body))

	_, err := n.ses.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage:   &sestypes.RawMessage{Data: raw},
		Source:       aws.String(n.cfg.FromEmail),
		Destinations: []string{toEmail},
	})
	if err != nil {
		metrics.DeliveryFailures.WithLabelValues("email").Inc()
		n.log.Error("sanction letter email failed", map[string]interface{}{
			"letterNumber": letter.LetterNumber,
			"error":        err.Error(),
		})
		return apperrors.NewDeliveryFailedError("email", err)
	}

	n.log.Info("sanction letter emailed", map[string]interface{}{
		"letterNumber": letter.LetterNumber,
	})
	return nil
}

// SendDecisionSMS texts a short underwriting outcome notice.
func (n *Notifier) SendDecisionSMS(ctx context.Context, phone string, verdict *models.UnderwritingVerdict) error {
	if !n.cfg.SMSEnabled || phone == "" {
		return nil
	}

	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(decisionMessage(verdict)),
	})
	if err != nil {
		metrics.DeliveryFailures.WithLabelValues("sms").Inc()
		n.log.Error("decision SMS failed", map[string]interface{}{
			"decision": verdict.Decision,
			"error":    err.Error(),
		})
		return apperrors.NewDeliveryFailedError("sms", err)
	}
	return nil
}

func decisionMessage(verdict *models.UnderwritingVerdict) string {
	switch verdict.Decision {
	case models.DecisionInstantApproved:
		return fmt.Sprintf("FinSync AI: Great news! Your loan of ₹%s is approved instantly. Your sanction letter is on its way.",
			sanction.FormatINR(verdict.ApprovedAmount))
	case models.DecisionConditionalApproved:
		return "FinSync AI: Your loan is conditionally approved. Please upload the requested documents to complete processing."
	default:
		return "FinSync AI: We could not approve your loan application at this time. Reply HELP for alternatives."
	}
}

// buildRawMessage assembles a two-part MIME message with one text
// attachment, which SendEmail cannot carry.
func buildRawMessage(from, to, subject, body, filename string, attachment []byte) []byte {
	boundary := fmt.Sprintf("finsync-%d", time.Now().UnixNano())

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=\"%s\"\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: text/plain; charset=UTF-8; name=\"%s\"\r\n", filename)
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&b, "Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", filename)

	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes()
}
