package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "finsync-advisor/internal/common/errors"
	"finsync-advisor/internal/common/logger"
	"finsync-advisor/internal/models"
)

type mockSES struct {
	sendRawFunc func(ctx context.Context, input *ses.SendRawEmailInput) (*ses.SendRawEmailOutput, error)
}

func (m *mockSES) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return &ses.SendEmailOutput{}, nil
}

func (m *mockSES) SendRawEmail(ctx context.Context, input *ses.SendRawEmailInput) (*ses.SendRawEmailOutput, error) {
	return m.sendRawFunc(ctx, input)
}

type mockSNS struct {
	publishFunc func(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	return m.publishFunc(ctx, input)
}

func testConfig() Config {
	return Config{
		FromEmail:    "noreply@finsync.example",
		EmailEnabled: true,
		SMSEnabled:   true,
	}
}

func testLetter() *models.SanctionLetter {
	return &models.SanctionLetter{
		LetterNumber: "FSL-C001-AB12CD34",
		CustomerID:   "C001",
		Body:         "SANCTION LETTER BODY",
	}
}

func TestSendSanctionLetter(t *testing.T) {
	log := logger.NewZapAdapter(zap.NewNop())

	t.Run("sends raw email with attachment", func(t *testing.T) {
		var captured *ses.SendRawEmailInput
		n := NewNotifier(testConfig(), &mockSES{
			sendRawFunc: func(_ context.Context, input *ses.SendRawEmailInput) (*ses.SendRawEmailOutput, error) {
				captured = input
				return &ses.SendRawEmailOutput{}, nil
			},
		}, nil, log)

		err := n.SendSanctionLetter(context.Background(), "asha@example.com", testLetter())
		require.NoError(t, err)
		require.NotNil(t, captured)

		raw := string(captured.RawMessage.Data)
		assert.Contains(t, raw, "To: asha@example.com")
		assert.Contains(t, raw, "FSL-C001-AB12CD34")
		assert.Contains(t, raw, "Content-Disposition: attachment")
		assert.Equal(t, []string{"asha@example.com"}, captured.Destinations)
	})

	t.Run("failure maps to retryable delivery error", func(t *testing.T) {
		n := NewNotifier(testConfig(), &mockSES{
			sendRawFunc: func(_ context.Context, _ *ses.SendRawEmailInput) (*ses.SendRawEmailOutput, error) {
				return nil, errors.New("throttled")
			},
		}, nil, log)

		err := n.SendSanctionLetter(context.Background(), "asha@example.com", testLetter())
		require.Error(t, err)

		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeDeliveryFailed, stdErr.Code)
		assert.True(t, stdErr.Retryable)
	})

	t.Run("disabled email is a no-op", func(t *testing.T) {
		cfg := testConfig()
		cfg.EmailEnabled = false
		n := NewNotifier(cfg, &mockSES{
			sendRawFunc: func(_ context.Context, _ *ses.SendRawEmailInput) (*ses.SendRawEmailOutput, error) {
				t.Fatal("should not send")
				return nil, nil
			},
		}, nil, log)

		assert.NoError(t, n.SendSanctionLetter(context.Background(), "asha@example.com", testLetter()))
	})
}

func TestSendDecisionSMS(t *testing.T) {
	log := logger.NewZapAdapter(zap.NewNop())

	t.Run("instant approval mentions amount", func(t *testing.T) {
		var message string
		n := NewNotifier(testConfig(), nil, &mockSNS{
			publishFunc: func(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
				message = *input.Message
				return &sns.PublishOutput{}, nil
			},
		}, log)

		verdict := &models.UnderwritingVerdict{
			Decision:       models.DecisionInstantApproved,
			ApprovedAmount: 300000,
		}
		require.NoError(t, n.SendDecisionSMS(context.Background(), "+919876543210", verdict))
		assert.Contains(t, message, "₹3,00,000")
		assert.True(t, strings.HasPrefix(message, "FinSync AI:"))
	})

	t.Run("missing phone is a no-op", func(t *testing.T) {
		n := NewNotifier(testConfig(), nil, &mockSNS{
			publishFunc: func(_ context.Context, _ *sns.PublishInput) (*sns.PublishOutput, error) {
				t.Fatal("should not publish")
				return nil, nil
			},
		}, log)

		verdict := &models.UnderwritingVerdict{Decision: models.DecisionRejected}
		assert.NoError(t, n.SendDecisionSMS(context.Background(), "", verdict))
	})

	t.Run("publish failure maps to delivery error", func(t *testing.T) {
		n := NewNotifier(testConfig(), nil, &mockSNS{
			publishFunc: func(_ context.Context, _ *sns.PublishInput) (*sns.PublishOutput, error) {
				return nil, errors.New("unreachable")
			},
		}, log)

		verdict := &models.UnderwritingVerdict{Decision: models.DecisionRejected}
		err := n.SendDecisionSMS(context.Background(), "+919876543210", verdict)

		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeDeliveryFailed, stdErr.Code)
	})
}
