package underwriting

import (
	"context"
	"time"

	stderrors "finsync-advisor/internal/common/errors"
	httpclient "finsync-advisor/internal/common/http"
	"finsync-advisor/internal/models"
)

// RemoteEvaluator calls an external decision API for store-backed
// customers. The remote service applies the same rule tree as Evaluate, so
// verdicts are identical for identical inputs regardless of where they ran.
type RemoteEvaluator struct {
	client *httpclient.Client
	url    string
}

func NewRemoteEvaluator(url string, timeout time.Duration) *RemoteEvaluator {
	return &RemoteEvaluator{
		client: httpclient.NewClient(timeout),
		url:    url,
	}
}

type remoteRequest struct {
	CustomerID      string `json:"customerId"`
	CreditScore     int    `json:"creditScore"`
	RequestedAmount int64  `json:"requestedAmount"`
}

// Evaluate posts the application to the remote decision API.
func (r *RemoteEvaluator) Evaluate(ctx context.Context, customer *models.CustomerProfile, creditScore int, requestedAmount int64) (*models.UnderwritingVerdict, error) {
	req := remoteRequest{
		CustomerID:      customer.CustomerID,
		CreditScore:     creditScore,
		RequestedAmount: requestedAmount,
	}

	var verdict models.UnderwritingVerdict
	if err := r.client.PostJSON(ctx, r.url, req, &verdict); err != nil {
		return nil, stderrors.NewRemoteUnderwritingError(err)
	}
	return &verdict, nil
}
