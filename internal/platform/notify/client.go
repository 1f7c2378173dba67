// Package notify posts workflow events to a configured webhook so the agency
// back office hears about resolved claims. Delivery is best effort: failures
// are logged and never surface into the workflow action that triggered them.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"insurance-claims-backend/internal/claim"
)

type Client struct {
	webhookURL string
	httpClient *http.Client
}

func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type claimResolvedEvent struct {
	Event       string  `json:"event"`
	ClaimID     string  `json:"claim_id"`
	Status      string  `json:"status"`
	Stage       string  `json:"stage"`
	TotalAmount float64 `json:"total_amount"`
	AgentID     string  `json:"agent_id"`
	ResolvedAt  string  `json:"resolved_at"`
}

// ClaimResolved posts a terminal transition to the webhook. A missing URL
// disables notifications entirely.
func (c *Client) ClaimResolved(ctx context.Context, cl *claim.Claim) {
	if c.webhookURL == "" {
		return
	}

	event := claimResolvedEvent{
		Event:       "claim.resolved",
		ClaimID:     cl.ID.String(),
		Status:      string(cl.Status),
		Stage:       string(cl.Stage),
		TotalAmount: cl.TotalAmount,
		AgentID:     cl.CreatedByUserID.String(),
		ResolvedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("notify: failed to encode event for claim %s: %v", cl.ID, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("notify: failed to build request for claim %s: %v", cl.ID, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("notify: webhook delivery failed for claim %s: %v", cl.ID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		log.Printf("notify: webhook returned %s for claim %s", resp.Status, cl.ID)
	}
}

var _ claim.Notifier = (*Client)(nil)
