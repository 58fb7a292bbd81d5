package alertsmanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arkade-os/xreserve/internal/core/ports"
)

const (
	serviceName = "xreserved"

	maxRetries = 5
)

type Alert struct {
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
	StartsAt    time.Time         `json:"startsAt"`
}

type service struct {
	baseUrl    string
	chainName  string
	httpClient *http.Client
}

func NewService(alertManagerURL, chainName string) ports.Alerts {
	return &service{
		baseUrl:   alertManagerURL,
		chainName: chainName,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *service) Publish(ctx context.Context, topic ports.Topic, message any) error {
	labels := map[string]string{
		"alertname": string(topic),
		"service":   serviceName,
		"severity":  "info",
	}
	if s.chainName != "" {
		labels["chain"] = s.chainName
	}

	desc := ""
	annotations := map[string]string{}
	switch topic {
	case ports.AssetsTrapped:
		annotations["firing_title"] = "🪤 Assets Trapped"
		m, ok := message.(ports.AssetsTrappedAlert)
		if !ok {
			return fmt.Errorf("invalid message type: %T", message)
		}
		desc = formatAssetsTrappedAlert(m)
		labels["hash"] = m.Hash
	case ports.TransferRolledBack:
		annotations["firing_title"] = "↩️ Transfer Rolled Back"
		m, ok := message.(ports.TransferRolledBackAlert)
		if !ok {
			return fmt.Errorf("invalid message type: %T", message)
		}
		desc = formatTransferRolledBackAlert(m)
		labels["severity"] = "warning"
		labels["message_id"] = m.MessageId
	default:
		annotations["firing_title"] = fmt.Sprintf("🔔 %s", topic)
		desc = formatGenericAlert(map[string]any{"event": message})
	}

	annotations["description"] = desc
	alert := Alert{
		Labels:      labels,
		Annotations: annotations,
		StartsAt:    time.Now(),
	}

	if err := s.sendAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to send alert to AlertManager: %w", err)
	}

	return nil
}

func (s *service) sendAlert(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal([]Alert{alert})
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	baseDelay := 100 * time.Millisecond

	for attempt := range maxRetries {
		req, err := http.NewRequestWithContext(ctx, "POST", s.baseUrl, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			if attempt < maxRetries-1 {
				if err := wait(ctx, baseDelay, attempt); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("failed to send alert after %d attempts: %w", maxRetries, err)
		}
		_ = resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		// 4xx responses are not retried
		if resp.StatusCode >= 500 && attempt < maxRetries-1 {
			if err := wait(ctx, baseDelay, attempt); err != nil {
				return err
			}
			continue
		}

		return fmt.Errorf(
			"failed to send alert to AlertManager with status %d after %d attempts",
			resp.StatusCode, attempt+1,
		)
	}

	return fmt.Errorf("failed to send alert after %d attempts", maxRetries)
}

// wait sleeps 100ms, 200ms, 400ms... depending on the attempt.
func wait(ctx context.Context, base time.Duration, attempt int) error {
	select {
	case <-time.After(base * time.Duration(1<<uint(attempt))):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func formatAssetsTrappedAlert(data ports.AssetsTrappedAlert) string {
	lines := []string{
		fmt.Sprintf("*Hash:* `%s`", data.Hash),
		fmt.Sprintf("*Origin:* `%s`", data.Origin),
		fmt.Sprintf("*Claimable:* %d time(s)", data.Count),
		"\n*Assets:*",
	}
	for _, asset := range data.Assets {
		lines = append(lines, fmt.Sprintf("• %s", asset))
	}
	return strings.Join(lines, "\n")
}

func formatTransferRolledBackAlert(data ports.TransferRolledBackAlert) string {
	return strings.Join([]string{
		fmt.Sprintf("*Message:* `%s`", data.MessageId),
		fmt.Sprintf("*Account:* `%s`", data.Account),
		fmt.Sprintf("*Destination:* `%s`", data.Destination),
		fmt.Sprintf("*Refunded:* %d %s", data.Refunded, data.Currency),
		fmt.Sprintf("*Reason:* %s", data.Reason),
	}, "\n")
}

func formatGenericAlert(data map[string]any) string {
	lines := make([]string, 0)
	for key, value := range data {
		lines = append(lines, fmt.Sprintf("• %s: %v", key, value))
	}
	return strings.Join(lines, "\n")
}
