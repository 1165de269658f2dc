// Package slack pages clinicians about resuscitation-level evaluations via
// Slack incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/acuity/internal/triage"
)

// Only resuscitation-level evaluations are posted.
const (
	title      = "Resuscitation"
	titleEmoji = "\U0001f534" // red circle
)

const (
	maxExplanationLen = 3000
	maxErrorBodyLen   = 512
	httpTimeout       = 10 * time.Second
)

// Notifier posts critical evaluations to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
	logger     log.Logger
}

// New creates a new Slack notifier. If webhookURL is empty, Notify is a
// no-op.
func New(webhookURL string, logger log.Logger) *Notifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
		logger:     logger,
	}
}

// Notify posts ev to the configured webhook. Evaluations below
// resuscitation level are ignored. The message never includes the
// complaint text.
func (n *Notifier) Notify(ctx context.Context, ev *triage.Evaluation) error {
	if n.webhookURL == "" || !ev.Critical() {
		return nil
	}

	body, err := json.Marshal(buildMessage(ev))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	n.logger.Info(ctx, "critical evaluation posted to slack", "evaluation_id", ev.ID)
	return nil
}

func buildMessage(ev *triage.Evaluation) map[string]any {
	return map[string]any{
		"text": fmt.Sprintf("%s evaluation %s", title, ev.ID),
		"blocks": []map[string]any{
			headerBlock(ev),
			{"type": "divider"},
			fieldsBlock(ev),
			explanationBlock(ev),
			{"type": "divider"},
			contextBlock(ev),
		},
	}
}

func headerBlock(ev *triage.Evaluation) map[string]any {
	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": fmt.Sprintf("%s %s: level %s", titleEmoji, title, ev.Outcome.Level.Code()),
		},
	}
}

func fieldsBlock(ev *triage.Evaluation) map[string]any {
	defaulted := "none"
	if len(ev.DefaultedVitals) > 0 {
		defaulted = strings.Join(ev.DefaultedVitals, ", ")
	}

	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Rule:* %s", ev.Outcome.Rule),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Trigger:* %s", ev.Outcome.Trigger),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Confidence:* %.2f", ev.Outcome.Confidence),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Age:* %d", ev.AgeInYears),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Vitals defaulted:* %s", defaulted),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func explanationBlock(ev *triage.Evaluation) map[string]any {
	text := truncate(ev.Outcome.Explanation, maxExplanationLen)
	if text == "" {
		text = "_No explanation._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Explanation*\n\n%s", text),
		},
	}
}

func contextBlock(ev *triage.Evaluation) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("acuity • evaluation %s • %s", ev.ID, ev.EvaluatedAt.UTC().Format("2006-01-02 15:04:05 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

// truncate cuts s to at most limit runes.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
