package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/keyring"
	"github.com/julianstephens/lifeos/internal/logger"
)

type webhookFooter struct {
	Text string `json:"text"`
}

type webhookEmbed struct {
	Embed
	FooterText *webhookFooter `json:"footer,omitempty"`
}

// WebhookPayload is the body accepted by chat webhooks (Discord and compatible).
type WebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []webhookEmbed `json:"embeds,omitempty"`
}

// WebhookTransport posts messages to a per-destination webhook URL.
type WebhookTransport struct {
	Client *http.Client
	// Lookup finds a destination's URL when the configuration does not carry one.
	Lookup     func(destination string) (string, error)
	MaxRetries int
	RetryDelay time.Duration

	mu sync.Mutex
	// last holds the id of the latest Replace message per webhook URL.
	last map[string]string
}

func NewWebhookTransport() *WebhookTransport {
	return &WebhookTransport{
		Client: &http.Client{Timeout: 10 * time.Second},
		Lookup: func(destination string) (string, error) {
			return keyring.Get(keyring.WebhookSecret(destination))
		},
		MaxRetries: constants.NotifyMaxRetries,
		RetryDelay: constants.NotifyRetryDelay,
	}
}

func (w *WebhookTransport) url(dest Destination) (string, error) {
	if dest.Webhook != "" {
		return dest.Webhook, nil
	}
	if w.Lookup == nil {
		return "", lerrors.Missing("webhook for " + dest.Name)
	}
	for _, key := range []string{dest.ID, dest.Name} {
		if key == "" {
			continue
		}
		u, err := w.Lookup(key)
		if err == nil && u != "" {
			return u, nil
		}
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return "", err
		}
	}
	return "", lerrors.Missing("webhook for " + dest.Name)
}

func payloadFor(msg Message) WebhookPayload {
	p := WebhookPayload{Content: msg.Text}
	if msg.Embed != nil {
		e := webhookEmbed{Embed: *msg.Embed}
		if msg.Embed.Footer != "" {
			e.FooterText = &webhookFooter{Text: msg.Embed.Footer}
		}
		p.Embeds = []webhookEmbed{e}
	}
	return p
}

func (w *WebhookTransport) Deliver(ctx context.Context, dest Destination, msg Message) error {
	hook, err := w.url(dest)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payloadFor(msg))
	if err != nil {
		return err
	}
	target := hook
	if msg.Replace {
		// wait=true makes the webhook answer with the created message.
		target = withQuery(hook, "wait", "true")
	}

	attempts := w.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		id, retry, err := w.post(ctx, target, body)
		if err == nil {
			if msg.Replace {
				w.replace(ctx, hook, id)
			}
			return nil
		}
		lastErr = err
		if !retry || attempt == attempts {
			break
		}
		logger.Debug("Retrying webhook", "destination", dest.Name, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.RetryDelay * time.Duration(attempt)):
		}
	}
	return lastErr
}

func (w *WebhookTransport) client() *http.Client {
	if w.Client == nil {
		return http.DefaultClient
	}
	return w.Client
}

// post sends one request. It returns the created message id when the webhook
// reports one, and whether a failure is worth retrying.
func (w *WebhookTransport) post(ctx context.Context, url string, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.client().Do(req)
	if err != nil {
		return "", true, err
	}
	defer res.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		var created struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(data, &created)
		return created.ID, false, nil
	}

	if len(data) > 512 {
		data = data[:512]
	}
	retry := res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500
	return "", retry, fmt.Errorf("webhook failed with status %d: %s", res.StatusCode, string(data))
}

// replace records id as the latest Replace message on hook and deletes the
// one before it. Deletion failures are logged; the new message stays.
func (w *WebhookTransport) replace(ctx context.Context, hook, id string) {
	w.mu.Lock()
	if w.last == nil {
		w.last = map[string]string{}
	}
	previous := w.last[hook]
	if id != "" {
		w.last[hook] = id
	} else {
		delete(w.last, hook)
	}
	w.mu.Unlock()

	if previous == "" || previous == id {
		return
	}
	if err := w.delete(ctx, hook, previous); err != nil {
		logger.Warn("Failed to delete previous report", "message", previous, "error", err)
	}
}

// delete removes a message previously posted through hook.
func (w *WebhookTransport) delete(ctx context.Context, hook, id string) error {
	u, err := neturl.Parse(hook)
	if err != nil {
		return err
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/messages/" + neturl.PathEscape(id)
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u.String(), nil)
	if err != nil {
		return err
	}
	res, err := w.client().Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if (res.StatusCode >= 200 && res.StatusCode < 300) || res.StatusCode == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("delete failed with status %d", res.StatusCode)
}

func withQuery(raw, key, value string) string {
	u, err := neturl.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
