package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/levelup-fitness/levelup-core/pkg/logger"
	"github.com/levelup-fitness/levelup-core/pkg/retry"
)

// TelegramConfig contains configuration for the Telegram notifier.
type TelegramConfig struct {
	// Token is the Telegram Bot API token.
	Token string

	// ChatID is the chat that receives reminders.
	ChatID int64

	// BaseURL is the Telegram Bot API base URL (default: https://api.telegram.org).
	BaseURL string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RetryAttempts is the number of attempts for failed requests.
	RetryAttempts int

	// Silent delivers without sound.
	Silent bool

	// OnRetry, when set, is called before each retried request.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// TelegramNotifier sends reminders as bot messages to one chat.
type TelegramNotifier struct {
	config     TelegramConfig
	httpClient *http.Client
	retrier    *retry.Retrier
	logger     *slog.Logger
}

// NewTelegramNotifier creates a TelegramNotifier.
func NewTelegramNotifier(config TelegramConfig, log *slog.Logger) *TelegramNotifier {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.telegram.org"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &TelegramNotifier{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		retrier: retry.New(
			retry.WithMaxAttempts(config.RetryAttempts),
			retry.WithInitialDelay(500*time.Millisecond),
			retry.WithMaxDelay(5*time.Second),
			retry.WithJitter(0.2),
			retry.WithOnRetry(config.OnRetry),
		),
		logger: log.With(logger.Component("telegram")),
	}
}

// Notify implements notification.Notifier.
func (n *TelegramNotifier) Notify(ctx context.Context, title, body string) error {
	payload := map[string]any{
		"chat_id":    n.config.ChatID,
		"text":       fmt.Sprintf("<b>%s</b>\n%s", title, body),
		"parse_mode": "HTML",
	}
	if n.config.Silent {
		payload["disable_notification"] = true
	}
	return n.retrier.Do(ctx, func(ctx context.Context) error {
		return n.call(ctx, "sendMessage", payload)
	})
}

// apiResponse is the envelope of every Bot API reply.
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// APIError represents a Telegram API error.
type APIError struct {
	Code        int
	Description string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

// call performs a single API call. Client errors other than rate limiting
// are permanent.
func (n *TelegramNotifier) call(ctx context.Context, method string, body map[string]any) error {
	url := fmt.Sprintf("%s/bot%s/%s", n.config.BaseURL, n.config.Token, method)

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return retry.Permanent(fmt.Errorf("marshal body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("unmarshal response (status %d): %w", resp.StatusCode, err)
	}
	if apiResp.OK {
		return nil
	}

	apiErr := &APIError{Code: apiResp.ErrorCode, Description: apiResp.Description}
	n.logger.Warn("telegram api rejected message", slog.Int("code", apiErr.Code), slog.String("description", apiErr.Description))
	if apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
		return retry.Permanent(apiErr)
	}
	return apiErr
}
