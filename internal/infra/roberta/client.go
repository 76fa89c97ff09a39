package roberta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"music-assistant/internal/domain"
	"music-assistant/internal/infra"
)

// Client calls the intent classification server, a fine-tuned RoBERTa
// sequence classifier exposed over HTTP. The server's label vocabulary is
// open-ended; whatever it returns is folded into the closed intent set here.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

func (c *Client) Classify(ctx context.Context, utterance string) (domain.Intent, error) {
	bodyBytes, err := json.Marshal(classifyRequest{Text: utterance})
	if err != nil {
		return domain.IntentUnknown, fmt.Errorf("marshaling request: %w", err)
	}

	var result classifyResponse
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("classifier error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("classifier error %d: %s", resp.StatusCode, string(respBody))
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return domain.IntentUnknown, retryErr
	}

	return domain.ParseIntent(result.Intent), nil
}
