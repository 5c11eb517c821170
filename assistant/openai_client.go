package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

const systemPrompt = "Vous êtes un assistant médical spécialisé dans les médicaments français. " +
	"Utilisez uniquement les informations fournies dans le contexte pour répondre aux questions. " +
	"Si l'information n'est pas disponible dans le contexte, indiquez-le clairement."

// OpenAIConfig configures the OpenAI-compatible generation client.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAIClient calls an OpenAI-compatible chat completion endpoint. A
// circuit breaker short-circuits calls while the upstream is failing,
// so degraded generation turns into fast fallback answers instead of
// piling up timeouts.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[Generation]
}

// NewOpenAIClient creates a generation client from the configuration.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[Generation](gobreaker.Settings{
		Name:    "generation",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &OpenAIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	// Non-standard field some local serving stacks report.
	Certainty float64 `json:"certainty,omitempty"`
}

// Generate asks the model to answer the query using only the grounding
// context. Any transport, status or breaker error is returned as-is;
// the synthesizer treats all of them as "unavailable".
func (c *OpenAIClient) Generate(ctx context.Context, query string, groundingContext string) (Generation, error) {
	return c.breaker.Execute(func() (Generation, error) {
		return c.generate(ctx, query, groundingContext)
	})
}

func (c *OpenAIClient) generate(ctx context.Context, query string, groundingContext string) (Generation, error) {
	prompt := fmt.Sprintf("Contexte médical pertinent:\n%s\n\nQuestion: %s\n\n"+
		"Répondez en utilisant les informations du contexte ci-dessus.",
		groundingContext, query)

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 800,
		// Low temperature for factual accuracy
		Temperature: 0.1,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Generation{}, fmt.Errorf("failed to encode generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Generation{}, fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Generation{}, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Generation{}, fmt.Errorf("generation endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Generation{}, fmt.Errorf("failed to decode generation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Generation{}, fmt.Errorf("generation response contained no choices")
	}

	answer := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if answer == "" {
		return Generation{}, fmt.Errorf("generation response was empty")
	}

	return Generation{Answer: answer, Certainty: parsed.Certainty}, nil
}
