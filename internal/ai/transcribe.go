package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Transcriber is the speech-to-text capability.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// AssemblyAIClient handles communication with the AssemblyAI transcription API.
// Jobs are submitted with the audio URL and polled until they settle.
type AssemblyAIClient struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

type transcriptRequest struct {
	AudioURL string `json:"audio_url"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error,omitempty"`
}

func NewAssemblyAIClient(apiKey, baseURL string) *AssemblyAIClient {
	if baseURL == "" {
		baseURL = "https://api.assemblyai.com/v2"
	}
	return &AssemblyAIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pollInterval: 3 * time.Second,
	}
}

// Transcribe submits the audio URL and polls until the job completes.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audioURL string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("missing ASSEMBLYAI_API_KEY for transcription")
	}

	job, err := c.submit(ctx, audioURL)
	if err != nil {
		return "", err
	}

	for {
		switch job.Status {
		case "completed":
			return job.Text, nil
		case "error":
			return "", fmt.Errorf("transcription failed: %s", job.Error)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}

		job, err = c.poll(ctx, job.ID)
		if err != nil {
			return "", err
		}
	}
}

func (c *AssemblyAIClient) submit(ctx context.Context, audioURL string) (*transcriptResponse, error) {
	payload, err := json.Marshal(transcriptRequest{AudioURL: audioURL})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcript", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *AssemblyAIClient) poll(ctx context.Context, id string) (*transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)

	return c.do(req)
}

func (c *AssemblyAIClient) do(req *http.Request) (*transcriptResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription service unavailable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription service returned %d: %s", resp.StatusCode, string(body))
	}

	var tr transcriptResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}

	return &tr, nil
}
