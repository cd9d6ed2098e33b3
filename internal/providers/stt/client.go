package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"medscribe/internal/audio"
	"medscribe/internal/ports"
)

// Config contains speech-to-text client configuration.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Language string
	Timeout  time.Duration
}

// Client submits one-shot audio clip uploads to a remote speech-to-text
// capability. Failed clips are not retried here: the ingestion cadence
// captures fresh audio on the next tick.
type Client struct {
	config     Config
	httpClient *http.Client
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func NewClient(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("transcription endpoint cannot be empty")
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Transcribe uploads one clip and returns the recognized text. Empty or
// near-silent clips may legitimately return empty text.
func (c *Client) Transcribe(ctx context.Context, clip ports.Clip) (string, error) {
	body, contentType, err := c.encodeRequest(clip)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create transcription request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcription response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("transcription HTTP error %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse transcription response: %w", err)
	}
	return parsed.Text, nil
}

func (c *Client) encodeRequest(clip ports.Clip) (io.Reader, string, error) {
	wavData, err := audio.EncodeWAV(clip.PCM, clip.SampleRate, clip.Channels)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fileWriter, err := writer.CreateFormFile("file", "clip.wav")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create clip form file: %w", err)
	}
	if _, err := fileWriter.Write(wavData); err != nil {
		return nil, "", fmt.Errorf("failed to write clip data: %w", err)
	}

	fields := map[string]string{
		"format":      "wav",
		"sample_rate": fmt.Sprintf("%d", clip.SampleRate),
		"duration_ms": fmt.Sprintf("%d", clip.DurationMs()),
	}
	if c.config.Model != "" {
		fields["model"] = c.config.Model
	}
	if c.config.Language != "" {
		fields["language"] = c.config.Language
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}
