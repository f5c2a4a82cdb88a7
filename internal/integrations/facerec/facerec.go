// Package facerec is the client for the external face-recognition sidecar.
// The embedding and matching algorithms live in the sidecar; this client
// only moves base64 images and stored embeddings across the wire.
package facerec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/finly/finance-service/internal/config"
)

// Client handles integration with the face recognition service
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new face recognition client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.FaceServiceURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// VerifyResult is the verdict returned by the recognition service
type VerifyResult struct {
	Verified   bool    `json:"verified"`
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
}

// Healthy reports whether the recognition service responds to its health check
func (c *Client) Healthy() bool {
	resp, err := c.client.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// GenerateEmbedding asks the service to compute the facial embedding of a
// base64-encoded image. The embedding is returned as an opaque string
// (a JSON array) suitable for storage and later verification.
func (c *Client) GenerateEmbedding(imageBase64 string) (string, error) {
	var result struct {
		Embedding    string `json:"embedding"`
		FaceDetected bool   `json:"face_detected"`
	}
	err := c.post("/encode-face", map[string]string{"image_base64": imageBase64}, &result)
	if err != nil {
		return "", err
	}
	if !result.FaceDetected || result.Embedding == "" {
		return "", fmt.Errorf("no face detected in image")
	}
	return result.Embedding, nil
}

// Verify checks a base64-encoded image against a stored embedding
func (c *Client) Verify(storedEmbedding, imageBase64 string) (*VerifyResult, error) {
	result := &VerifyResult{}
	payload := map[string]string{
		"image_base64":     imageBase64,
		"stored_embedding": storedEmbedding,
	}
	if err := c.post("/verify-face", payload, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) post(path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("face recognition request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("face recognition service returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
