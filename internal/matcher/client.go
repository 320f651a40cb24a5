// Package matcher is the HTTP client for the external face verification
// service. The service owns embedding computation and photo comparison;
// nothing in this process runs inference.
package matcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/your-org/reunite/internal/apperrors"
	"github.com/your-org/reunite/internal/config"
	"github.com/your-org/reunite/internal/observability"
)

type Client struct {
	baseURL        string
	verifyTimeout  time.Duration
	compareTimeout time.Duration
	httpClient     *http.Client
}

func NewClient(cfg config.MatcherConfig) *Client {
	return &Client{
		baseURL:        cfg.BaseURL,
		verifyTimeout:  cfg.VerifyTimeout,
		compareTimeout: cfg.CompareTimeout,
		httpClient:     &http.Client{},
	}
}

type verifyFaceSetResponse struct {
	Success    bool        `json:"success"`
	Embeddings [][]float32 `json:"embeddings"`
	Message    string      `json:"message"`
}

type compareFaceResponse struct {
	Match   bool   `json:"match"`
	Message string `json:"message"`
}

// VerifyFaceSet sends the intake images for verification and returns one
// embedding per image. A transport failure or timeout maps to
// apperrors.ErrUnavailable; a service-side rejection (no usable face in an
// image) maps to apperrors.ErrValidation since the reporter can correct it.
func (c *Client) VerifyFaceSet(ctx context.Context, images [][]byte) ([][]float32, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for i, img := range images {
		part, err := w.CreateFormFile("images", fmt.Sprintf("image_%d.jpg", i))
		if err != nil {
			return nil, fmt.Errorf("build faceset form: %w", err)
		}
		if _, err := part.Write(img); err != nil {
			return nil, fmt.Errorf("write faceset image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close faceset form: %w", err)
	}

	var resp verifyFaceSetResponse
	if err := c.post(ctx, "/verify_faceset", &body, w.FormDataContentType(), c.verifyTimeout, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, resp.Message)
	}
	if len(resp.Embeddings) != len(images) {
		return nil, fmt.Errorf("%w: matcher returned %d embeddings for %d images",
			apperrors.ErrUnavailable, len(resp.Embeddings), len(images))
	}
	return resp.Embeddings, nil
}

// CompareFace checks a confirmation photo against the case's stored
// embeddings. Returns the matcher's verdict and message. The caller decides
// what a non-match means; here it is just a result, not an error.
func (c *Client) CompareFace(ctx context.Context, photo []byte, embeddings [][]float32) (bool, string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("image", "confirmation.jpg")
	if err != nil {
		return false, "", fmt.Errorf("build compare form: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return false, "", fmt.Errorf("write compare photo: %w", err)
	}

	embJSON, err := json.Marshal(embeddings)
	if err != nil {
		return false, "", fmt.Errorf("marshal embeddings: %w", err)
	}
	if err := w.WriteField("embeddings_str", string(embJSON)); err != nil {
		return false, "", fmt.Errorf("write embeddings field: %w", err)
	}
	if err := w.Close(); err != nil {
		return false, "", fmt.Errorf("close compare form: %w", err)
	}

	var resp compareFaceResponse
	if err := c.post(ctx, "/verify_resolve_photo", &body, w.FormDataContentType(), c.compareTimeout, &resp); err != nil {
		return false, "", err
	}
	return resp.Match, resp.Message, nil
}

func (c *Client) post(ctx context.Context, path string, body *bytes.Buffer, contentType string, timeout time.Duration, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build matcher request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	observability.ExternalCallDuration.WithLabelValues("matcher").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: matcher %s: %v", apperrors.ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: matcher %s returned %d", apperrors.ErrUnavailable, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode matcher response: %v", apperrors.ErrUnavailable, err)
	}
	return nil
}
