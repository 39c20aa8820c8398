package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"meshd/internal/stager"
	"meshd/pkg/types"
)

const defaultBaseURL = "https://api.replicate.com/v1"

// APIError carries a non-2xx provider response from the files endpoint.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("replicate: status %d: %s", e.Status, e.Body)
}

// IsAPIError reports whether err is a provider-reported failure.
func IsAPIError(err error) bool {
	_, ok := err.(*APIError)
	return ok
}

// Client talks to the Replicate HTTP API. It creates predictions and can
// stage inline images through the provider's files endpoint, so it doubles
// as a stager.Uploader.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// New builds a client. baseURL may be empty for the production API.
func New(baseURL, token string, httpc *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: baseURL, token: token, httpc: httpc}
}

type predictionInput struct {
	Image  string `json:"image"`
	Format string `json:"format"`
}

type predictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

// CreatePrediction issues the single downstream prediction-creation call and
// returns the provider's status and body verbatim, success or not. The error
// return covers transport failures only; provider-level failures travel in
// the result so the relay stays exact.
func (c *Client) CreatePrediction(ctx context.Context, version, imageURL, format string) (*types.PredictionResult, error) {
	payload, err := json.Marshal(predictionRequest{
		Version: version,
		Input:   predictionInput{Image: imageURL, Format: format},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create prediction: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read prediction response: %w", err)
	}
	return &types.PredictionResult{Status: resp.StatusCode, Body: body}, nil
}

// fileResponse is the subset of the files endpoint response we need.
type fileResponse struct {
	URLs struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// Upload stages decoded image bytes through the provider's temporary-file
// endpoint, authenticated with the same token as the prediction call.
func (c *Client) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="content"; filename="image.%s"`, stager.ExtFromMIME(contentType)))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	var fr fileResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}
	if fr.URLs.Get == "" {
		return "", fmt.Errorf("upload response missing file URL")
	}
	return fr.URLs.Get, nil
}
