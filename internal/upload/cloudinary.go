// Package upload sends images to the Cloudinary CDN. The upstream is treated
// as an opaque collaborator: one request, one decoded response, errors pass
// through.
package upload

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// Result is the slice of the CDN response the API exposes.
type Result struct {
	PublicID string `json:"public_id"`
	Format   string `json:"format"`
	Version  int    `json:"version"`
}

// CloudinaryClient uploads images using Cloudinary's signed upload endpoint.
type CloudinaryClient struct {
	BaseURL    string
	CloudName  string
	APIKey     string
	APISecret  string
	HTTPClient *http.Client
}

// NewCloudinaryClient creates an upload client for the given cloud
func NewCloudinaryClient(baseURL, cloudName, apiKey, apiSecret string) *CloudinaryClient {
	return &CloudinaryClient{
		BaseURL:    baseURL,
		CloudName:  cloudName,
		APIKey:     apiKey,
		APISecret:  apiSecret,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether CDN credentials are present
func (c *CloudinaryClient) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Upload sends the image to the CDN and returns its public id, format and
// version. The reader is streamed into a multipart request body.
func (c *CloudinaryClient) Upload(ctx context.Context, filename string, image io.Reader) (*Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	if err := writer.WriteField("api_key", c.APIKey); err != nil {
		return nil, err
	}
	if err := writer.WriteField("timestamp", timestamp); err != nil {
		return nil, err
	}
	if err := writer.WriteField("signature", c.sign(timestamp)); err != nil {
		return nil, err
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/image/upload", c.BaseURL, c.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("cloudinary upload failed: status %d: %s", resp.StatusCode, payload)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	return &result, nil
}

// sign produces the request signature over the signed params, per Cloudinary's
// signed upload scheme.
func (c *CloudinaryClient) sign(timestamp string) string {
	sum := sha1.Sum([]byte("timestamp=" + timestamp + c.APISecret))
	return hex.EncodeToString(sum[:])
}
