package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const insertImagePath = "/api/insertImage"

var ErrUploadRejected = errors.New("image upload rejected")

type AssetClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewAssetClient(addr string, timeout time.Duration, logger *zap.Logger) *AssetClient {
	return &AssetClient{
		baseURL: baseURL(addr),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("asset_client"),
	}
}

type insertImageResponse struct {
	Data string `json:"data"`
}

// Upload sends data as multipart field "file" and returns the stored image URL.
func (c *AssetClient) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+insertImagePath, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadRejected, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result insertImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if result.Data == "" {
		return "", fmt.Errorf("%w: empty image reference", ErrUploadRejected)
	}

	c.logger.Debug("image uploaded", zap.String("filename", filename), zap.String("url", result.Data))
	return result.Data, nil
}
