package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/product-inventory/internal/port"
)

const authValidationPath = "/api/auth/validation"

type AuthClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewAuthClient targets http://{addr}. A bare host:port is accepted.
func NewAuthClient(addr string, timeout time.Duration, logger *zap.Logger) *AuthClient {
	return &AuthClient{
		baseURL: baseURL(addr),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("auth_client"),
	}
}

func (c *AuthClient) Validate(ctx context.Context, token string) (port.AuthResult, error) {
	payload, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return port.AuthResult{}, fmt.Errorf("marshal auth payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+authValidationPath, bytes.NewReader(payload))
	if err != nil {
		return port.AuthResult{}, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return port.AuthResult{}, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return port.AuthResult{}, fmt.Errorf("auth service status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result port.AuthResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return port.AuthResult{}, fmt.Errorf("decode auth response: %w", err)
	}

	c.logger.Debug("token validated", zap.Bool("success", result.Success), zap.String("message", result.Message))
	return result, nil
}

func baseURL(addr string) string {
	addr = strings.TrimRight(addr, "/")
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}
