package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// ErrNoCredentials is returned for private calls on a client built
// without a signing pipeline.
var ErrNoCredentials = errors.New("no credentials configured")

// tokenSkew refreshes the JWT this long before it expires.
const tokenSkew = 5 * time.Minute

type authResponse struct {
	JWTToken string `json:"jwt_token"`
}

// Token returns a valid bearer JWT, requesting a fresh one when the
// cached token is missing or close to expiry. It implements
// ws.TokenSource, so a Client can feed private WebSocket channels.
func (c *Client) Token(ctx context.Context) (string, error) {
	if c.pipeline == nil {
		return "", ErrNoCredentials
	}

	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && time.Until(c.tokenExp) > tokenSkew {
		return c.token, nil
	}

	now := time.Now()
	timestamp := uint64(now.Unix())
	expiration := uint64(now.Add(c.tokenLifetime).Unix())

	sig, err := c.pipeline.SignAuthRequest(timestamp, expiration)
	if err != nil {
		return "", fmt.Errorf("sign auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/auth", bytes.NewReader(nil))
	if err != nil {
		return "", fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("PARADEX-STARKNET-ACCOUNT", c.pipeline.AccountHex())
	req.Header.Set("PARADEX-STARKNET-SIGNATURE", sig.String())
	req.Header.Set("PARADEX-TIMESTAMP", strconv.FormatUint(timestamp, 10))
	req.Header.Set("PARADEX-SIGNATURE-EXPIRATION", strconv.FormatUint(expiration, 10))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read auth response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return "", fmt.Errorf("unmarshal auth response: %w", err)
	}
	if auth.JWTToken == "" {
		return "", errors.New("auth response missing jwt_token")
	}

	c.token = auth.JWTToken
	c.tokenExp = now.Add(c.tokenLifetime)
	c.logger.Debug("auth token refreshed", "expires", c.tokenExp)

	return c.token, nil
}

// InvalidateToken drops the cached JWT, forcing a refresh on the next
// private request.
func (c *Client) InvalidateToken() {
	c.tokenMu.Lock()
	c.token = ""
	c.tokenExp = time.Time{}
	c.tokenMu.Unlock()
}
