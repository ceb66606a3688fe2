package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"torq/internal/logs"
)

// HTTPClient ходит в шлюз ledger по JSON/HTTP. Каждый вызов ограничен
// timeout; транспортные ошибки и 5xx повторяются не более retries раз и
// после этого заворачиваются в ErrUnavailable. Отрицательный вердикт
// (result=false) не повторяется никогда.
type HTTPClient struct {
	base    string
	hc      *http.Client
	timeout time.Duration
	retries int
}

func NewHTTPClient(baseURL string, timeout time.Duration, retries int) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	return &HTTPClient{
		base:    strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		timeout: timeout,
		retries: retries,
	}
}

type boolResult struct {
	Result bool `json:"result"`
}

type txResult struct {
	TxHash string `json:"tx_hash"`
}

func (c *HTTPClient) ValidateAccess(ctx context.Context, nonce, signature, endpoint string) (bool, error) {
	var out boolResult
	err := c.call(ctx, "/validate-access", map[string]any{
		"nonce":     nonce,
		"signature": signature,
		"endpoint":  endpoint,
	}, &out)
	if err != nil {
		return false, err
	}
	return out.Result, nil
}

func (c *HTTPClient) VerifyFileHash(ctx context.Context, address, filename, digest string, version uint) (bool, error) {
	var out boolResult
	err := c.call(ctx, "/verify-file-hash", map[string]any{
		"address":  address,
		"filename": filename,
		"digest":   digest,
		"version":  version,
	}, &out)
	if err != nil {
		return false, err
	}
	return out.Result, nil
}

func (c *HTTPClient) StoreFileHash(ctx context.Context, address, filename, digest string, version uint) (string, error) {
	var out txResult
	err := c.call(ctx, "/store-file-hash", map[string]any{
		"address":  address,
		"filename": filename,
		"digest":   digest,
		"version":  version,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.TxHash, nil
}

// call — один логический вызов с bounded retry. Повторяем только то, что
// похоже на временную недоступность; ответ шлюза с 4xx — терминальная
// ошибка конфигурации, не ретраим.
func (c *HTTPClient) call(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			logs.Logger.Warnf("oracle: retry %d for %s after: %v", attempt, path, lastErr)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err = c.once(callCtx, path, body, out)
		cancel()
		if err == nil {
			return nil
		}
		var te *terminalError
		if errors.As(err, &te) {
			return te.err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// terminalError помечает ошибки, которые повторять бессмысленно.
type terminalError struct{ err error }

func (t *terminalError) Error() string { return t.err.Error() }

func (c *HTTPClient) once(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return &terminalError{err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err // транспорт/таймаут — ретраится
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("gateway status %d", resp.StatusCode)
	case resp.StatusCode >= 300:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &terminalError{fmt.Errorf("gateway rejected %s: %d %s", path, resp.StatusCode, raw)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("bad gateway response: %w", err)
	}
	return nil
}
