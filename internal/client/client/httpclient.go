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

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/klauspost/compress/gzhttp"
)

// APIError is a non-2xx reply of the HTTP API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the package sentinels so callers can use
// errors.Is without knowing the transport.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return common.ErrorNotFound
	case e.StatusCode >= http.StatusInternalServerError:
		return ErrUnavailable
	case e.StatusCode >= http.StatusBadRequest:
		return common.ErrorValidation
	}
	return nil
}

func isTokenExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized && apiErr.Message == tokenExpiredMessage
}

type HTTPClient struct {
	session
	baseURL   string
	appSecret string
	http      *http.Client
}

func NewHTTPClient(baseURL, appSecret string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		appSecret: appSecret,
		http: &http.Client{
			Timeout:   timeout,
			Transport: gzhttp.Transport(http.DefaultTransport),
		},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do sends one request. A non-nil out receives the body: raw when it is an
// io.Writer, decoded as JSON otherwise.
func (c *HTTPClient) do(ctx context.Context, method, path, contentType string, body []byte, authenticated bool, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set(common.AppSecretHeaderName, c.appSecret)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authenticated {
		access, _ := c.Tokens()
		if access == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e protocol.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	switch o := out.(type) {
	case nil:
		return nil
	case io.Writer:
		if _, err := io.Copy(o, resp.Body); err != nil {
			return fmt.Errorf("failed to read %s response: %w", path, err)
		}
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// call sends one request and, for authenticated calls, retries it once after
// refreshing an expired access token.
func (c *HTTPClient) call(ctx context.Context, method, path, contentType string, body []byte, authenticated bool, out any) error {
	err := c.do(ctx, method, path, contentType, body, authenticated, out)
	if !authenticated || !isTokenExpired(err) {
		return err
	}
	if err := c.refresh(ctx); err != nil {
		return err
	}
	return c.do(ctx, method, path, contentType, body, authenticated, out)
}

func (c *HTTPClient) callJSON(ctx context.Context, method, path string, in any, authenticated bool, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return err
		}
	}
	return c.call(ctx, method, path, "application/json", body, authenticated, out)
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	_, refreshToken := c.Tokens()
	if refreshToken == "" {
		return ErrNotLoggedIn
	}
	var resp protocol.RefreshResponse
	if err := c.callJSON(ctx, http.MethodPost, "/api/refresh", protocol.RefreshRequest{RefreshToken: refreshToken}, false, &resp); err != nil {
		return err
	}
	c.SetTokens(resp.Token, resp.RefreshToken)
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp protocol.PingResponse
	if err := c.callJSON(ctx, http.MethodGet, "/api/ping", nil, false, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*protocol.LoginResponse, error) {
	var resp protocol.LoginResponse
	err := c.callJSON(ctx, http.MethodPost, "/api/login", protocol.LoginRequest{Username: username, Password: password}, false, &resp)
	if err != nil {
		return nil, err
	}
	c.SetTokens(resp.Token, resp.RefreshToken)
	return &resp, nil
}

func (c *HTTPClient) Sync(ctx context.Context, req *protocol.SyncRequest) (*protocol.SyncResponse, error) {
	var resp protocol.SyncResponse
	if err := c.callJSON(ctx, http.MethodPost, "/api/sync", req, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadBackup posts a database snapshot as the backup_file form field.
func (c *HTTPClient) UploadBackup(ctx context.Context, filename string, r io.Reader, notes string) (*protocol.UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("backup_file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	if notes != "" {
		if err := mw.WriteField("notes", notes); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var resp protocol.UploadResponse
	if err := c.call(ctx, http.MethodPost, "/api/upload", mw.FormDataContentType(), buf.Bytes(), true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ListBackups(ctx context.Context) ([]protocol.Backup, error) {
	var resp []protocol.Backup
	if err := c.callJSON(ctx, http.MethodGet, "/api/list", nil, true, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DownloadBackup streams the content of backup id into w.
func (c *HTTPClient) DownloadBackup(ctx context.Context, id int64, w io.Writer) error {
	return c.call(ctx, http.MethodGet, fmt.Sprintf("/api/backup/%d/download", id), "", nil, true, w)
}

// BackupURL returns a temporary direct link to backup id.
func (c *HTTPClient) BackupURL(ctx context.Context, id int64) (string, error) {
	var resp protocol.PresignedURLResponse
	if err := c.callJSON(ctx, http.MethodGet, fmt.Sprintf("/api/backup/%d/url", id), nil, true, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
