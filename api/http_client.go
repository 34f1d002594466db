// api/http_client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// DefaultTimeout is the blanket per-call timeout; there is no per-call override.
const DefaultTimeout = 15 * time.Second

// APIError is returned for any non-2xx response. Message carries the
// server-provided message or error field when present, otherwise the
// transport text.
type APIError struct {
	Status  int
	Message string
	Data    map[string]any
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorMessage picks the user-facing text for err: the server message when
// the call reached the server, otherwise the transport error text.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// HTTPClient struct to hold base URL and HTTP client configuration
type HTTPClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewHTTPClient creates a new instance of HTTPClient with default settings
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Request makes a JSON HTTP request to the API and decodes the response
func (c *HTTPClient) Request(ctx context.Context, method, endpoint string, headers map[string]string, body interface{}, response interface{}) error {
	var requestBody []byte
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		requestBody = jsonBody
	}

	h := map[string]string{"Content-Type": "application/json"}
	for key, value := range headers {
		h[key] = value
	}
	return c.do(ctx, method, endpoint, h, bytes.NewReader(requestBody), response)
}

// Upload posts data as a single multipart file field and decodes the response
func (c *HTTPClient) Upload(ctx context.Context, endpoint, field, fileName, mimeType string, data []byte, response interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, fileName))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	partHeader.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(partHeader)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	headers := map[string]string{"Content-Type": mw.FormDataContentType()}
	return c.do(ctx, http.MethodPost, endpoint, headers, &buf, response)
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, headers map[string]string, body io.Reader, response interface{}) error {
	url := c.BaseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return newAPIError(res, resBody)
	}

	if response != nil && len(bytes.TrimSpace(resBody)) > 0 {
		return json.Unmarshal(resBody, response)
	}

	return nil
}

func newAPIError(res *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		Status:  res.StatusCode,
		Message: "unexpected status code: " + res.Status,
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return apiErr
	}
	apiErr.Data = data
	for _, key := range []string{"message", "error"} {
		if s, ok := data[key].(string); ok && s != "" {
			apiErr.Message = s
			break
		}
	}
	return apiErr
}
