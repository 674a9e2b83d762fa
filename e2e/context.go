package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// TestContext holds the HTTP client and the last exchange of one scenario.
type TestContext struct {
	BaseURL     string
	SigningKey  string
	Issuer      string
	client      *http.Client
	accessToken string
	lastStatus  int
	lastBody    []byte
	saved       map[string]string
}

// NewTestContext targets DOCVERIFY_BASE_URL (default http://localhost:8080).
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL:    envOr("DOCVERIFY_BASE_URL", "http://localhost:8080"),
		SigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Issuer:     envOr("JWT_ISSUER", "docverify"),
		client:     &http.Client{Timeout: 60 * time.Second},
		saved:      map[string]string{},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (tc *TestContext) Reset() {
	tc.accessToken = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.saved = map[string]string{}
}

func (tc *TestContext) POST(path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return tc.do(http.MethodPost, path, bytes.NewReader(data), nil)
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) do(method, path string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequest(method, strings.TrimRight(tc.BaseURL, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

// GetResponseField returns a top-level or dotted field of the last JSON body.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(tc.lastBody, &v); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	for _, part := range strings.Split(field, ".") {
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("field %q not found in %s", field, tc.lastBody)
		}
		if v, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %q not found in %s", field, tc.lastBody)
		}
	}
	return v, nil
}

func (tc *TestContext) GetLastResponseStatus() int { return tc.lastStatus }
func (tc *TestContext) GetLastResponseBody() []byte { return tc.lastBody }
func (tc *TestContext) GetAccessToken() string { return tc.accessToken }
func (tc *TestContext) SetAccessToken(token string) { tc.accessToken = token }
func (tc *TestContext) GetSigningKey() string { return tc.SigningKey }
func (tc *TestContext) GetIssuer() string { return tc.Issuer }
func (tc *TestContext) Save(key, value string) { tc.saved[key] = value }
func (tc *TestContext) Saved(key string) string { return tc.saved[key] }
