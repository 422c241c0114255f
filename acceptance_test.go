package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServerStartup is an acceptance test that verifies the server can start
// This test uses the actual setupRouter function to ensure the full application works
func TestServerStartup(t *testing.T) {
	router := setupHealthRouter(t)
	assert.NotNil(t, router, "Router should be initialized")
}

// TestAPIHealthEndpointAcceptance is an end-to-end acceptance test
// It simulates a real HTTP request to verify the API works as expected
func TestAPIHealthEndpointAcceptance(t *testing.T) {
	router := setupHealthRouter(t)

	req, err := http.NewRequest("GET", "/api/v1/health", nil)
	assert.NoError(t, err, "Should be able to create request")

	recorder := &testResponseWriter{header: make(http.Header)}
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.statusCode, "Health endpoint should return 200 OK")

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	err = json.Unmarshal(recorder.body, &response)
	assert.NoError(t, err, "Response should be valid JSON")

	assert.True(t, response.Success, "Success field should be true")
	assert.Equal(t, "Bengkel Progress API is running", response.Message)
}

// TestHealthEndpointAvailability tests that the health endpoint is available immediately
func TestHealthEndpointAvailability(t *testing.T) {
	router := setupHealthRouter(t)

	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest("GET", "/api/v1/health", nil)
		recorder := &testResponseWriter{header: make(http.Header)}
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.statusCode,
			fmt.Sprintf("Request %d should succeed", i+1))

		var response map[string]interface{}
		json.Unmarshal(recorder.body, &response)
		assert.Equal(t, true, response["success"],
			fmt.Sprintf("Request %d should have success=true", i+1))
	}
}

// TestHealthEndpointResponseTime tests that the endpoint responds quickly
func TestHealthEndpointResponseTime(t *testing.T) {
	router := setupHealthRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	recorder := &testResponseWriter{header: make(http.Header)}

	start := time.Now()
	router.ServeHTTP(recorder, req)
	duration := time.Since(start)

	assert.Less(t, duration, 100*time.Millisecond,
		"Health endpoint should respond in less than 100ms")
}

// TestLocalPhotoRoundTrip uploads a photo with the local media host and fetches it back over HTTP
func TestLocalPhotoRoundTrip(t *testing.T) {
	cfg := testConfig()
	media := services.NewLocalMediaHost(t.TempDir(), "")
	server := httptest.NewServer(setupTestApp(t, cfg, media))
	defer server.Close()

	client := &acceptanceClient{t: t, baseURL: server.URL}
	client.login()

	var job struct {
		ID          string `json:"id"`
		PhotoBefore string `json:"photo_before"`
	}
	client.call(http.MethodPost, "/api/v1/jobs", map[string]interface{}{
		"name": "Honda C70", "plate": "H 7070 AB", "code": "C70C70", "contact_number": "628111",
	}, http.StatusCreated, &job)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "sebelum.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg from the workshop phone"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/jobs/"+job.ID+"/photos/before", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+client.token)
	client.send(req, http.StatusOK, &job)
	require.True(t, strings.HasPrefix(job.PhotoBefore, services.UploadsRoute+"/"), job.PhotoBefore)

	resp, err := http.Get(server.URL + job.PhotoBefore)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg from the workshop phone", string(content))
}

// TestJobStreamAcceptance follows the live job stream while another staff request creates a job
func TestJobStreamAcceptance(t *testing.T) {
	server := httptest.NewServer(setupTestApp(t, testConfig(), services.NewMockMediaHost()))
	defer server.Close()

	client := &acceptanceClient{t: t, baseURL: server.URL}
	client.login()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/jobs/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+client.token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	nextEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "event:") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			}
		}
	}

	require.Equal(t, "ready", nextEvent())

	client.call(http.MethodPost, "/api/v1/jobs", map[string]interface{}{
		"name": "Yamaha RX King", "plate": "B 5 RX", "code": "RXKING", "contact_number": "62812",
	}, http.StatusCreated, nil)

	assert.Equal(t, "job", nextEvent())
}

type acceptanceClient struct {
	t       *testing.T
	baseURL string
	token   string
}

func (c *acceptanceClient) login() {
	var resp struct {
		Token string `json:"token"`
	}
	c.call(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": testStaffEmail, "password": testStaffPassword,
	}, http.StatusOK, &resp)
	require.NotEmpty(c.t, resp.Token)
	c.token = resp.Token
}

func (c *acceptanceClient) call(method, path string, body interface{}, wantStatus int, out interface{}) {
	raw, err := json.Marshal(body)
	require.NoError(c.t, err)

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(raw))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.send(req, wantStatus, out)
}

func (c *acceptanceClient) send(req *http.Request, wantStatus int, out interface{}) {
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	require.Equal(c.t, wantStatus, resp.StatusCode, string(payload))

	if out == nil {
		return
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(c.t, json.Unmarshal(payload, &envelope))
	require.NoError(c.t, json.Unmarshal(envelope.Data, out))
}

// testResponseWriter is a helper for acceptance testing
type testResponseWriter struct {
	header     http.Header
	body       []byte
	statusCode int
}

func (w *testResponseWriter) Header() http.Header {
	return w.header
}

func (w *testResponseWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return len(b), nil
}

func (w *testResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
}
