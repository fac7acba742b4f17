package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/external/github", r.URL.Path)
		assert.Equal(t, "push", r.Header.Get("X-GitHub-Event"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"ref": "refs/heads/main"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"result": "success", "msg": ""}`))
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Post(context.Background(), server.URL+"/api/v1/external/github",
		[]byte(`{"ref": "refs/heads/main"}`),
		map[string]string{"X-GITHUB-EVENT": "push"})

	require.NoError(t, err)
	assert.True(t, resp.IsOK())
	assert.True(t, resp.IsJSON())
	assert.Equal(t, "success", resp.Field("result"))
}

func TestClient_QueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "team/dev", r.URL.Query().Get("stream"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req := NewRequest("POST", server.URL).
		SetQueryParam("api_key", "secret key").
		SetQueryParam("stream", "team/dev")

	resp, err := NewClient().Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestClient_WithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithTimeout(50 * time.Millisecond))
	_, err := client.Post(context.Background(), server.URL, nil, nil)

	assert.Error(t, err)
	assert.False(t, IsConnectionError(err))
}

func TestClient_WithDefaultHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hookshot", r.Header.Get("User-Agent"))
		assert.Equal(t, "override", r.Header.Get("X-Mode"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithDefaultHeader("User-Agent", "hookshot"), WithDefaultHeader("X-Mode", "default"))
	resp, err := client.Post(context.Background(), server.URL, nil, map[string]string{"X-Mode": "override"})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestClient_NoFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(WithFollowRedirects(false))
	resp, err := client.Post(context.Background(), server.URL+"/redirect", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
}

func TestClient_MaxRedirects(t *testing.T) {
	var hops int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hops++
		http.Redirect(w, r, "/next", http.StatusTemporaryRedirect)
	}))
	defer server.Close()

	resp, err := NewClient(WithMaxRedirects(2)).Post(context.Background(), server.URL+"/start", []byte(`{}`), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, 3, hops)
}

func TestClient_ConnectionRefused(t *testing.T) {
	// Grab a free port, then close the listener so nothing answers on it
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, err = NewClient().Post(context.Background(), "http://"+addr+"/api", nil, nil)
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, IsConnectionError(nil))
	assert.False(t, IsConnectionError(context.DeadlineExceeded))
	assert.True(t, IsConnectionError(&net.OpError{Op: "dial", Err: io.EOF}))
	assert.True(t, IsConnectionError(&net.DNSError{Err: "no such host", Name: "devserver"}))
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"http://localhost:9991/api", false},
		{"https://chat.example.com", false},
		{"ftp://example.com", true},
		{"localhost:9991", true},
		{"http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequest_Header(t *testing.T) {
	req := NewRequest("POST", "http://localhost").SetHeader("X-GITHUB-EVENT", "push")

	v, ok := req.Header("x-github-event")
	assert.True(t, ok)
	assert.Equal(t, "push", v)

	_, ok = req.Header("X-Missing")
	assert.False(t, ok)
}

func TestResponse_Helpers(t *testing.T) {
	resp := &Response{
		StatusCode: 400,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
		Body:       []byte(`{"result":"error","msg":"Missing stream"}`),
	}

	assert.False(t, resp.IsOK())
	assert.False(t, resp.IsSuccess())
	assert.True(t, resp.IsJSON())
	assert.Equal(t, "Missing stream", resp.Field("msg"))
	assert.Contains(t, resp.PrettyBody(), "\n")

	plain := &Response{StatusCode: 502, Body: []byte("bad gateway")}
	assert.Equal(t, "", plain.Field("msg"))
	assert.Equal(t, "bad gateway", plain.PrettyBody())
}
