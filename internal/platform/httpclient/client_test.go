package httpclient_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpclient "incuhub/internal/platform/httpclient"
	"incuhub/pkg/apierr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Do_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := httpclient.New(httpclient.WithLogger(discardLogger()))
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClient_Do_DefaultHeadersAndToken(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("X-Client")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := httpclient.New(
		httpclient.WithLogger(discardLogger()),
		httpclient.WithBearerToken("secret-token"),
		httpclient.WithHeaders(map[string]string{"X-Client": "incuhub"}),
	)
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "incuhub", gotAccept)
}

func TestClient_Do_ExplicitHeaderWins(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := httpclient.New(
		httpclient.WithLogger(discardLogger()),
		httpclient.WithBearerToken("default"),
	)
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer override")

	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer override", gotAuth)
}

func TestClient_Do_ErrorStatusMapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"user not found"}`))
	}))
	defer srv.Close()

	c := httpclient.New(httpclient.WithLogger(discardLogger()))
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/users/99", nil)
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, apierr.IsNotFound(err))

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "user not found", apiErr.Message)
}

func TestClient_Do_ValidationBodyParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"validation failed","errors":[{"field":"email","message":"invalid email"}]}`))
	}))
	defer srv.Close()

	c := httpclient.New(httpclient.WithLogger(discardLogger()))
	req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
	require.NoError(t, err)

	_, err = c.Do(context.Background(), req)
	require.Error(t, err)
	fields := apierr.ValidationFields(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "email", fields[0].Field)
}

func TestClient_Do_NoRetry(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := httpclient.New(httpclient.WithLogger(discardLogger()))
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = c.Do(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "transport must not retry on its own")
}

func TestClient_Do_TransportError(t *testing.T) {
	c := httpclient.New(httpclient.WithLogger(discardLogger()))
	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:1", nil)
	require.NoError(t, err)

	_, err = c.Do(context.Background(), req)
	require.Error(t, err)
	_, hasStatus := apierr.StatusOf(err)
	assert.False(t, hasStatus, "transport errors must not carry a status code")
	assert.True(t, apierr.IsNetwork(err))
}

func TestClient_DoJSON_RoundTrip(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload{Name: in.Name + "!"})
	}))
	defer srv.Close()

	c := httpclient.New(httpclient.WithLogger(discardLogger()))
	var out payload
	err := c.DoJSON(context.Background(), http.MethodPost, srv.URL, payload{Name: "team"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "team!", out.Name)
}

func TestClient_DoJSON_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := httpclient.New(httpclient.WithLogger(discardLogger()))
	var out map[string]any
	err := c.DoJSON(context.Background(), http.MethodDelete, srv.URL, nil, &out)
	require.NoError(t, err)
	assert.Nil(t, out)
}
