package internal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":"u1","role":"STUDENT"}`))
	}))
	defer srv.Close()

	api := NewClient(srv.URL)
	_, err := api.WithToken("tok-123").Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)

	_, err = api.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no Authorization header without a token")
}

func TestClientErrorNormalization(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   ErrorKind
		wantMsg    string
		wantStatus int
	}{
		{
			name:       "server message is surfaced",
			status:     403,
			body:       `{"error":"already voted"}`,
			wantKind:   KindHTTPStatus,
			wantMsg:    "already voted",
			wantStatus: 403,
		},
		{
			name:       "message field fallback",
			status:     400,
			body:       `{"message":"bad matric"}`,
			wantKind:   KindHTTPStatus,
			wantMsg:    "bad matric",
			wantStatus: 400,
		},
		{
			name:       "unparsable error body falls back to generic",
			status:     500,
			body:       `<html>oops</html>`,
			wantKind:   KindHTTPStatus,
			wantMsg:    "HTTP 500 Internal Server Error",
			wantStatus: 500,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Me(context.Background())
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.wantKind, apiErr.Kind)
			assert.Equal(t, tc.wantMsg, apiErr.Message)
			assert.Equal(t, tc.wantStatus, apiErr.Status)
		})
	}
}

func TestClientDecodeFailureOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Me(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindDecode, apiErr.Kind)
}

func TestClientNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := NewClient(srv.URL).Me(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindNetwork, apiErr.Kind)
}

func TestRegisterForwardsMultipartForm(t *testing.T) {
	var gotFields map[string]string
	var gotFile string
	var gotFileName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = v[0]
		}
		f, fh, err := r.FormFile("idCard")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotFile = string(b)
		gotFileName = fh.Filename
		w.Write([]byte(`{"user":{"id":"u1","status":"PENDING"}}`))
	}))
	defer srv.Close()

	user, err := NewClient(srv.URL).Register(context.Background(), RegisterForm{
		MatricNumber: "HU/2024/001",
		FullName:     "John Doe",
		Faculty:      "Engineering",
		Department:   "Computer Science",
		Password:     "secret1",
		IDCardName:   "id.png",
		IDCard:       strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, StatusPending, user.Status)
	assert.Equal(t, "HU/2024/001", gotFields["matricNumber"])
	assert.Equal(t, "John Doe", gotFields["fullName"])
	assert.Equal(t, "Computer Science", gotFields["department"])
	assert.Equal(t, "png-bytes", gotFile)
	assert.Equal(t, "id.png", gotFileName)
}

func TestCastVoteSendsIdempotencyKey(t *testing.T) {
	var gotKey, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).WithToken("tok").CastVote(context.Background(),
		map[string]string{"pos-1": "cand-1"}, "key-abc")
	require.NoError(t, err)
	assert.Equal(t, "key-abc", gotKey)
	assert.Contains(t, gotBody, `"pos-1":"cand-1"`)
}

func TestImageURL(t *testing.T) {
	api := NewClient("https://voting.example.edu/api")

	assert.Equal(t, "", api.ImageURL(""))
	assert.Equal(t, "https://cdn.example.com/x.png", api.ImageURL("https://cdn.example.com/x.png"))
	assert.Equal(t, "https://voting.example.edu/uploads/x.png", api.ImageURL("/uploads/x.png"))
	assert.Equal(t, "https://voting.example.edu/uploads/x.png", api.ImageURL("uploads/x.png"))
}
