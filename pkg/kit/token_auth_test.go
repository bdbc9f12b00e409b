package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticTokenAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{name: "no token configured", token: "", header: "Bearer anything", want: http.StatusForbidden},
		{name: "missing header", token: "s3cret", header: "", want: http.StatusForbidden},
		{name: "wrong scheme", token: "s3cret", header: "Basic s3cret", want: http.StatusForbidden},
		{name: "wrong token", token: "s3cret", header: "Bearer nope", want: http.StatusForbidden},
		{name: "valid", token: "s3cret", header: "Bearer s3cret", want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			StaticTokenAuth(tc.token)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Bearer ")
	_, ok = BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Bearer abc.def")
	tok, ok := BearerToken(req)
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)
}
