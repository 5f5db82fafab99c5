package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		Body("text/plain", []byte("test")).
		Write(w)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "test", w.Body.String())
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
}

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Header("X-Custom", "value").
		JSON(map[string]int{"pages": 2}).
		Write(w)

	assert.Equal(t, "{\"pages\":2}\n", w.Body.String())
	assert.Equal(t, "value", w.Header().Get("X-Custom"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestResponseBuilder_UnencodableJSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().JSON(map[string]any{"ch": make(chan int)}).Write(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *ResponseBuilder
		code    int
		body    string
	}{
		{"generic", ErrorResponse(http.StatusUnprocessableEntity, `bad "period"`), http.StatusUnprocessableEntity, "{\"error\":\"bad \\\"period\\\"\"}\n"},
		{"unavailable", ServiceUnavailableError("queue down"), http.StatusServiceUnavailable, "{\"error\":\"queue down\"}\n"},
		{"rate limited", TooManyRequestsError(), http.StatusTooManyRequests, "{\"error\":\"rate limit exceeded, please try again later\"}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}
