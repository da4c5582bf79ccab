package schema

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"root", "/", "/"},
		{"empty", "", "/"},
		{"relative file", "index.html", "/index.html"},
		{"nested", "assets/fonts/MaterialIcons-Regular.ttf", "/assets/fonts/MaterialIcons-Regular.ttf"},
		{"already absolute", "/main.dart.js", "/main.dart.js"},
		{"query kept", "main.js?v=2", "/main.js?v=2"},
		{"trimmed", "  favicon.png ", "/favicon.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.in))
		})
	}
}

func TestRequestIsGet(t *testing.T) {
	assert.True(t, Request{}.IsGet())
	assert.True(t, Request{Method: "get"}.IsGet())
	assert.True(t, GetRequest("a.txt").IsGet())
	assert.False(t, Request{Method: http.MethodPost}.IsGet())
	assert.False(t, Request{Method: http.MethodHead}.IsGet())
}

func TestResponse(t *testing.T) {
	t.Run("ok range", func(t *testing.T) {
		assert.True(t, (&Response{Status: 200}).OK())
		assert.True(t, (&Response{Status: 204}).OK())
		assert.False(t, (&Response{Status: 304}).OK())
		assert.False(t, (&Response{Status: 404}).OK())
		var nilResp *Response
		assert.False(t, nilResp.OK())
	})

	t.Run("clone is deep", func(t *testing.T) {
		orig := &Response{
			Status: 200,
			Header: http.Header{"Content-Type": []string{"text/plain"}},
			Body:   []byte("hello"),
		}
		clone := orig.Clone()
		clone.Body[0] = 'j'
		clone.Header.Set("Content-Type", "text/html")

		assert.Equal(t, "hello", string(orig.Body))
		assert.Equal(t, "text/plain", orig.ContentType())
		assert.Equal(t, "text/html", clone.ContentType())
	})
}
