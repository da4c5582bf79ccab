package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManifestPaths(t *testing.T) {
	m := Manifest{
		"main.dart.js": "39f62f051ba05d4ccc8a1e440357f75a",
		"/":            "49024333c86d5f83b0283415f1013175",
		"index.html":   "49024333c86d5f83b0283415f1013175",
	}
	assert.Equal(t, []string{"/", "index.html", "main.dart.js"}, m.Paths())
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       Manifest
		wantErr string
	}{
		{name: "valid", m: Manifest{"index.html": "h1", "/": "h1"}},
		{name: "empty", m: Manifest{}},
		{name: "blank path", m: Manifest{" ": "h1"}, wantErr: "empty path"},
		{name: "blank hash", m: Manifest{"a.txt": ""}, wantErr: "empty hash"},
		{name: "colliding keys", m: Manifest{"a.txt": "h1", "/a.txt": "h2"}, wantErr: "same key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
