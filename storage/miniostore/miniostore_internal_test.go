package miniostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_objectURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		key      string
		expected string
	}{
		{
			name:     "endpoint url",
			cfg:      Config{Endpoint: "localhost:9000", Bucket: "murmur"},
			key:      "tweets/abc.png",
			expected: "http://localhost:9000/murmur/tweets/abc.png",
		},
		{
			name:     "ssl endpoint url",
			cfg:      Config{Endpoint: "s3.example.com", Bucket: "murmur", UseSSL: true},
			key:      "tweets/abc.png",
			expected: "https://s3.example.com/murmur/tweets/abc.png",
		},
		{
			name:     "public url",
			cfg:      Config{Endpoint: "minio:9000", Bucket: "murmur", PublicURL: "https://cdn.example.com/"},
			key:      "tweets/abc.png",
			expected: "https://cdn.example.com/tweets/abc.png",
		},
		{
			name:     "escaped key",
			cfg:      Config{Endpoint: "localhost:9000", Bucket: "murmur"},
			key:      "tweets/a b.png",
			expected: "http://localhost:9000/murmur/tweets/a%20b.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, err := New(tt.cfg)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, store.objectURL(tt.key))
		})
	}
}
