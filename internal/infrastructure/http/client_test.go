package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		config   *ClientConfig
		validate func(t *testing.T, client *http.Client)
	}{
		{
			name:   "nil config uses defaults",
			config: nil,
			validate: func(t *testing.T, client *http.Client) {
				assert.Equal(t, 30*time.Second, client.Timeout)
				transport, ok := client.Transport.(*http.Transport)
				require.True(t, ok)
				assert.Equal(t, 50, transport.MaxConnsPerHost)
			},
		},
		{
			name:   "zero timeout falls back to default",
			config: &ClientConfig{},
			validate: func(t *testing.T, client *http.Client) {
				assert.Equal(t, DefaultTimeout, client.Timeout)
			},
		},
		{
			name:   "custom timeout",
			config: &ClientConfig{Timeout: 10 * time.Second},
			validate: func(t *testing.T, client *http.Client) {
				assert.Equal(t, 10*time.Second, client.Timeout)
			},
		},
		{
			name:   "custom transport",
			config: &ClientConfig{Transport: http.DefaultTransport},
			validate: func(t *testing.T, client *http.Client) {
				assert.Equal(t, http.DefaultTransport, client.Transport)
			},
		},
		{
			name:   "custom max conns per host",
			config: &ClientConfig{MaxConnsPerHost: 8},
			validate: func(t *testing.T, client *http.Client) {
				transport := client.Transport.(*http.Transport)
				assert.Equal(t, 8, transport.MaxConnsPerHost)
				assert.Equal(t, 8, transport.MaxIdleConnsPerHost)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.config)
			require.NotNil(t, client)
			tt.validate(t, client)
		})
	}
}
