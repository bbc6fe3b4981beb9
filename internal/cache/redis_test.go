package cache

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGzipRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat(`{"routeList":{}}`, 100))

	compressed, err := gzipCompress(data)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))

	out, err := gzipDecompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	_, err = gzipDecompress([]byte("plain"))
	assert.Error(t, err)
}

func TestKeyPrefix(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	c := newWithClient(client, "", logger)
	assert.Equal(t, "etaboard:routedb:raw", c.key(KeyRouteDBRaw))

	c = newWithClient(client, "test:", logger)
	assert.Equal(t, "test:routedb:meta", c.key(KeyRouteDBMeta))
}
