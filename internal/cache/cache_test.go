package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "game:abc:state", stateKey("abc"))
	assert.Equal(t, "game:abc:version", versionKey("abc"))
	assert.Equal(t, "game:abc:updates", updatesChannel("abc"))
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "ftp://localhost:6379", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}

func TestVersionConflictWraps(t *testing.T) {
	err := fmt.Errorf("game g: cached 3, writing 2: %w", ErrVersionConflict)
	assert.ErrorIs(t, err, ErrVersionConflict)
}
