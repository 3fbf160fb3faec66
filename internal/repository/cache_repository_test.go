package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "batchplan:")
	ctx := context.Background()

	var dest map[string]int
	err := repo.Get(ctx, "stats:admin", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "stats:admin", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "stats:*"))
	assert.Equal(t, "batchplan:stats:admin", repo.key("stats:admin"))
}
