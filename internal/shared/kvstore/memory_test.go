package kvstore_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"stage-manager/internal/shared/kvstore"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	s := kvstore.NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := kvstore.UpdateCollection(ctx, s, "items", func(items []item) ([]item, error) {
				return append(items, item{ID: fmt.Sprint(i)}), nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	out, err := kvstore.LoadCollection[item](ctx, s, "items")
	assert.NoError(t, err)
	assert.Len(t, out, 25)
}
