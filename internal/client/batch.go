package client

import (
	"context"
	"sync"

	"github.com/fivetwenty-io/glpi/internal/constants"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

// GetItems implements glpi.ItemsClient.GetItems. It fetches every id with at
// most concurrency calls in flight and returns one Outcome per id, in the
// order of ids. A concurrency below one uses the default limit.
func (c *Client) GetItems(
	ctx context.Context,
	itemType glpi.ItemType,
	ids []string,
	options glpi.QueryOptions,
	concurrency int,
) []glpi.Outcome[glpi.Record] {
	if concurrency < 1 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	results := make([]glpi.Outcome[glpi.Record], len(ids))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, concurrency)

	for index, id := range ids {
		waitGroup.Add(1)

		go func(index int, id string) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			results[index] = c.GetItem(ctx, itemType, id, options)
		}(index, id)
	}

	waitGroup.Wait()

	return results
}
