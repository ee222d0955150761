package client

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

func TestClient_GetItems(t *testing.T) {
	t.Parallel()

	t.Run("results follow input order", func(t *testing.T) {
		t.Parallel()

		transport := glpi.TransportFunc(func(_ context.Context, req *glpi.Request) (*glpi.Response, error) {
			id := strings.TrimPrefix(req.Path, "/Computer/")
			if id == "404" {
				return &glpi.Response{StatusCode: http.StatusNotFound, Body: []byte(`["ERROR_ITEM_NOT_FOUND","Item not found"]`)}, nil
			}

			// Later ids answer first.
			delay, _ := time.ParseDuration(id + "ms")
			time.Sleep(20*time.Millisecond - delay)

			return &glpi.Response{StatusCode: http.StatusOK, Body: []byte(`{"id":` + id + `}`)}, nil
		})

		client, err := New(&glpi.Config{}, transport)
		require.NoError(t, err)

		results := client.GetItems(context.Background(), glpi.ItemTypeComputer, []string{"1", "404", "5", "10"}, nil, 4)
		require.Len(t, results, 4)

		assert.Equal(t, "1", results[0].Value.ID())
		assert.Equal(t, glpi.OutcomeAPIError, results[1].Kind)
		assert.Equal(t, "5", results[2].Value.ID())
		assert.Equal(t, "10", results[3].Value.ID())
	})

	t.Run("concurrency is bounded", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak int32

		transport := glpi.TransportFunc(func(_ context.Context, _ *glpi.Request) (*glpi.Response, error) {
			current := atomic.AddInt32(&inFlight, 1)
			defer atomic.AddInt32(&inFlight, -1)

			for {
				observed := atomic.LoadInt32(&peak)
				if current <= observed || atomic.CompareAndSwapInt32(&peak, observed, current) {
					break
				}
			}

			time.Sleep(5 * time.Millisecond)

			return &glpi.Response{StatusCode: http.StatusOK, Body: []byte(`{"id":1}`)}, nil
		})

		client, err := New(&glpi.Config{}, transport)
		require.NoError(t, err)

		ids := make([]string, 12)
		for index := range ids {
			ids[index] = "1"
		}

		results := client.GetItems(context.Background(), glpi.ItemTypeComputer, ids, nil, 2)
		require.Len(t, results, 12)
		assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))

		for _, result := range results {
			assert.True(t, result.IsSuccess())
		}
	})

	t.Run("empty ids", func(t *testing.T) {
		t.Parallel()

		client, _ := newScriptedClient(t, http.StatusOK, `{}`)

		results := client.GetItems(context.Background(), glpi.ItemTypeComputer, nil, nil, 0)
		assert.Empty(t, results)
	})
}
