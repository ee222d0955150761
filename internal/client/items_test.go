package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/glpi/internal/glpitest"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_ItemRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		call         func(c *Client) glpi.OutcomeKind
		response     string
		wantMethod   string
		wantPath     string
		wantEndpoint string
		wantBody     any
	}{
		{
			name: "get one",
			call: func(c *Client) glpi.OutcomeKind {
				return c.GetItem(context.Background(), glpi.ItemTypeComputer, "5", nil).Kind
			},
			response:     `{"id":5}`,
			wantMethod:   http.MethodGet,
			wantPath:     "/Computer/5",
			wantEndpoint: "/:itemtype/:id",
		},
		{
			name: "get all",
			call: func(c *Client) glpi.OutcomeKind {
				return c.ListItems(context.Background(), glpi.ItemTypeTicket, nil).Kind
			},
			response:     `[]`,
			wantMethod:   http.MethodGet,
			wantPath:     "/Ticket",
			wantEndpoint: "/:itemtype",
		},
		{
			name: "get sub collection",
			call: func(c *Client) glpi.OutcomeKind {
				return c.ListSubItems(context.Background(), glpi.ItemTypeUser, "2", glpi.ItemTypeLog, nil).Kind
			},
			response:     `[]`,
			wantMethod:   http.MethodGet,
			wantPath:     "/User/2/Log",
			wantEndpoint: "/:itemtype/:id/:sub_itemtype",
		},
		{
			name: "create wraps payload in input",
			call: func(c *Client) glpi.OutcomeKind {
				return c.CreateItems(context.Background(), glpi.ItemTypeComputer, map[string]any{"name": "pc"}).Kind
			},
			response:     `{"id":7,"message":""}`,
			wantMethod:   http.MethodPost,
			wantPath:     "/Computer",
			wantEndpoint: "/:itemtype",
			wantBody:     map[string]any{"input": map[string]any{"name": "pc"}},
		},
		{
			name: "update",
			call: func(c *Client) glpi.OutcomeKind {
				return c.UpdateItems(context.Background(), glpi.ItemTypeComputer, "7", map[string]any{"name": "pc2"}).Kind
			},
			response:     `[{"7":true,"message":""}]`,
			wantMethod:   http.MethodPut,
			wantPath:     "/Computer/7",
			wantEndpoint: "/:itemtype/:id",
			wantBody:     map[string]any{"input": map[string]any{"name": "pc2"}},
		},
		{
			name: "delete one",
			call: func(c *Client) glpi.OutcomeKind {
				return c.DeleteItem(context.Background(), glpi.ItemTypeComputer, "7").Kind
			},
			response:     `[{"7":true,"message":""}]`,
			wantMethod:   http.MethodDelete,
			wantPath:     "/Computer/7",
			wantEndpoint: "/:itemtype/:id",
		},
		{
			name: "existing input envelope is kept",
			call: func(c *Client) glpi.OutcomeKind {
				return c.DeleteItems(context.Background(), glpi.ItemTypeComputer, map[string]any{"input": []int{1}}).Kind
			},
			response:     `[{"1":true,"message":""}]`,
			wantMethod:   http.MethodDelete,
			wantPath:     "/Computer",
			wantEndpoint: "/:itemtype",
			wantBody:     map[string]any{"input": []int{1}},
		},
		{
			name: "unknown item type is still dispatched",
			call: func(c *Client) glpi.OutcomeKind {
				return c.ListItems(context.Background(), glpi.ItemType("PluginFooBar"), nil).Kind
			},
			response:     `[]`,
			wantMethod:   http.MethodGet,
			wantPath:     "/PluginFooBar",
			wantEndpoint: "/:itemtype",
		},
		{
			name: "search options",
			call: func(c *Client) glpi.OutcomeKind {
				return c.ListSearchOptions(context.Background(), glpi.ItemTypeComputer).Kind
			},
			response:     `{"common":"Characteristics"}`,
			wantMethod:   http.MethodGet,
			wantPath:     "/listSearchOptions/Computer",
			wantEndpoint: "/listSearchOptions/:itemtype",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, transport := newScriptedClient(t, http.StatusOK, tt.response)
			client.RestoreSession(glpi.SessionState{SessionToken: "abc"})

			assert.Equal(t, glpi.OutcomeSuccess, tt.call(client))

			req := transport.last()
			require.NotNil(t, req)
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.Equal(t, tt.wantEndpoint, req.Endpoint)
			assert.Equal(t, "abc", req.Headers[glpi.HeaderSessionToken])
			assert.Equal(t, glpi.ContentTypeJSON, req.Headers[glpi.HeaderAccept])

			if tt.wantBody != nil {
				assert.Equal(t, tt.wantBody, req.Body)
			}

			assert.Equal(t, glpi.SessionState{SessionToken: "abc"}, client.Session())
		})
	}
}

func TestClient_EmptySessionTokenIsSent(t *testing.T) {
	t.Parallel()

	client, transport := newScriptedClient(t, http.StatusOK, `[]`)

	client.ListItems(context.Background(), glpi.ItemTypeComputer, nil)

	value, present := transport.last().Headers[glpi.HeaderSessionToken]
	assert.True(t, present)
	assert.Empty(t, value)
}

func TestClient_QueryOptions(t *testing.T) {
	t.Parallel()

	client, transport := newScriptedClient(t, http.StatusOK, `[]`)

	options := glpi.NewQueryOptions().WithRange(0, 9).WithExpandDropdowns(true)
	client.ListItems(context.Background(), glpi.ItemTypeComputer, options)

	query := transport.last().Query
	assert.Equal(t, "0-9", query.Get("range"))
	assert.Equal(t, "true", query.Get("expand_dropdowns"))
}

func TestClient_DeleteItemsMultiStatus(t *testing.T) {
	t.Parallel()

	body := `[{"id":1,"message":"deleted"},{"id":2,"message":"error"},{"id":3,"message":"deleted"}]`
	client, transport := newScriptedClient(t, http.StatusMultiStatus, body)

	payload := map[string]any{"ids": []int{1, 2, 3}}

	outcome := client.DeleteItems(context.Background(), glpi.ItemTypeComputer, payload)
	require.True(t, outcome.IsSuccess())
	assert.Equal(t, http.StatusMultiStatus, outcome.StatusCode)
	require.Len(t, outcome.Value, 3)

	for index, want := range []struct {
		id      string
		message string
	}{{"1", "deleted"}, {"2", "error"}, {"3", "deleted"}} {
		assert.Equal(t, want.id, outcome.Value[index].ID())
		assert.Equal(t, want.message, outcome.Value[index].String("message"))
	}

	assert.Equal(t, map[string]any{"input": payload}, transport.last().Body)
}

func TestClient_ListItemsIdempotent(t *testing.T) {
	t.Parallel()

	client, _ := newScriptedClient(t, http.StatusOK, `[{"id":1,"name":"pc-01"},{"id":2,"name":"pc-02"}]`)

	first := client.ListItems(context.Background(), glpi.ItemTypeComputer, glpi.QueryOptions{})
	second := client.ListItems(context.Background(), glpi.ItemTypeComputer, glpi.QueryOptions{})

	require.True(t, first.IsSuccess())
	assert.Equal(t, first, second)
}

func TestClient_ItemErrors(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		client, _ := newScriptedClient(t, http.StatusNotFound, `["ERROR_ITEM_NOT_FOUND","Item not found"]`)

		outcome := client.GetItem(context.Background(), glpi.ItemTypeComputer, "99", nil)
		assert.Equal(t, glpi.OutcomeAPIError, outcome.Kind)
		assert.Equal(t, "Item not found", outcome.Message)
		assert.True(t, glpi.IsNotFound(outcome.Err()))
	})

	t.Run("malformed success body", func(t *testing.T) {
		t.Parallel()

		client, _ := newScriptedClient(t, http.StatusOK, `{not json`)

		outcome := client.ListItems(context.Background(), glpi.ItemTypeComputer, nil)
		assert.Equal(t, glpi.OutcomeAPIError, outcome.Kind)
		assert.Equal(t, http.StatusOK, outcome.StatusCode)
		assert.Contains(t, outcome.Message, "decoding response")
	})

	t.Run("transport fault", func(t *testing.T) {
		t.Parallel()

		client, transport := newScriptedClient(t, http.StatusOK, "")
		transport.fail(ErrTestConnectionRefused)

		outcome := client.CreateItems(context.Background(), glpi.ItemTypeComputer, map[string]any{"name": "x"})
		assert.Equal(t, glpi.OutcomeTransportError, outcome.Kind)
		assert.Zero(t, outcome.StatusCode)
	})
}

func TestClient_Downloads(t *testing.T) {
	t.Parallel()

	client, transport := newScriptedClient(t, http.StatusOK, "raw-bytes")

	outcome := client.DownloadDocument(context.Background(), "12")
	require.True(t, outcome.IsSuccess())
	assert.Equal(t, []byte("raw-bytes"), outcome.Value)
	assert.Equal(t, "/Document/12", transport.last().Path)
	assert.Equal(t, glpi.ContentTypeOctetStream, transport.last().Headers[glpi.HeaderAccept])

	outcome = client.Download(context.Background(), "files/report.pdf")
	require.True(t, outcome.IsSuccess())
	assert.Equal(t, "/files/report.pdf", transport.last().Path)
}

func TestClient_DownloadAbsoluteURL(t *testing.T) {
	t.Parallel()

	transport := &scriptedTransport{status: http.StatusOK, body: "raw-bytes"}

	client, err := New(&glpi.Config{APIEndpoint: "https://glpi.example.com/apirest.php"}, transport)
	require.NoError(t, err)

	client.RestoreSession(glpi.SessionState{SessionToken: "abc", AppToken: strPtr("t1")})

	t.Run("same host keeps session headers", func(t *testing.T) {
		require.True(t, client.Download(context.Background(), "https://GLPI.example.com/files/a.pdf").IsSuccess())

		req := transport.last()
		assert.Equal(t, "abc", req.Headers[glpi.HeaderSessionToken])
		assert.Equal(t, "t1", req.Headers[glpi.HeaderAppToken])
	})

	t.Run("other host gets no session headers", func(t *testing.T) {
		require.True(t, client.Download(context.Background(), "https://cdn.example.net/files/a.pdf").IsSuccess())

		req := transport.last()
		assert.Equal(t, "https://cdn.example.net/files/a.pdf", req.Path)
		assert.NotContains(t, req.Headers, glpi.HeaderSessionToken)
		assert.NotContains(t, req.Headers, glpi.HeaderAppToken)
		assert.Equal(t, glpi.ContentTypeOctetStream, req.Headers[glpi.HeaderAccept])
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_ItemsAgainstFakeServer(t *testing.T) {
	t.Parallel()

	client, server := newFakeClient(t)
	ctx := context.Background()

	require.True(t, client.InitByCredentials(ctx, glpitest.DefaultUsername, glpitest.DefaultPassword).IsSuccess())

	created := client.CreateItems(ctx, glpi.ItemTypeComputer, map[string]any{"name": "pc-01"})
	require.True(t, created.IsSuccess(), created.Message)
	require.Len(t, created.Value, 1)
	assert.Equal(t, http.StatusCreated, created.StatusCode)

	firstID := created.Value[0].ID()

	many := client.CreateItems(ctx, glpi.ItemTypeComputer, []map[string]any{{"name": "pc-02"}, {"name": "pc-03"}})
	require.True(t, many.IsSuccess(), many.Message)
	require.Len(t, many.Value, 2)

	list := client.ListItems(ctx, glpi.ItemTypeComputer, nil)
	require.True(t, list.IsSuccess())
	require.Len(t, list.Value, 3)
	assert.Equal(t, "pc-01", list.Value[0].String("name"))

	item := client.GetItem(ctx, glpi.ItemTypeComputer, firstID, nil)
	require.True(t, item.IsSuccess())
	assert.Equal(t, "pc-01", item.Value.String("name"))

	updated := client.UpdateItems(ctx, glpi.ItemTypeComputer, firstID, map[string]any{"name": "pc-01b"})
	require.True(t, updated.IsSuccess())

	item = client.GetItem(ctx, glpi.ItemTypeComputer, firstID, nil)
	assert.Equal(t, "pc-01b", item.Value.String("name"))

	server.AddSubItem(glpi.ItemTypeComputer, 1, glpi.ItemTypeLog, glpi.Record{"id": 100, "linked_action": 20})

	subs := client.ListSubItems(ctx, glpi.ItemTypeComputer, firstID, glpi.ItemTypeLog, nil)
	require.True(t, subs.IsSuccess(), subs.Message)
	require.Len(t, subs.Value, 1)
	assert.Equal(t, "100", subs.Value[0].ID())

	search := client.Search(ctx, glpi.ItemTypeComputer, nil)
	require.True(t, search.IsSuccess())
	assert.Equal(t, http.StatusPartialContent, search.StatusCode)

	options := client.ListSearchOptions(ctx, glpi.ItemTypeComputer)
	require.True(t, options.IsSuccess())
	assert.Equal(t, "Characteristics", options.Value.String("common"))

	deleted := client.DeleteItem(ctx, glpi.ItemTypeComputer, firstID)
	require.True(t, deleted.IsSuccess())

	missing := client.GetItem(ctx, glpi.ItemTypeComputer, firstID, nil)
	assert.Equal(t, glpi.OutcomeAPIError, missing.Kind)
	assert.Equal(t, glpi.ErrorCodeItemNotFound, missing.Code)

	bulk := client.DeleteItems(ctx, glpi.ItemTypeComputer, []map[string]any{
		{"id": many.Value[0].ID()},
		{"id": firstID},
		{"id": many.Value[1].ID()},
	})
	require.True(t, bulk.IsSuccess(), bulk.Message)
	assert.Equal(t, http.StatusMultiStatus, bulk.StatusCode)
	require.Len(t, bulk.Value, 3)
	assert.Equal(t, "Item not found", bulk.Value[1].String("message"))

	unknown := client.ListItems(ctx, glpi.ItemType("NotAType"), nil)
	assert.Equal(t, glpi.OutcomeAPIError, unknown.Kind)
	assert.Equal(t, glpi.ErrorCodeResourceNotFound, unknown.Code)

	var body map[string]any

	require.NoError(t, json.Unmarshal(server.Requests()[1].Body, &body))
	assert.Equal(t, map[string]any{"input": map[string]any{"name": "pc-01"}}, body)
}

func TestClient_DownloadAgainstFakeServer(t *testing.T) {
	t.Parallel()

	client, server := newFakeClient(t)
	ctx := context.Background()

	id := server.AddDocument("report.txt", []byte("hello"))

	require.True(t, client.InitByToken(ctx, glpitest.DefaultUserToken).IsSuccess())

	outcome := client.DownloadDocument(ctx, strconv.Itoa(id))
	require.True(t, outcome.IsSuccess(), outcome.Message)
	assert.Equal(t, []byte("hello"), outcome.Value)
}
