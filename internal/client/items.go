package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

// Item endpoint templates.
const (
	endpointItemType      = "/:itemtype"
	endpointItem          = "/:itemtype/:id"
	endpointSubItems      = "/:itemtype/:id/:sub_itemtype"
	endpointSearchOptions = "/listSearchOptions/:itemtype"
	endpointSearch        = "/search/:itemtype"
	endpointDownload      = "/download"
)

// GetItem implements glpi.ItemsClient.GetItem.
func (c *Client) GetItem(ctx context.Context, itemType glpi.ItemType, id string, options glpi.QueryOptions) glpi.Outcome[glpi.Record] {
	ref := glpi.ResourceRef{ItemType: itemType, ID: id}

	return get(ctx, c, endpointItem, ref.Path(), options.ToValues(), glpi.DecodeJSON[glpi.Record])
}

// ListItems implements glpi.ItemsClient.ListItems.
func (c *Client) ListItems(ctx context.Context, itemType glpi.ItemType, options glpi.QueryOptions) glpi.Outcome[[]glpi.Record] {
	ref := glpi.ResourceRef{ItemType: itemType}

	return get(ctx, c, endpointItemType, ref.Path(), options.ToValues(), glpi.DecodeRecords)
}

// ListSubItems implements glpi.ItemsClient.ListSubItems.
func (c *Client) ListSubItems(
	ctx context.Context,
	parentType glpi.ItemType,
	parentID string,
	subType glpi.ItemType,
	options glpi.QueryOptions,
) glpi.Outcome[[]glpi.Record] {
	ref := glpi.ResourceRef{ItemType: parentType, ID: parentID}

	return get(ctx, c, endpointSubItems, ref.Sub(subType), options.ToValues(), glpi.DecodeRecords)
}

// CreateItems implements glpi.ItemsClient.CreateItems. payload is one
// object or a slice of objects; the result has the same cardinality.
func (c *Client) CreateItems(ctx context.Context, itemType glpi.ItemType, payload any) glpi.Outcome[[]glpi.Record] {
	ref := glpi.ResourceRef{ItemType: itemType}

	return send(ctx, c, c.snapshot(), call[[]glpi.Record]{
		method:   http.MethodPost,
		endpoint: endpointItemType,
		path:     ref.Path(),
		body:     inputBody(payload),
		decode:   glpi.DecodeRecords,
	})
}

// UpdateItems implements glpi.ItemsClient.UpdateItems.
func (c *Client) UpdateItems(ctx context.Context, itemType glpi.ItemType, id string, payload any) glpi.Outcome[[]glpi.Record] {
	ref := glpi.ResourceRef{ItemType: itemType, ID: id}

	return send(ctx, c, c.snapshot(), call[[]glpi.Record]{
		method:   http.MethodPut,
		endpoint: endpointItem,
		path:     ref.Path(),
		body:     inputBody(payload),
		decode:   glpi.DecodeRecords,
	})
}

// DeleteItem implements glpi.ItemsClient.DeleteItem.
func (c *Client) DeleteItem(ctx context.Context, itemType glpi.ItemType, id string) glpi.Outcome[[]glpi.Record] {
	ref := glpi.ResourceRef{ItemType: itemType, ID: id}

	return send(ctx, c, c.snapshot(), call[[]glpi.Record]{
		method:   http.MethodDelete,
		endpoint: endpointItem,
		path:     ref.Path(),
		decode:   glpi.DecodeRecords,
	})
}

// DeleteItems implements glpi.ItemsClient.DeleteItems. The server answers
// 207 when some deletions failed; that is still a Success whose records
// carry the per-item messages in input order.
func (c *Client) DeleteItems(ctx context.Context, itemType glpi.ItemType, idsPayload any) glpi.Outcome[[]glpi.Record] {
	ref := glpi.ResourceRef{ItemType: itemType}

	return send(ctx, c, c.snapshot(), call[[]glpi.Record]{
		method:   http.MethodDelete,
		endpoint: endpointItemType,
		path:     ref.Path(),
		body:     inputBody(idsPayload),
		decode:   glpi.DecodeRecords,
	})
}

// ListSearchOptions implements glpi.SearchClient.ListSearchOptions.
func (c *Client) ListSearchOptions(ctx context.Context, itemType glpi.ItemType) glpi.Outcome[glpi.Record] {
	path := "/listSearchOptions/" + url.PathEscape(string(itemType))

	return get(ctx, c, endpointSearchOptions, path, nil, glpi.DecodeJSON[glpi.Record])
}

// Search implements glpi.SearchClient.Search. Criteria are passed through
// options, e.g. "criteria[0][field]".
func (c *Client) Search(ctx context.Context, itemType glpi.ItemType, options glpi.QueryOptions) glpi.Outcome[glpi.Record] {
	path := "/search/" + url.PathEscape(string(itemType))

	return get(ctx, c, endpointSearch, path, options.ToValues(), glpi.DecodeJSON[glpi.Record])
}

// Download implements glpi.FilesClient.Download. path is either relative to
// the API endpoint or an absolute URL. Session-Token and App-Token are only
// sent to the API endpoint's host.
func (c *Client) Download(ctx context.Context, path string) glpi.Outcome[[]byte] {
	if !strings.HasPrefix(path, "/") && !strings.Contains(path, "://") {
		path = "/" + path
	}

	state := c.snapshot()

	foreign := !c.sameHost(path)
	if foreign {
		state = glpi.SessionState{}
	}

	return send(ctx, c, state, call[[]byte]{
		method:      http.MethodGet,
		endpoint:    endpointDownload,
		path:        path,
		headers:     map[string]string{glpi.HeaderAccept: glpi.ContentTypeOctetStream},
		sessionless: foreign,
		decode:      glpi.DecodeBytes,
	})
}

// sameHost reports whether path targets the API endpoint. Relative paths
// always do.
func (c *Client) sameHost(path string) bool {
	if !strings.Contains(path, "://") {
		return true
	}

	target, err := url.Parse(path)
	if err != nil {
		return false
	}

	return c.endpointHost != "" && strings.EqualFold(target.Host, c.endpointHost)
}

// DownloadDocument implements glpi.FilesClient.DownloadDocument.
func (c *Client) DownloadDocument(ctx context.Context, documentID string) glpi.Outcome[[]byte] {
	ref := glpi.ResourceRef{ItemType: glpi.ItemTypeDocument, ID: documentID}

	return send(ctx, c, c.snapshot(), call[[]byte]{
		method:   http.MethodGet,
		endpoint: endpointItem,
		path:     ref.Path(),
		headers:  map[string]string{glpi.HeaderAccept: glpi.ContentTypeOctetStream},
		decode:   glpi.DecodeBytes,
	})
}
