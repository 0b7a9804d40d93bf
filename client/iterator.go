package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Iterator yields JSON documents lazily, one page at a time. It is not safe
// for concurrent use.
type Iterator struct {
	fetch func(ctx context.Context, offset int) (items []map[string]any, hasMore bool, err error)

	buf     []map[string]any
	offset  int
	hasMore bool
	started bool
	err     error
}

// Next returns the next document, or io.EOF when the results are exhausted.
// Errors are sticky.
func (it *Iterator) Next(ctx context.Context) (map[string]any, error) {
	for len(it.buf) == 0 {
		if it.err != nil {
			return nil, it.err
		}
		if it.started && !it.hasMore {
			return nil, io.EOF
		}
		items, hasMore, err := it.fetch(ctx, it.offset)
		if err != nil {
			it.err = err
			return nil, err
		}
		it.started = true
		it.hasMore = hasMore && len(items) > 0
		it.offset += len(items)
		it.buf = items
	}
	doc := it.buf[0]
	it.buf = it.buf[1:]
	return doc, nil
}

// CollectionQuery narrows and orders a collection pull.
type CollectionQuery struct {
	OrderBy    string
	Descending bool
	// UpdatedFrom (inclusive) and UpdatedTo (exclusive) filter on updatedTime.
	UpdatedFrom time.Time
	UpdatedTo   time.Time
	// Fields limits the returned attributes; empty returns the defaults.
	Fields []string
}

func (q CollectionQuery) filter() string {
	var parts []string
	if !q.UpdatedFrom.IsZero() {
		parts = append(parts, fmt.Sprintf("updatedTime >= '%s'", q.UpdatedFrom.UTC().Format(time.RFC3339)))
	}
	if !q.UpdatedTo.IsZero() {
		parts = append(parts, fmt.Sprintf("updatedTime < '%s'", q.UpdatedTo.UTC().Format(time.RFC3339)))
	}
	return strings.Join(parts, " and ")
}

type collectionPage struct {
	Items   []map[string]any `json:"items"`
	HasMore bool             `json:"hasMore"`
}

// Collection pages through a REST collection such as "accounts".
func (c *Client) Collection(resource string, q CollectionQuery) *Iterator {
	return &Iterator{fetch: func(ctx context.Context, offset int) ([]map[string]any, bool, error) {
		v := url.Values{}
		v.Set("limit", strconv.Itoa(c.pageSize))
		v.Set("offset", strconv.Itoa(offset))
		if q.OrderBy != "" {
			dir := "asc"
			if q.Descending {
				dir = "desc"
			}
			v.Set("orderBy", q.OrderBy+":"+dir)
		}
		if f := q.filter(); f != "" {
			v.Set("q", f)
		}
		if len(q.Fields) > 0 {
			v.Set("fields", strings.Join(q.Fields, ","))
		}
		var page collectionPage
		if err := c.get(ctx, c.endpoint(resource, v), &page); err != nil {
			return nil, false, err
		}
		c.logger.DebugContext(ctx, "fetched collection page", "resource", resource, "offset", offset, "items", len(page.Items), "has_more", page.HasMore)
		return page.Items, page.HasMore, nil
	}}
}

type queryResultsPage struct {
	Items []struct {
		TableName   string   `json:"tableName"`
		ColumnNames []string `json:"columnNames"`
		Rows        [][]any  `json:"rows"`
	} `json:"items"`
}

// QueryResults runs a ROQL query and yields one document per result row,
// keyed by column name. Cell values are returned as Oracle sends them,
// which is usually as strings.
func (c *Client) QueryResults(query string) *Iterator {
	return &Iterator{fetch: func(ctx context.Context, _ int) ([]map[string]any, bool, error) {
		var page queryResultsPage
		if err := c.get(ctx, c.endpoint("queryResults", url.Values{"query": {query}}), &page); err != nil {
			return nil, false, err
		}
		var docs []map[string]any
		for _, table := range page.Items {
			for _, row := range table.Rows {
				doc := make(map[string]any, len(table.ColumnNames))
				for i, col := range table.ColumnNames {
					if i < len(row) {
						doc[col] = row[i]
					} else {
						doc[col] = nil
					}
				}
				docs = append(docs, doc)
			}
		}
		c.logger.DebugContext(ctx, "fetched query results", "tables", len(page.Items), "rows", len(docs))
		return docs, false, nil
	}}
}
