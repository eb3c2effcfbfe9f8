package notion

import (
	"context"
	"encoding/json"
	"fmt"
)

// Database binds a Client to one database.
type Database struct {
	client *Client
	id     string
}

// Database returns a handle to the database with the given id.
func (c *Client) Database(id string) *Database {
	return &Database{client: c, id: id}
}

// ID returns the database id.
func (d *Database) ID() string {
	return d.id
}

// MaxNumber returns the largest value of a number property across the
// database, or 0 when no page has one.
func (d *Database) MaxNumber(ctx context.Context, property string) (int64, error) {
	pages, err := d.client.QueryDatabase(ctx, d.id, QueryRequest{
		Filter: map[string]any{
			"property": property,
			"number":   map[string]any{"is_not_empty": true},
		},
		Sorts:    []Sort{{Property: property, Direction: "descending"}},
		PageSize: 1,
	})
	if err != nil {
		return 0, err
	}
	if len(pages) != 1 {
		return 0, nil
	}

	raw, ok := pages[0].Properties[property]
	if !ok {
		return 0, nil
	}
	var value struct {
		Number *float64 `json:"number"`
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, fmt.Errorf("failed to decode %s: %w", property, err)
	}
	if value.Number == nil {
		return 0, nil
	}
	return int64(*value.Number), nil
}

// FindByText returns the ids of pages whose rich text property equals value.
func (d *Database) FindByText(ctx context.Context, property, value string) ([]string, error) {
	pages, err := d.client.QueryDatabase(ctx, d.id, QueryRequest{
		Filter: map[string]any{
			"property":  property,
			"rich_text": map[string]any{"equals": value},
		},
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(pages))
	for _, p := range pages {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// CreatePage creates a page in the database and returns its id.
func (d *Database) CreatePage(ctx context.Context, icon map[string]any, properties map[string]any) (string, error) {
	return d.client.CreatePage(ctx, d.id, icon, properties)
}

// DeleteBlock archives a page or block.
func (d *Database) DeleteBlock(ctx context.Context, id string) error {
	return d.client.DeleteBlock(ctx, id)
}

// AppendChildren appends blocks under a page. See Client.AppendChildren.
func (d *Database) AppendChildren(ctx context.Context, parentID string, children []map[string]any) ([]string, error) {
	return d.client.AppendChildren(ctx, parentID, children)
}

// AppendGrandchildren nests attachments under written blocks. See
// Client.AppendGrandchildren.
func (d *Database) AppendGrandchildren(ctx context.Context, ids []string, attachments map[int]map[string]any) error {
	return d.client.AppendGrandchildren(ctx, ids, attachments)
}
