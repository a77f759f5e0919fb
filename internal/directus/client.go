// Package directus implements the item store port against the Directus
// REST API.
package directus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/contentfactory/internal/store"
)

// Client talks to the /items endpoints of a Directus instance.
type Client struct {
	client *resty.Client
}

var _ store.Store = (*Client)(nil)

// Config holds connection settings for the client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// New creates a new Directus client.
func New(cfg Config) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/"))
	client.SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Client{client: client}
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// ReadItems lists items of a collection.
func (c *Client) ReadItems(ctx context.Context, collection string, q store.Query, out any) error {
	params, err := queryParams(q)
	if err != nil {
		return err
	}
	var env envelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&env).
		SetError(&env).
		Get("/items/" + collection)
	if err != nil {
		return fmt.Errorf("directus read %s: %w", collection, err)
	}
	if err := checkResponse(resp, &env, "read "+collection); err != nil {
		return err
	}
	return decode(env.Data, out)
}

// CreateItem posts item and decodes the stored representation back into it.
func (c *Client) CreateItem(ctx context.Context, collection string, item any) error {
	var env envelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(item).
		SetResult(&env).
		SetError(&env).
		Post("/items/" + collection)
	if err != nil {
		return fmt.Errorf("directus create %s: %w", collection, err)
	}
	if err := checkResponse(resp, &env, "create "+collection); err != nil {
		return err
	}
	return decode(env.Data, item)
}

// UpdateItem patches one item. out may be nil.
func (c *Client) UpdateItem(ctx context.Context, collection, id string, patch map[string]any, out any) error {
	var env envelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(patch).
		SetResult(&env).
		SetError(&env).
		Patch("/items/" + collection + "/" + id)
	if err != nil {
		return fmt.Errorf("directus update %s/%s: %w", collection, id, err)
	}
	if err := checkResponse(resp, &env, "update "+collection+"/"+id); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(env.Data, out)
}

func checkResponse(resp *resty.Response, env *envelope, op string) error {
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("directus %s: %w", op, store.ErrNotFound)
	case resp.IsError():
		if len(env.Errors) > 0 {
			return fmt.Errorf("directus %s: %s (status %d)", op, env.Errors[0].Message, resp.StatusCode())
		}
		return fmt.Errorf("directus %s: status %d", op, resp.StatusCode())
	}
	return nil
}

func decode(data json.RawMessage, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("directus decode: %w", err)
	}
	return nil
}

// queryParams renders q in Directus query syntax.
func queryParams(q store.Query) (map[string]string, error) {
	params := map[string]string{}
	if len(q.Filter) > 0 {
		clauses := make([]map[string]any, 0, len(q.Filter))
		for _, cond := range q.Filter {
			if err := store.ValidateField(cond.Field); err != nil {
				return nil, err
			}
			clauses = append(clauses, map[string]any{
				cond.Field: map[string]any{string(cond.Op): cond.Value},
			})
		}
		b, err := json.Marshal(map[string]any{"_and": clauses})
		if err != nil {
			return nil, fmt.Errorf("directus filter: %w", err)
		}
		params["filter"] = string(b)
	}
	if len(q.Sort) > 0 {
		params["sort"] = strings.Join(q.Sort, ",")
	}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	} else {
		params["limit"] = "-1"
	}
	if q.Offset > 0 {
		params["offset"] = strconv.Itoa(q.Offset)
	}
	return params, nil
}
