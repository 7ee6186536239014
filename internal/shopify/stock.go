package shopify

import (
	"context"
	"fmt"
	"strings"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// StockClient retrieves the stock-availability metafield for an order via
// the Shopify Admin API. The value is not part of the webhook payload, so
// it takes a side query per event.
type StockClient struct {
	client    *goshopify.Client
	namespace string
	key       string
}

// NewStockClient builds an Admin API client for a private app.
// shopName is the *.myshopify.com subdomain; namespace/key locate the
// metafield (e.g. "inventory"/"availability").
func NewStockClient(apiKey, apiSecret, shopName, token, namespace, key string) (*StockClient, error) {
	app := goshopify.App{ApiKey: apiKey, ApiSecret: apiSecret}
	client, err := goshopify.NewClient(app, shopName, token)
	if err != nil {
		return nil, fmt.Errorf("shopify client: %w", err)
	}
	return &StockClient{client: client, namespace: namespace, key: key}, nil
}

// StockStatus returns the raw metafield value for the order, or "" when
// the metafield is absent. Transport errors propagate to the caller,
// which treats them as a skipped domain for the current event.
func (c *StockClient) StockStatus(ctx context.Context, orderID uint64) (string, error) {
	fields, err := c.client.Order.ListMetafields(ctx, orderID, nil)
	if err != nil {
		return "", fmt.Errorf("list order metafields: %w", err)
	}
	for _, f := range fields {
		if strings.EqualFold(f.Namespace, c.namespace) && strings.EqualFold(f.Key, c.key) {
			return fmt.Sprintf("%v", f.Value), nil
		}
	}
	return "", nil
}
