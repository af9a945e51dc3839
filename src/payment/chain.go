package payment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// ChainClient independently confirms a transaction against the network
// ledger over JSON-RPC. Used only when the facilitator is unreachable: it
// trades latency for availability.
type ChainClient struct {
	rpcURL     string
	httpClient *http.Client
}

func NewChainClient(rpcURL string, timeout time.Duration) *ChainClient {
	return &ChainClient{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *ChainClient) call(ctx context.Context, method string, params ...any) (gjson.Result, error) {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("chain RPC unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("chain RPC returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read %s response: %w", method, err)
	}
	parsed := gjson.ParseBytes(raw)
	if rpcErr := parsed.Get("error.message"); rpcErr.Exists() {
		return gjson.Result{}, fmt.Errorf("chain RPC error: %s", rpcErr.String())
	}
	return parsed.Get("result"), nil
}

// Confirm checks that the transaction exists, settled successfully, and
// paid the expected recipient. The three checks mirror what the
// facilitator asserts for us on the happy path.
func (c *ChainClient) Confirm(ctx context.Context, txHash, expectedRecipient string) (bool, error) {
	tx, err := c.call(ctx, "eth_getTransactionByHash", txHash)
	if err != nil {
		return false, err
	}
	if !tx.Exists() || tx.Type == gjson.Null {
		return false, nil // transaction unknown to the network
	}

	receipt, err := c.call(ctx, "eth_getTransactionReceipt", txHash)
	if err != nil {
		return false, err
	}
	if !receipt.Exists() || receipt.Type == gjson.Null {
		return false, nil // not mined yet
	}
	if receipt.Get("status").String() != "0x1" {
		return false, nil // reverted
	}

	to := NormalizeAddress(tx.Get("to").String())
	if to != NormalizeAddress(expectedRecipient) {
		return false, nil
	}
	return true, nil
}
