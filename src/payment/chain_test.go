package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

// fakeRPC serves eth_getTransactionByHash / eth_getTransactionReceipt from
// canned results.
func fakeRPC(t *testing.T, tx, receipt any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad RPC request: %v", err)
			return
		}
		var result any
		switch req.Method {
		case "eth_getTransactionByHash":
			result = tx
		case "eth_getTransactionReceipt":
			result = receipt
		default:
			t.Errorf("unexpected RPC method %s", req.Method)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": result})
	}))
}

func TestChainConfirmSuccess(t *testing.T) {
	srv := fakeRPC(t,
		map[string]any{"hash": "0xbeef", "to": "0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd"},
		map[string]any{"status": "0x1"},
	)
	defer srv.Close()

	client := NewChainClient(srv.URL, 2*time.Second)
	ok, err := client.Confirm(context.Background(), "0xbeef", "0xABCDabcdABCDabcdABCDabcdABCDabcdABCDabcd")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if !ok {
		t.Error("expected confirmation")
	}
}

func TestChainConfirmUnknownTransaction(t *testing.T) {
	srv := fakeRPC(t, nil, nil)
	defer srv.Close()

	client := NewChainClient(srv.URL, 2*time.Second)
	ok, err := client.Confirm(context.Background(), "0xbeef", "0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd")
	if err != nil {
		t.Fatalf("unknown tx is a clean negative, got error %v", err)
	}
	if ok {
		t.Error("unknown transaction must not confirm")
	}
}

func TestChainConfirmUnminedTransaction(t *testing.T) {
	srv := fakeRPC(t,
		map[string]any{"hash": "0xbeef", "to": "0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd"},
		nil,
	)
	defer srv.Close()

	client := NewChainClient(srv.URL, 2*time.Second)
	ok, err := client.Confirm(context.Background(), "0xbeef", "0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd")
	if err != nil || ok {
		t.Fatalf("pending transaction must be a clean negative, got ok=%v err=%v", ok, err)
	}
}

func TestChainConfirmRevertedTransaction(t *testing.T) {
	srv := fakeRPC(t,
		map[string]any{"hash": "0xbeef", "to": "0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd"},
		map[string]any{"status": "0x0"},
	)
	defer srv.Close()

	client := NewChainClient(srv.URL, 2*time.Second)
	ok, err := client.Confirm(context.Background(), "0xbeef", "0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd")
	if err != nil || ok {
		t.Fatalf("reverted transaction must be a clean negative, got ok=%v err=%v", ok, err)
	}
}

func TestChainConfirmWrongRecipient(t *testing.T) {
	srv := fakeRPC(t,
		map[string]any{"hash": "0xbeef", "to": "0x9999999999999999999999999999999999999999"},
		map[string]any{"status": "0x1"},
	)
	defer srv.Close()

	client := NewChainClient(srv.URL, 2*time.Second)
	ok, err := client.Confirm(context.Background(), "0xbeef", "0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd")
	if err != nil || ok {
		t.Fatalf("wrong recipient must be a clean negative, got ok=%v err=%v", ok, err)
	}
}

func TestChainConfirmRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": 1,
			"error": map[string]any{"code": -32000, "message": "overloaded"},
		})
	}))
	defer srv.Close()

	client := NewChainClient(srv.URL, 2*time.Second)
	if _, err := client.Confirm(context.Background(), "0xbeef", "0xabcd"); err == nil {
		t.Fatal("an RPC error must surface as an error, not a clean negative")
	}
}

func TestChainConfirmUnreachable(t *testing.T) {
	client := NewChainClient("http://127.0.0.1:1", 200*time.Millisecond)
	if _, err := client.Confirm(context.Background(), "0xbeef", "0xabcd"); err == nil {
		t.Fatal("an unreachable RPC must surface as an error")
	}
}
