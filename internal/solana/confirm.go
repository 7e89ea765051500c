package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultConfirmTimeout bounds how long a confirmation wait may run when the
// caller's context carries no deadline.
const DefaultConfirmTimeout = 60 * time.Second

// WSConfirmer waits for transaction confirmation over the RPC websocket
// endpoint using signatureSubscribe. Each call dials a fresh connection; the
// subscription is single-shot and the node drops it after notifying.
type WSConfirmer struct {
	endpoint   string
	commitment string
	timeout    time.Duration
	dialer     *websocket.Dialer
}

// WSOption configures WSConfirmer.
type WSOption func(*WSConfirmer)

// WithCommitment sets the commitment level to wait for.
func WithCommitment(commitment string) WSOption {
	return func(c *WSConfirmer) {
		c.commitment = commitment
	}
}

// WithConfirmTimeout sets the fallback wait bound.
func WithConfirmTimeout(d time.Duration) WSOption {
	return func(c *WSConfirmer) {
		c.timeout = d
	}
}

// NewWSConfirmer creates a confirmer for the given websocket endpoint
// (ws:// or wss://).
func NewWSConfirmer(endpoint string, opts ...WSOption) *WSConfirmer {
	c := &WSConfirmer{
		endpoint:   endpoint,
		commitment: "confirmed",
		timeout:    DefaultConfirmTimeout,
		dialer:     websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Confirmer = (*WSConfirmer)(nil)

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// wsMessage covers both the subscribe reply and the notification frame.
type wsMessage struct {
	ID     *uint64         `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
	Method string          `json:"method,omitempty"`
	Params *wsNotifyParams `json:"params,omitempty"`
}

type wsNotifyParams struct {
	Subscription uint64 `json:"subscription"`
	Result       struct {
		Value struct {
			Err json.RawMessage `json:"err"`
		} `json:"value"`
	} `json:"result"`
}

// ConfirmTransaction subscribes to the signature and blocks until the node
// reports it processed at the configured commitment, the transaction fails,
// or the wait bound expires.
func (c *WSConfirmer) ConfirmTransaction(ctx context.Context, signature string) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	// Close the connection when the context fires so the read loop unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	sub := wsRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]interface{}{"commitment": c.commitment},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe to signature: %w", err)
	}

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("confirmation wait: %w", ctx.Err())
			}
			return fmt.Errorf("read notification: %w", err)
		}

		if msg.ID != nil {
			if msg.Error != nil {
				return fmt.Errorf("subscribe rejected: %w", msg.Error)
			}
			continue
		}

		if msg.Method != "signatureNotification" || msg.Params == nil {
			continue
		}

		if errVal := msg.Params.Result.Value.Err; len(errVal) > 0 && string(errVal) != "null" {
			return fmt.Errorf("transaction %s failed: %s", signature, string(errVal))
		}
		return nil
	}
}
