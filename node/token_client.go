package node

import (
	"context"
	"fmt"
	"strconv"

	"github.com/varity-labs/varity-app-store/models"
)

// TokenTransferer moves pre-authorized token amounts on behalf of `from`
type TokenTransferer interface {
	Transfer(ctx context.Context, from, to models.Account, amount uint64) error
}

// TokenClient settles transfers through the token gateway's transferFrom.
// The ledger never retries: one call per leg, success or failure.
type TokenClient struct {
	client *Client
	token  string
}

// NewTokenClient client for the settlement token at tokenAddress
func NewTokenClient(client *Client, tokenAddress string) *TokenClient {
	return &TokenClient{client: client, token: tokenAddress}
}

func (t *TokenClient) Transfer(ctx context.Context, from, to models.Account, amount uint64) error {
	// amounts travel as decimal strings, JSON numbers lose precision above 2^53
	result, err := t.client.Call(ctx, "token_transferFrom", []interface{}{
		t.token,
		from.String(),
		to.String(),
		strconv.FormatUint(amount, 10),
	})
	if err != nil {
		return err
	}
	if !result.Get("success").Bool() {
		reason := result.Get("reason").String()
		if reason == "" {
			reason = "rejected"
		}
		return fmt.Errorf("transferFrom %s -> %s (%d): %s", from, to, amount, reason)
	}
	log.Debug("transfer settled", "from", from, "to", to, "amount", amount, "tx", result.Get("tx_hash").String())
	return nil
}

// LogTransferer dry-run transferer that only logs
type LogTransferer struct{}

func (LogTransferer) Transfer(_ context.Context, from, to models.Account, amount uint64) error {
	log.Info("dry-run transfer", "from", from, "to", to, "amount", amount)
	return nil
}
