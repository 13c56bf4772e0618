package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"token-sweeper-sol/internal/consts"
)

// RawTokenAccount 表示 getTokenAccountsByOwner 返回的一条原始账户（base64 已解码）
type RawTokenAccount struct {
	Pubkey string // 账户地址（base58）
	Owner  string // 账户的 owner 程序（base58，应为 SPL Token 程序）
	Data   []byte // 原始账户数据
}

// AccountLister 是 Scanner 依赖的最小 RPC 合约
type AccountLister interface {
	// TokenAccountsByOwner 按 owner + programId 列出全部 SPL Token 账户（base64 编码）
	TokenAccountsByOwner(ctx context.Context, owner string) ([]RawTokenAccount, error)
}

// JSONRPCClient 是一个只覆盖账户列表查询的最小 Solana JSON-RPC 客户端。
// 交易侧（blockhash / simulate / send）走 blocto SDK；这里单独直连 RPC
// 是为了拿到账户的原始字节，解码失败必须让整次扫描失败，而不是被 SDK 吞掉。
type JSONRPCClient struct {
	Endpoint string
	HTTP     *http.Client
}

func NewJSONRPCClient(endpoint string) *JSONRPCClient {
	return &JSONRPCClient{
		Endpoint: endpoint,
		HTTP: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (c *JSONRPCClient) call(ctx context.Context, method string, params any, out any) error {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("solana rpc: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("solana rpc: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("solana rpc: http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("solana rpc: http status=%d", resp.StatusCode)
	}

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("solana rpc: decode response: %w", err)
	}
	if rr.Error != nil {
		return fmt.Errorf("solana rpc: error code=%d message=%s", rr.Error.Code, rr.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rr.Result, out); err != nil {
			return fmt.Errorf("solana rpc: unmarshal result: %w", err)
		}
	}
	return nil
}

// tokenAccountsResult 是 getTokenAccountsByOwner（encoding=base64）的 result 结构
type tokenAccountsResult struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value []struct {
		Pubkey  string `json:"pubkey"`
		Account struct {
			Data     []string `json:"data"` // ["<base64>", "base64"]
			Owner    string   `json:"owner"`
			Lamports uint64   `json:"lamports"`
		} `json:"account"`
	} `json:"value"`
}

func (c *JSONRPCClient) TokenAccountsByOwner(ctx context.Context, owner string) ([]RawTokenAccount, error) {
	params := []any{
		owner,
		map[string]any{
			"programId": consts.TokenProgramStr,
		},
		map[string]any{
			"commitment": "confirmed",
			"encoding":   "base64",
		},
	}

	var out tokenAccountsResult
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &out); err != nil {
		return nil, err
	}

	accounts := make([]RawTokenAccount, 0, len(out.Value))
	for _, v := range out.Value {
		if len(v.Account.Data) == 0 {
			return nil, fmt.Errorf("solana rpc: account %s missing data field", v.Pubkey)
		}
		raw, err := base64.StdEncoding.DecodeString(v.Account.Data[0])
		if err != nil {
			return nil, fmt.Errorf("solana rpc: account %s base64 decode: %w", v.Pubkey, err)
		}
		accounts = append(accounts, RawTokenAccount{
			Pubkey: v.Pubkey,
			Owner:  v.Account.Owner,
			Data:   raw,
		})
	}
	return accounts, nil
}
