package chain

import (
	"encoding/binary"
	"fmt"

	"token-sweeper-sol/internal/consts"
	"token-sweeper-sol/internal/types"
)

// TokenAccountRecord 是 SPL Token 账户在扫描时刻的不可变快照
type TokenAccountRecord struct {
	Address types.Pubkey // 账户地址
	Mint    types.Pubkey // 资产 mint
	Amount  uint64       // 余额（最小单位）
}

// DecodeTokenAccount 按 SPL Token v1 固定布局解析账户数据。
// [0:32]  -> mint
// [32:64] -> owner
// [64:72] -> amount (uint64 LE)
// 余下为 delegate/state/isNative/... 字段，清理流程不关心。
func DecodeTokenAccount(address string, data []byte) (TokenAccountRecord, error) {
	if len(data) != consts.TokenAccountDataSize {
		return TokenAccountRecord{}, fmt.Errorf("token account %s: invalid data length: got %d, want %d",
			address, len(data), consts.TokenAccountDataSize)
	}

	addr, err := types.TryPubkeyFromBase58(address)
	if err != nil {
		return TokenAccountRecord{}, fmt.Errorf("token account address invalid: %w", err)
	}
	mint, err := types.PubkeyFromBytes(data[0:32])
	if err != nil {
		return TokenAccountRecord{}, fmt.Errorf("token account %s: mint: %w", address, err)
	}

	return TokenAccountRecord{
		Address: addr,
		Mint:    mint,
		Amount:  binary.LittleEndian.Uint64(data[64:72]),
	}, nil
}
