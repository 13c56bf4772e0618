package scanner

import (
	"context"
	"fmt"

	"token-sweeper-sol/internal/chain"
	"token-sweeper-sol/internal/consts"
	"token-sweeper-sol/internal/tools"
	"token-sweeper-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/common"
	sdktoken "github.com/blocto/solana-go-sdk/program/token"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// Scanner 扫描 owner 名下全部 SPL Token 账户，并为每个账户产出 burn（余额 > 0 时）+ close 指令。
// 纯读取 + 派生，不产生任何链上副作用。
type Scanner struct {
	client   chain.AccountLister
	owner    common.PublicKey
	skipUsdc bool
}

func NewScanner(client chain.AccountLister, owner common.PublicKey, skipUsdc bool) *Scanner {
	return &Scanner{
		client:   client,
		owner:    owner,
		skipUsdc: skipUsdc,
	}
}

// Scan 返回按发现顺序排列的指令列表：每个账户先 burn 后 close。
// 任何一个账户解码失败都会让整次扫描失败（畸形数据不允许被静默跳过）。
func (s *Scanner) Scan(ctx context.Context) ([]sdktypes.Instruction, error) {
	ownerStr := s.owner.ToBase58()
	logger.Infof("[Scanner] 拉取钱包 %s 的 token 账户", ownerStr)

	accounts, err := s.client.TokenAccountsByOwner(ctx, ownerStr)
	if err != nil {
		return nil, fmt.Errorf("fetch token accounts: %w", err)
	}
	if len(accounts) == 0 {
		logger.Infof("[Scanner] 该钱包没有 token 账户")
		return nil, nil
	}
	logger.Infof("[Scanner] 发现 %d 个 token 账户", len(accounts))

	instructions := make([]sdktypes.Instruction, 0, 2*len(accounts))
	processed := 0

	for _, raw := range accounts {
		// 按 programId 过滤的查询不应返回其他 owner；出现即视为数据损坏
		if !tools.IsSPLToken(raw.Owner) {
			return nil, fmt.Errorf("token account %s: unexpected owner program %s", raw.Pubkey, raw.Owner)
		}

		record, err := chain.DecodeTokenAccount(raw.Pubkey, raw.Data)
		if err != nil {
			return nil, fmt.Errorf("decode token account: %w", err)
		}

		if s.skipUsdc && record.Mint.Equals(consts.USDCMint) {
			logger.Infof("[Scanner] 跳过 USDC 账户: %s", record.Address)
			continue
		}

		account := common.PublicKeyFromBytes(record.Address[:])
		mint := common.PublicKeyFromBytes(record.Mint[:])

		if record.Amount > 0 {
			logger.Infof("[Scanner] burn %d tokens, account=%s mint=%s", record.Amount, record.Address, record.Mint)
			instructions = append(instructions, sdktoken.Burn(sdktoken.BurnParam{
				Account: account,
				Mint:    mint,
				Auth:    s.owner,
				Amount:  record.Amount,
			}))
		}

		// 无论余额多少都 close，回收租金
		logger.Infof("[Scanner] close account: %s", record.Address)
		instructions = append(instructions, sdktoken.CloseAccount(sdktoken.CloseAccountParam{
			Account: account,
			Auth:    s.owner,
			To:      s.owner,
		}))
		processed++
	}

	logger.Infof("[Scanner] 共 %d 个账户待处理, 产出 %d 条指令", processed, len(instructions))
	return instructions, nil
}
