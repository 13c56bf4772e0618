package consts

import "token-sweeper-sol/internal/types"

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	//  Programs
	SystemProgramStr          = "11111111111111111111111111111111"
	TokenProgramStr           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	TokenProgram2022Str       = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	ComputeBudgetProgramIdStr = "ComputeBudget111111111111111111111111111111"

	// 稳定币（skip_usdc 过滤用）
	USDCMintStr = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// SPL Token v1 账户数据固定长度（mint/owner/amount/... 的 C 布局）
const TokenAccountDataSize = 165

var (
	USDCMint = types.PubkeyFromBase58(USDCMintStr)
)
