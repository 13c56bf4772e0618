package submitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"token-sweeper-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/program/compute_budget"
	"github.com/blocto/solana-go-sdk/rpc"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// ErrSimulationReverted 表示模拟执行返回了链上错误。
// 与模拟调用本身打不通（网络层）不同：前者整轮 fatal，后者仅告警后继续。
var ErrSimulationReverted = errors.New("transaction simulation reverted")

// ErrConfirmTimeout 表示发送成功但在超时窗口内未达到 confirmed 状态
var ErrConfirmTimeout = errors.New("transaction confirmation timeout")

// ChainClient 是 Submitter 依赖的最小 RPC 合约（*client.Client 直接满足）
type ChainClient interface {
	GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error)
	SimulateTransaction(ctx context.Context, tx sdktypes.Transaction) (client.SimulateTransaction, error)
	SendTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error)
	GetSignatureStatus(ctx context.Context, sig string) (*rpc.SignatureStatus, error)
}

// Submitter 把一个指令分片组装成带费用声明的交易：签名、模拟、发送并等待确认。
// 每笔交易独立声明自己的 compute 预算，不跨批摊销。
type Submitter struct {
	client ChainClient
	signer sdktypes.Account

	computeUnitPrice uint64
	computeUnitLimit uint32
	confirmTimeout   time.Duration
	pollInterval     time.Duration
}

func NewSubmitter(c ChainClient, signer sdktypes.Account, cuPrice uint64, cuLimit uint32,
	confirmTimeout, pollInterval time.Duration) *Submitter {
	return &Submitter{
		client:           c,
		signer:           signer,
		computeUnitPrice: cuPrice,
		computeUnitLimit: cuLimit,
		confirmTimeout:   confirmTimeout,
		pollInterval:     pollInterval,
	}
}

// buildInstructions 在批次前面加上两条 compute 预算指令
func (s *Submitter) buildInstructions(batch []sdktypes.Instruction) []sdktypes.Instruction {
	ixs := make([]sdktypes.Instruction, 0, len(batch)+2)
	ixs = append(ixs, compute_budget.SetComputeUnitPrice(compute_budget.SetComputeUnitPriceParam{
		MicroLamports: s.computeUnitPrice,
	}))
	ixs = append(ixs, compute_budget.SetComputeUnitLimit(compute_budget.SetComputeUnitLimitParam{
		Units: s.computeUnitLimit,
	}))
	return append(ixs, batch...)
}

// Submit 处理一个批次，返回已确认的交易签名。
// 任一步失败（模拟网络层除外）都向上传播并终止整轮运行。
func (s *Submitter) Submit(ctx context.Context, batch []sdktypes.Instruction) (string, error) {
	ixs := s.buildInstructions(batch)

	latest, err := s.client.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := sdktypes.NewTransaction(sdktypes.NewTransactionParam{
		Message: sdktypes.NewMessage(sdktypes.NewMessageParam{
			FeePayer:        s.signer.PublicKey,
			RecentBlockhash: latest.Blockhash,
			Instructions:    ixs,
		}),
		Signers: []sdktypes.Account{s.signer},
	})
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	// 模拟是 best-effort：调用打不通只告警；链上报错则 fatal
	simResult, err := s.client.SimulateTransaction(ctx, tx)
	if err != nil {
		logger.Warnf("[Submitter] 模拟调用失败（网络层）, 跳过模拟直接发送: %v", err)
	} else if simResult.Err != nil {
		for _, line := range simResult.Logs {
			logger.Errorf("[Submitter] sim log: %s", line)
		}
		return "", fmt.Errorf("%w: %v", ErrSimulationReverted, simResult.Err)
	} else {
		logger.Infof("[Submitter] 模拟通过")
	}

	sig, err := s.client.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	logger.Infof("[Submitter] 已发送, signature=%s, 等待确认", sig)

	if err := s.waitForConfirmation(ctx, sig); err != nil {
		return "", err
	}
	return sig, nil
}

// waitForConfirmation 轮询签名状态直到 confirmed/finalized，超时即失败。
// 等待是有界的：confirmTimeout 决定上限，pollInterval 决定查询频率。
func (s *Submitter) waitForConfirmation(ctx context.Context, sig string) error {
	deadline := time.NewTimer(s.confirmTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: signature=%s (waited %v)", ErrConfirmTimeout, sig, s.confirmTimeout)
		case <-ticker.C:
			status, err := s.client.GetSignatureStatus(ctx, sig)
			if err != nil {
				// 单次状态查询失败不终止等待，下一个 tick 重查
				logger.Warnf("[Submitter] 查询签名状态失败: %v", err)
				continue
			}
			if status == nil {
				continue
			}
			if status.Err != nil {
				return fmt.Errorf("transaction failed on chain: signature=%s err=%v", sig, status.Err)
			}
			if status.ConfirmationStatus == nil {
				continue
			}
			switch *status.ConfirmationStatus {
			case rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
				return nil
			}
		}
	}
}
