package service

import (
	"context"
	"fmt"
	"time"

	"token-sweeper-sol/internal/logic/batcher"
	"token-sweeper-sol/internal/logic/scanner"
	"token-sweeper-sol/internal/logic/submitter"
	"token-sweeper-sol/internal/mq"
	"token-sweeper-sol/pkg/logger"
)

// OutcomePublisher 发布批次结果事件（*mq.OutcomeSender 满足）
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, event mq.OutcomeEvent) error
}

// RunRecorder 记录已确认的交易签名（*progress.RedisRunStore 满足）
type RunRecorder interface {
	RecordConfirmed(ctx context.Context, wallet, signature string) error
}

// SweepService 串起整条管线：Scanner → Batcher → Submitter。
// 严格串行：第 N 批确认之前，第 N+1 批不组装、不签名、不发送。
type SweepService struct {
	scanner   *scanner.Scanner
	submitter *submitter.Submitter

	wallet          string
	maxInstructions int

	publisher OutcomePublisher // 可为 nil
	recorder  RunRecorder      // 可为 nil
}

type SweepServiceOption struct {
	Scanner         *scanner.Scanner
	Submitter       *submitter.Submitter
	Wallet          string
	MaxInstructions int

	Publisher OutcomePublisher
	Recorder  RunRecorder
}

func NewSweepService(opt SweepServiceOption) *SweepService {
	return &SweepService{
		scanner:         opt.Scanner,
		submitter:       opt.Submitter,
		wallet:          opt.Wallet,
		maxInstructions: opt.MaxInstructions,
		publisher:       opt.Publisher,
		recorder:        opt.Recorder,
	}
}

// Run 执行一次完整清理。任一批次失败立即返回 error，后续批次不再组装；
// 已确认的批次留在链上（不可回滚的副作用）。
func (s *SweepService) Run(ctx context.Context) error {
	instructions, err := s.scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if len(instructions) == 0 {
		logger.Infof("[SweepService] 没有需要处理的 token 账户")
		return nil
	}

	batches := batcher.Chunk(instructions, s.maxInstructions)
	logger.Infof("[SweepService] 共 %d 条指令, 切成 %d 个批次 (max=%d)",
		len(instructions), len(batches), s.maxInstructions)

	done := 0
	for i, batch := range batches {
		start := done + 1
		done += len(batch)
		logger.Infof("[SweepService] 处理批次 %d/%d: 指令 %d 到 %d (总数 %d)",
			i+1, len(batches), start, done, len(instructions))

		sig, err := s.submitter.Submit(ctx, batch)
		s.publishOutcome(ctx, i+1, len(batches), len(batch), sig, err)
		if err != nil {
			return fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
		}

		logger.Infof("[SweepService] 批次 %d/%d 确认成功! signature=%s", i+1, len(batches), sig)
		logger.Infof("[SweepService] View on Solscan: https://solscan.io/tx/%s", sig)
		s.recordConfirmed(ctx, sig)
	}

	logger.Infof("[SweepService] 全部 %d 个批次确认完成", len(batches))
	return nil
}

// publishOutcome 发送批次结果事件（未配置时为 no-op；发送失败只告警，不影响主流程）
func (s *SweepService) publishOutcome(ctx context.Context, index, total, ixCount int, sig string, runErr error) {
	if s.publisher == nil {
		return
	}
	event := mq.OutcomeEvent{
		Wallet:       s.wallet,
		BatchIndex:   index,
		BatchTotal:   total,
		Instructions: ixCount,
		Signature:    sig,
		Timestamp:    time.Now().Unix(),
	}
	if runErr != nil {
		event.Error = runErr.Error()
	}
	if err := s.publisher.PublishOutcome(ctx, event); err != nil {
		logger.Warnf("[SweepService] 结果事件发送失败（不影响主流程）: %v", err)
	}
}

// recordConfirmed 记录已确认签名（未配置时为 no-op；写失败只告警，不影响主流程）
func (s *SweepService) recordConfirmed(ctx context.Context, sig string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordConfirmed(ctx, s.wallet, sig); err != nil {
		logger.Warnf("[SweepService] 运行记录写入失败（不影响主流程）: %v", err)
	}
}
