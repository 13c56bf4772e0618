package svc

import (
	"fmt"
	"time"

	"token-sweeper-sol/internal/chain"
	"token-sweeper-sol/internal/config"
	"token-sweeper-sol/internal/mq"
	"token-sweeper-sol/internal/progress"
	"token-sweeper-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/client"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/redis/go-redis/v9"
)

// SweepServiceContext 包含一次清理运行的全部资源
type SweepServiceContext struct {
	Config    config.SweeperConfig
	Signer    sdktypes.Account     // 运行期间只读，仅用于产生签名
	RpcClient *client.Client       // 交易侧 RPC（blockhash / simulate / send / status）
	RawClient *chain.JSONRPCClient // 账户列表查询（base64 原始数据）

	Publisher *mq.OutcomeSender       // 可选：批次结果事件
	RunStore  *progress.RedisRunStore // 可选：已确认签名记录

	producer *kafka.Producer
}

// NewSweepServiceContext 创建服务上下文：解析私钥、初始化 RPC 客户端与可选旁路资源
func NewSweepServiceContext(c config.SweeperConfig) (*SweepServiceContext, error) {
	signer, err := sdktypes.AccountFromBase58(c.RpcConf.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("解析 base58 私钥失败: %w", err)
	}

	ctx := &SweepServiceContext{
		Config:    c,
		Signer:    signer,
		RpcClient: client.NewClient(c.RpcConf.Endpoint),
		RawClient: chain.NewJSONRPCClient(c.RpcConf.Endpoint),
	}

	if c.KafkaProducerConf.Enabled() {
		producer, err := mq.NewOutcomeProducer(c.KafkaProducerConf)
		if err != nil {
			return nil, fmt.Errorf("Kafka producer 初始化失败: %w", err)
		}
		ctx.producer = producer
		ctx.Publisher = mq.NewOutcomeSender(producer, c.KafkaProducerConf.Topic,
			time.Duration(c.KafkaProducerConf.TimeoutMs)*time.Millisecond)
	}

	if c.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: c.RedisAddr,
		})
		ctx.RunStore = progress.NewRedisRunStore(rdb, time.Duration(c.RunRecordTTLHrs)*time.Hour)
	}

	logger.Infof("清理服务上下文初始化完成, wallet=%s endpoint=%s", signer.PublicKey.ToBase58(), c.RpcConf.Endpoint)
	return ctx, nil
}

// Close 关闭服务上下文中的资源
func (ctx *SweepServiceContext) Close() {
	if ctx.producer != nil {
		ctx.producer.Close()
	}
}
