package config

import (
	"errors"
	"fmt"
	"strings"

	"token-sweeper-sol/pkg/logger"
)

type LogConfig struct {
	Format   string `json:"format,optional"`   // 日志格式，支持 "console" 或 "json"
	LogDir   string `json:"log_dir,optional"`  // 日志目录（可为相对路径或绝对路径）
	Level    string `json:"level,optional"`    // 日志级别：debug / info / warn / error
	Compress bool   `json:"compress,optional"` // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// RpcConfig 表示 Solana RPC 客户端配置
type RpcConfig struct {
	Endpoint   string `json:"endpoint,optional"`    // RPC 节点地址，例如 https://api.mainnet-beta.solana.com
	PrivateKey string `json:"private_key,optional"` // 签名钱包私钥（base58，支持 ${PRIVATE_KEY} 环境变量展开）
}

// SweepConfig 表示 burn + close 清理流程的参数
type SweepConfig struct {
	SkipUsdc         *bool  `json:"skip_usdc,optional"`          // 是否跳过 USDC 账户（默认 true）
	MaxInstructions  int    `json:"max_instructions,optional"`   // 单笔交易最大指令数（默认 22）
	ComputeUnitPrice uint64 `json:"compute_unit_price,optional"` // 计算单元价格（micro-lamports，默认 220000）
	ComputeUnitLimit uint32 `json:"compute_unit_limit,optional"` // 计算单元上限（默认 350000）
	ConfirmTimeoutS  int    `json:"confirm_timeout_s,optional"`  // 等待交易确认的超时（秒，默认 90）
	ConfirmPollMs    int    `json:"confirm_poll_ms,optional"`    // 确认状态轮询间隔（毫秒，默认 500）
}

func (c *SweepConfig) SkipUsdcEnabled() bool {
	// 未显式配置时默认跳过 USDC
	return c.SkipUsdc == nil || *c.SkipUsdc
}

// KafkaProducerConfig 表示批次结果事件的 Kafka 生产者配置（brokers 为空时关闭）
type KafkaProducerConfig struct {
	Brokers    string `json:"brokers,optional"`         // Kafka broker 地址，多个用英文逗号分隔
	Topic      string `json:"topic,optional"`           // 批次结果事件 topic
	Partitions int    `json:"partitions,optional"`      // topic 分区数（结果事件要求严格有序，发送固定走 0 号分区）
	BatchSize  int    `json:"batch_size,optional"`      // 批处理大小（单位字节）
	LingerMs   int    `json:"linger_ms,optional"`       // 批处理最大延迟（毫秒）
	TimeoutMs  int    `json:"send_timeout_ms,optional"` // 单条消息发送并等待 ack 的超时（毫秒）
}

func (c *KafkaProducerConfig) Enabled() bool {
	return strings.TrimSpace(c.Brokers) != ""
}

// SweeperConfig 是主配置结构体，用于驱动清理工具
type SweeperConfig struct {
	LogConf           LogConfig           `json:"logger,optional"`         // 日志配置
	RpcConf           RpcConfig           `json:"rpc,optional"`            // RPC 配置
	SweepConf         SweepConfig         `json:"sweep,optional"`          // 清理流程配置
	KafkaProducerConf KafkaProducerConfig `json:"kafka_producer,optional"` // 结果事件配置（可选）

	RedisAddr       string `json:"redis_addr,optional"`         // Redis 地址（可选，记录已确认签名）
	RunRecordTTLHrs int    `json:"run_record_ttl_hrs,optional"` // 运行记录保留时长（小时，默认 72）
}

// FillDefaults 补齐未配置项（在 Validate 之前调用）
func (c *SweeperConfig) FillDefaults() {
	if c.SweepConf.MaxInstructions == 0 {
		c.SweepConf.MaxInstructions = 22
	}
	if c.SweepConf.ComputeUnitPrice == 0 {
		c.SweepConf.ComputeUnitPrice = 220000
	}
	if c.SweepConf.ComputeUnitLimit == 0 {
		c.SweepConf.ComputeUnitLimit = 350000
	}
	if c.SweepConf.ConfirmTimeoutS == 0 {
		c.SweepConf.ConfirmTimeoutS = 90
	}
	if c.SweepConf.ConfirmPollMs == 0 {
		c.SweepConf.ConfirmPollMs = 500
	}
	if c.KafkaProducerConf.Partitions <= 0 {
		c.KafkaProducerConf.Partitions = 1
	}
	if c.KafkaProducerConf.TimeoutMs <= 0 {
		c.KafkaProducerConf.TimeoutMs = 5000
	}
	if c.RunRecordTTLHrs <= 0 {
		c.RunRecordTTLHrs = 72
	}
}

// Validate 在任何 RPC 调用之前拒绝非法配置
func (c *SweeperConfig) Validate() error {
	if strings.TrimSpace(c.RpcConf.Endpoint) == "" {
		return errors.New("rpc.endpoint 不能为空")
	}
	if strings.TrimSpace(c.RpcConf.PrivateKey) == "" {
		return errors.New("rpc.private_key 不能为空")
	}
	if c.SweepConf.MaxInstructions < 1 {
		return fmt.Errorf("sweep.max_instructions 必须 >= 1, got=%d", c.SweepConf.MaxInstructions)
	}
	if c.SweepConf.ConfirmTimeoutS <= 0 {
		return fmt.Errorf("sweep.confirm_timeout_s 必须 > 0, got=%d", c.SweepConf.ConfirmTimeoutS)
	}
	if c.SweepConf.ConfirmPollMs <= 0 {
		return fmt.Errorf("sweep.confirm_poll_ms 必须 > 0, got=%d", c.SweepConf.ConfirmPollMs)
	}
	if c.KafkaProducerConf.Enabled() && strings.TrimSpace(c.KafkaProducerConf.Topic) == "" {
		return errors.New("kafka_producer.topic 不能为空（已配置 brokers）")
	}
	return nil
}
