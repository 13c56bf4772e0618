package mq

import (
	"context"
	"fmt"
	"os"
	"time"

	"token-sweeper-sol/internal/config"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/zeromicro/go-zero/core/logx"
)

const (
	defaultBatchSize = 32 * 1024
	defaultLingerMs  = 5
)

// NewOutcomeProducer 创建批次结果事件的 Kafka 生产者，topic 不存在时先创建
func NewOutcomeProducer(cfg config.KafkaProducerConfig) (*kafka.Producer, error) {
	adminClient, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	meta, err := adminClient.GetMetadata(nil, true, 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}
	brokerCount := len(meta.Brokers)

	replicationFactor := 1
	if brokerCount > 1 {
		replicationFactor = 2
	}
	logx.Infof("Kafka broker count = %d, using replication factor = %d", brokerCount, replicationFactor)

	if _, exists := meta.Topics[cfg.Topic]; !exists {
		results, err := adminClient.CreateTopics(ctx, []kafka.TopicSpecification{{
			Topic:             cfg.Topic,
			NumPartitions:     cfg.Partitions,
			ReplicationFactor: replicationFactor,
		}})
		if err != nil {
			return nil, fmt.Errorf("failed to create topic: %w", err)
		}
		for _, result := range results {
			if result.Error.Code() != kafka.ErrNoError {
				return nil, fmt.Errorf("failed to create topic %s: %w", result.Topic, result.Error)
			}
		}
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	lingerMs := cfg.LingerMs
	if lingerMs < 0 {
		lingerMs = defaultLingerMs
	}

	hostname, _ := os.Hostname()
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		// 基础连接
		"bootstrap.servers": cfg.Brokers,
		"client.id":         fmt.Sprintf("token-sweeper-sol-%s", hostname),

		// 可靠性保障
		"acks":                                  "all", // 必须
		"enable.idempotence":                    true,  // 幂等开启
		"max.in.flight.requests.per.connection": 5,     // 幂等场景下最大值为 5

		// 超时与重试
		"delivery.timeout.ms": 30000,
		"request.timeout.ms":  30000,
		"retries":             5,
		"retry.backoff.ms":    100,

		// 性能优化
		"batch.size":       batchSize,
		"linger.ms":        lingerMs,
		"compression.type": "none",

		// 消息大小
		"message.max.bytes": 2 * 1024 * 1024, // 2MB
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return producer, nil
}
