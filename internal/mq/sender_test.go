package mq

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/require"
)

// 需要真实 Kafka：KAFKA_BROKERS 未设置时跳过
func TestPublishOutcome_RealKafka(t *testing.T) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS 未设置，跳过 Kafka 集成测试")
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":        brokers,
		"acks":                     "all",
		"allow.auto.create.topics": true,
	})
	require.NoError(t, err)
	defer producer.Close()

	sender := NewOutcomeSender(producer, "sweeper-outcome-test", 10*time.Second)
	err = sender.PublishOutcome(context.Background(), OutcomeEvent{
		Wallet:       "test-wallet",
		BatchIndex:   1,
		BatchTotal:   1,
		Instructions: 2,
		Signature:    "sig-1",
		Timestamp:    time.Now().Unix(),
	})
	require.NoError(t, err)
}

// 发送超时必须返回 error 而不是挂死
func TestPublishOutcome_Timeout(t *testing.T) {
	// 指向不存在的 broker，delivery 永远不会到达
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": "127.0.0.1:1",
	})
	require.NoError(t, err)
	defer producer.Close()

	start := time.Now()
	err = PublishOutcome(context.Background(), producer, "sweeper-outcome-test",
		OutcomeEvent{Wallet: "w"}, 200*time.Millisecond)
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}
