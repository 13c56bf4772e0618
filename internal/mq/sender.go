package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// OutcomeEvent 表示单个批次的最终结果。
// 运行日志之外的审计渠道：链本身才是事实来源，事件只做旁路记录。
type OutcomeEvent struct {
	Wallet       string `json:"wallet"`
	BatchIndex   int    `json:"batch_index"`  // 从 1 开始
	BatchTotal   int    `json:"batch_total"`  // 本轮批次总数
	Instructions int    `json:"instructions"` // 本批指令数（不含 compute 预算前缀）
	Signature    string `json:"signature"`    // 确认成功时的交易签名
	Error        string `json:"error"`        // 失败时的错误描述
	Timestamp    int64  `json:"timestamp"`    // Unix 秒
}

// OutcomeSender 把 producer + topic + 发送超时绑定成一个可注入的发送端
type OutcomeSender struct {
	producer *kafka.Producer
	topic    string
	timeout  time.Duration
}

func NewOutcomeSender(producer *kafka.Producer, topic string, timeout time.Duration) *OutcomeSender {
	return &OutcomeSender{
		producer: producer,
		topic:    topic,
		timeout:  timeout,
	}
}

func (s *OutcomeSender) PublishOutcome(ctx context.Context, event OutcomeEvent) error {
	return PublishOutcome(ctx, s.producer, s.topic, event, s.timeout)
}

// PublishOutcome 发送一条结果事件并等待 ack。
// 固定写 0 号分区：批次结果必须与提交顺序一致。
func PublishOutcome(ctx context.Context, producer *kafka.Producer, topic string,
	event OutcomeEvent, timeout time.Duration) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal outcome event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: 0,
		},
		Value: value,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce error: %w", err)
	}

	select {
	case e, ok := <-deliveryChan:
		if !ok {
			return fmt.Errorf("delivery channel closed unexpectedly")
		}
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("invalid message type: %T", e)
		}
		if msg.TopicPartition.Error != nil {
			return msg.TopicPartition.Error
		}
		return nil
	case <-time.After(timeout):
		go safeDrain(deliveryChan)
		return fmt.Errorf("delivery timeout (>%v)", timeout)
	case <-ctx.Done():
		go safeDrain(deliveryChan)
		return fmt.Errorf("ctx cancelled: %w", ctx.Err())
	}
}

// safeDrain 在超时/取消后后台读掉 delivery 事件，避免 channel 泄漏
func safeDrain(ch chan kafka.Event) {
	select {
	case <-ch:
	case <-time.After(30 * time.Second):
	}
}
