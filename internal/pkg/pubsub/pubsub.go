package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelCreditEvents = "credit_events"
)

// 事件类型
const (
	EventBalanceChanged = "balance_changed"
	EventRewardGranted  = "reward_granted"
)

// CreditEvent 积分事件，经 Redis 广播后由 WebSocket 推给对应用户
type CreditEvent struct {
	Type       string `json:"type"`
	UserID     int64  `json:"user_id"`
	TxType     string `json:"tx_type"`
	Amount     int64  `json:"amount"`
	NewBalance int64  `json:"new_balance"`
	Notes      string `json:"notes,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishCreditEvent 发布积分事件
func (p *Publisher) PublishCreditEvent(ctx context.Context, msg *CreditEvent) error {
	if msg.Type == "" {
		msg.Type = EventBalanceChanged
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal credit event: %w", err)
	}

	return p.client.Publish(ctx, ChannelCreditEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅积分事件，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*CreditEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelCreditEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event CreditEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
