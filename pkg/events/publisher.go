package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ========== 事件类型常量 ==========

const (
	TypeShipmentCreated   = "shipment.created"
	TypeShipmentValidated = "shipment.validated"
	TypeShipmentRejected  = "shipment.rejected"
	TypeShipmentConfirmed = "shipment.confirmed"
	TypeParcelRegistered  = "parcel.registered"
	TypeParcelStatusMoved = "parcel.status_moved"
	TypeParcelDelivered   = "parcel.delivered"
	TypeParcelFailed      = "parcel.failed"
	TypeTenantSuspended   = "tenant.suspended"
	TypeTenantResumed     = "tenant.resumed"
)

// DomainEvent 领域事件 - 每次成功的状态转换后发布恰好一条，携带租户ID
// 投递、重试和消费方的副作用不在本服务范围内
type DomainEvent struct {
	EventID       string                 `json:"event_id"`
	Type          string                 `json:"type"`
	TenantID      uint                   `json:"tenant_id"`
	AggregateType string                 `json:"aggregate_type"` // shipment / parcel / tenant
	AggregateID   uint                   `json:"aggregate_id"`
	ActorID       uint                   `json:"actor_id,omitempty"` // 触发人，系统触发时为0
	Payload       map[string]interface{} `json:"payload,omitempty"`
	OccurredAt    int64                  `json:"occurred_at"`
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// Publisher Redis事件发布器
type Publisher struct {
	client *redis.Client
	prefix string
}

// NewPublisher 创建事件发布器
func NewPublisher(config *Config) *Publisher {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "parcelhub:events"
	}

	return &Publisher{
		client: client,
		prefix: prefix,
	}
}

// Close 关闭Redis连接
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Ping 测试Redis连接
func (p *Publisher) Ping() error {
	ctx := context.Background()
	return p.client.Ping(ctx).Err()
}

// Publish 发布领域事件
// 写入事件流（左侧入队）并推送到租户频道供实时订阅
func (p *Publisher) Publish(ctx context.Context, event *DomainEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt == 0 {
		event.OccurredAt = time.Now().Unix()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %v", err)
	}

	streamKey := p.getStreamKey(event.AggregateType)
	if err := p.client.LPush(ctx, streamKey, data).Err(); err != nil {
		return fmt.Errorf("事件入队失败: %v", err)
	}

	// 推送到租户频道（用于WebSocket实时追踪）
	channelKey := p.getChannelKey(event.TenantID)
	if err := p.client.Publish(ctx, channelKey, data).Err(); err != nil {
		return fmt.Errorf("发布事件失败: %v", err)
	}

	return nil
}

// Subscribe 订阅指定租户的事件频道
func (p *Publisher) Subscribe(ctx context.Context, tenantID uint) *redis.PubSub {
	return p.client.Subscribe(ctx, p.getChannelKey(tenantID))
}

// StreamLength 获取事件流长度
func (p *Publisher) StreamLength(ctx context.Context, aggregateType string) (int64, error) {
	return p.client.LLen(ctx, p.getStreamKey(aggregateType)).Result()
}

// GetClient 获取Redis客户端（用于高级操作）
func (p *Publisher) GetClient() *redis.Client {
	return p.client
}

// 辅助方法

// getStreamKey 获取事件流键名
func (p *Publisher) getStreamKey(aggregateType string) string {
	return fmt.Sprintf("%s:stream:%s", p.prefix, aggregateType)
}

// getChannelKey 获取租户频道键名
func (p *Publisher) getChannelKey(tenantID uint) string {
	return fmt.Sprintf("%s:channel:tenant:%d", p.prefix, tenantID)
}
