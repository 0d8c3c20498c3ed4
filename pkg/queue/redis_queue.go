package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 列表最多保留的事件数，超出部分从尾部裁剪
const defaultMaxEvents = 10000

// RedisQueue 权限变更事件队列
type RedisQueue struct {
	client    *redis.Client
	prefix    string
	maxEvents int64
}

// EventMessage 队列中的事件消息
type EventMessage struct {
	EventID string                 `json:"event_id"`
	Action  string                 `json:"action"`
	Entity  string                 `json:"entity"`
	ActorID uint                   `json:"actor_id"`
	Detail  map[string]interface{} `json:"detail,omitempty"`
	Created int64                  `json:"created"`
}

// Config Redis配置
type Config struct {
	Host      string
	Port      int
	Password  string
	DB        int
	Prefix    string
	MaxEvents int64
}

// NewRedisQueue 创建Redis队列实例
func NewRedisQueue(config *Config) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})
	return newWithClient(client, config.Prefix, config.MaxEvents)
}

// NewRedisQueueWithClient 使用已有客户端创建队列
func NewRedisQueueWithClient(client *redis.Client, prefix string) *RedisQueue {
	return newWithClient(client, prefix, 0)
}

func newWithClient(client *redis.Client, prefix string, maxEvents int64) *RedisQueue {
	if prefix == "" {
		prefix = "bezs:audit"
	}
	if maxEvents <= 0 {
		maxEvents = defaultMaxEvents
	}
	return &RedisQueue{
		client:    client,
		prefix:    prefix,
		maxEvents: maxEvents,
	}
}

// Close 关闭Redis连接
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Ping 测试Redis连接
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Enqueue 事件入队（左侧入队）并发布到频道
func (q *RedisQueue) Enqueue(ctx context.Context, message *EventMessage) error {
	if message.Created == 0 {
		message.Created = time.Now().Unix()
	}

	// 序列化消息
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化事件消息失败: %v", err)
	}

	pipe := q.client.TxPipeline()
	pipe.LPush(ctx, q.eventsKey(), data)
	pipe.LTrim(ctx, q.eventsKey(), 0, q.maxEvents-1)
	pipe.Publish(ctx, q.channelKey(), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("事件入队失败: %v", err)
	}

	return nil
}

// Recent 获取最近的 n 条事件，新事件在前
func (q *RedisQueue) Recent(ctx context.Context, n int64) ([]*EventMessage, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := q.client.LRange(ctx, q.eventsKey(), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("读取事件失败: %v", err)
	}

	events := make([]*EventMessage, 0, len(raw))
	for _, item := range raw {
		var msg EventMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("解析事件失败: %v", err)
		}
		events = append(events, &msg)
	}
	return events, nil
}

// Len 队列长度
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.eventsKey()).Result()
}

// Subscribe 订阅事件频道
func (q *RedisQueue) Subscribe(ctx context.Context) *redis.PubSub {
	return q.client.Subscribe(ctx, q.channelKey())
}

// eventsKey 获取事件列表键名
func (q *RedisQueue) eventsKey() string {
	return fmt.Sprintf("%s:events", q.prefix)
}

// channelKey 获取频道键名
func (q *RedisQueue) channelKey() string {
	return fmt.Sprintf("%s:channel:events", q.prefix)
}
