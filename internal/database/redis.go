package database

import (
	"bezs/pkg/config"
	"bezs/pkg/queue"
	"sync"
)

var (
	redisQueueInstance *queue.RedisQueue
	redisQueueOnce     sync.Once
)

// GetRedisQueue 获取审计事件队列的单例实例，未启用Redis时返回nil
func GetRedisQueue() *queue.RedisQueue {
	cfg := config.GetConfig()
	if !cfg.Redis.Enabled {
		return nil
	}
	redisQueueOnce.Do(func() {
		redisQueueInstance = queue.NewRedisQueue(&queue.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	})
	return redisQueueInstance
}

// CloseRedisQueue 关闭Redis连接
func CloseRedisQueue() error {
	if redisQueueInstance != nil {
		return redisQueueInstance.Close()
	}
	return nil
}
