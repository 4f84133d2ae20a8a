package database

import (
	"sync"

	"parcelhub/pkg/config"
	"parcelhub/pkg/events"
)

var (
	publisherInstance *events.Publisher
	publisherOnce     sync.Once
)

// GetEventPublisher 获取事件发布器的单例实例
func GetEventPublisher() *events.Publisher {
	publisherOnce.Do(func() {
		cfg := config.GetConfig()
		publisherInstance = events.NewPublisher(&events.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	})
	return publisherInstance
}

// CloseEventPublisher 关闭Redis连接
func CloseEventPublisher() error {
	if publisherInstance != nil {
		return publisherInstance.Close()
	}
	return nil
}
