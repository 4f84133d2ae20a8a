package services

import (
	"context"
	"fmt"

	"parcelhub/pkg/config"
	"parcelhub/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ShipmentExpiryScheduler 超期待审运单清理调度器
// 定时把超过最大等待天数的待审运单批量驳回
type ShipmentExpiryScheduler struct {
	shipmentService *ShipmentService
	cron            *cron.Cron
	entryID         cron.EntryID
	running         bool
}

// NewShipmentExpiryScheduler 创建超期清理调度器
func NewShipmentExpiryScheduler(shipmentService *ShipmentService) *ShipmentExpiryScheduler {
	return &ShipmentExpiryScheduler{
		shipmentService: shipmentService,
		cron:            cron.New(),
	}
}

// Start 启动调度器
func (s *ShipmentExpiryScheduler) Start() error {
	if s.running {
		return fmt.Errorf("调度器已经在运行")
	}

	cfg := config.GetConfig().Shipment
	logger.GetLogger().Infof("启动超期待审运单清理调度器，cron: %s，最大等待天数: %d",
		cfg.PendingExpiryCron, cfg.PendingMaxAgeDays)

	entryID, err := s.cron.AddFunc(cfg.PendingExpiryCron, s.runOnce)
	if err != nil {
		return fmt.Errorf("添加定时任务失败: %v", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.running = true
	return nil
}

// Stop 停止调度器
func (s *ShipmentExpiryScheduler) Stop() {
	if !s.running {
		return
	}

	logger.GetLogger().Info("停止超期待审运单清理调度器")
	s.cron.Stop()
	s.running = false
}

// runOnce 执行一轮清理
func (s *ShipmentExpiryScheduler) runOnce() {
	cfg := config.GetConfig().Shipment
	ctx := context.Background()

	count, err := s.shipmentService.RejectExpiredPending(ctx, cfg.PendingMaxAgeDays)
	if err != nil {
		logger.GetLogger().Errorf("清理超期待审运单失败: %v", err)
		return
	}
	if count > 0 {
		logger.GetLogger().Infof("已驳回 %d 个超期待审运单", count)
	}
}
