package main

import (
	"fmt"
	"os"

	"parcelhub/internal/database"
	"parcelhub/internal/identity"
	"parcelhub/internal/models"
	"parcelhub/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 创建预定义角色
	if err := createPredefinedRoles(db); err != nil {
		return fmt.Errorf("创建预定义角色失败: %v", err)
	}

	// 2. 创建默认平台管理员
	if err := createDefaultAdmin(db); err != nil {
		return fmt.Errorf("创建默认管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createPredefinedRoles 创建各作用域的预定义角色
func createPredefinedRoles(db *gorm.DB) error {
	predefined := []models.Role{
		{Code: models.RoleCodePlatformAdmin, Name: "平台超级管理员", Scope: models.RoleScopePlatform, Description: "平台级全部操作"},
		{Code: models.RoleCodeTenantAdmin, Name: "租户管理员", Scope: models.RoleScopeTenant, Description: "管理本租户的员工、网点和发货单"},
		{Code: models.RoleCodeDispatcher, Name: "调度员", Scope: models.RoleScopeTenant, Description: "推进包裹流转状态"},
		{Code: models.RoleCodeCourier, Name: "快递员", Scope: models.RoleScopeTenant, Description: "登记投递结果"},
		{Code: models.RoleCodeCustomer, Name: "客户", Scope: models.RoleScopeCustomer, Description: "客户自助下单与查询"},
	}

	for _, role := range predefined {
		var count int64
		db.Model(&models.Role{}).Where("code = ?", role.Code).Count(&count)
		if count == 0 {
			role.Status = models.RoleStatusActive
			if err := db.Create(&role).Error; err != nil {
				return err
			}
			logger.GetLogger().Infof("预定义角色 %s 创建成功", role.Code)
		}
	}
	return nil
}

// createDefaultAdmin 创建默认平台管理员
func createDefaultAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("默认管理员已存在，跳过创建")
		return nil
	}

	admin := &models.User{
		Username:  "admin",
		Email:     "admin@parcelhub.local",
		Name:      "平台管理员",
		ActorKind: identity.KindPlatformAdmin,
		Status:    models.UserStatusActive,
	}

	password := os.Getenv("ADMIN_INITIAL_PASSWORD")
	if password == "" {
		password = "Admin@123456"
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	// 绑定平台管理员角色
	var role models.Role
	if err := db.Where("code = ?", models.RoleCodePlatformAdmin).First(&role).Error; err != nil {
		return err
	}
	userRole := &models.UserRole{
		UserID: admin.ID,
		RoleID: role.ID,
	}
	if err := db.Create(userRole).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("默认管理员创建成功 (username: admin)")
	return nil
}
