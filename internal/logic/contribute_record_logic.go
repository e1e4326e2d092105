package logic

import (
	"fmt"

	"github.com/blues/smartfunding/internal/model"
	"gorm.io/gorm"
)

// ContributeRecordLogic 投资记录业务逻辑
type ContributeRecordLogic struct {
	db *gorm.DB
}

// NewContributeRecordLogic 创建投资记录业务逻辑
func NewContributeRecordLogic(db *gorm.DB) *ContributeRecordLogic {
	return &ContributeRecordLogic{db: db}
}

// GetContributeRecords 获取投资记录，address 为空时返回全部
func (c *ContributeRecordLogic) GetContributeRecords(address string, page, pageSize int) ([]model.ContributeRecordModel, int64, error) {
	var records []model.ContributeRecordModel
	total, err := paginate(c.db, &model.ContributeRecordModel{}, address, page, pageSize, &records)
	if err != nil {
		return nil, 0, fmt.Errorf("获取投资记录失败: %w", err)
	}
	return records, total, nil
}

// GetContributeStats 获取投资统计信息
func (c *ContributeRecordLogic) GetContributeStats() (map[string]interface{}, error) {
	var stats struct {
		TotalContributions int64
		TotalAmount        string
		UniqueContributors int64
	}

	if err := c.db.Model(&model.ContributeRecordModel{}).Count(&stats.TotalContributions).Error; err != nil {
		return nil, fmt.Errorf("获取总投资记录数失败: %w", err)
	}

	if err := c.db.Model(&model.ContributeRecordModel{}).Select("COALESCE(SUM(amount), 0)::text").Scan(&stats.TotalAmount).Error; err != nil {
		return nil, fmt.Errorf("获取总投资金额失败: %w", err)
	}

	if err := c.db.Model(&model.ContributeRecordModel{}).Select("COUNT(DISTINCT address)").Scan(&stats.UniqueContributors).Error; err != nil {
		return nil, fmt.Errorf("获取投资人数量失败: %w", err)
	}

	return map[string]interface{}{
		"total_contributions": stats.TotalContributions,
		"total_amount":        stats.TotalAmount,
		"unique_contributors": stats.UniqueContributors,
	}, nil
}

// paginate 按地址过滤的分页查询，返回总数
func paginate(db *gorm.DB, table interface{}, address string, page, pageSize int, dest interface{}) (int64, error) {
	var total int64

	query := db.Model(table)
	if address != "" {
		query = query.Where("address = ?", address)
	}

	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("seq DESC").Offset(offset).Limit(pageSize).Find(dest).Error; err != nil {
		return 0, err
	}

	return total, nil
}
