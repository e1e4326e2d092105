package logic

import (
	"fmt"

	"github.com/blues/smartfunding/internal/model"
	"gorm.io/gorm"
)

// ClaimRecordLogic 奖励领取记录业务逻辑
type ClaimRecordLogic struct {
	db *gorm.DB
}

// NewClaimRecordLogic 创建领取记录业务逻辑
func NewClaimRecordLogic(db *gorm.DB) *ClaimRecordLogic {
	return &ClaimRecordLogic{db: db}
}

// GetClaimRecords 获取领取记录
func (c *ClaimRecordLogic) GetClaimRecords(address string, page, pageSize int) ([]model.ClaimRecordModel, int64, error) {
	var records []model.ClaimRecordModel
	total, err := paginate(c.db, &model.ClaimRecordModel{}, address, page, pageSize, &records)
	if err != nil {
		return nil, 0, fmt.Errorf("获取领取记录失败: %w", err)
	}
	return records, total, nil
}
