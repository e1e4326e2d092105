package logic

import (
	"fmt"

	"github.com/blues/smartfunding/internal/model"
	"gorm.io/gorm"
)

// RefundRecordLogic 退款记录业务逻辑
type RefundRecordLogic struct {
	db *gorm.DB
}

// NewRefundRecordLogic 创建退款记录业务逻辑
func NewRefundRecordLogic(db *gorm.DB) *RefundRecordLogic {
	return &RefundRecordLogic{db: db}
}

// GetRefundRecords 获取退款记录
func (r *RefundRecordLogic) GetRefundRecords(address string, page, pageSize int) ([]model.RefundRecordModel, int64, error) {
	var records []model.RefundRecordModel
	total, err := paginate(r.db, &model.RefundRecordModel{}, address, page, pageSize, &records)
	if err != nil {
		return nil, 0, fmt.Errorf("获取退款记录失败: %w", err)
	}
	return records, total, nil
}

// GetRefundStats 获取退款统计信息
func (r *RefundRecordLogic) GetRefundStats() (map[string]interface{}, error) {
	var totalRefunds int64
	var totalAmount string

	if err := r.db.Model(&model.RefundRecordModel{}).Count(&totalRefunds).Error; err != nil {
		return nil, fmt.Errorf("获取总退款记录数失败: %w", err)
	}

	if err := r.db.Model(&model.RefundRecordModel{}).Select("COALESCE(SUM(amount), 0)::text").Scan(&totalAmount).Error; err != nil {
		return nil, fmt.Errorf("获取总退款金额失败: %w", err)
	}

	return map[string]interface{}{
		"total_refunds": totalRefunds,
		"total_amount":  totalAmount,
	}, nil
}
