package model

import (
	"time"
)

// RefundRecordModel 退款记录
type RefundRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PoolAddress string `json:"pool_address" gorm:"not null;index"`
	Address     string `json:"address" gorm:"not null;index"`
	Amount      string `json:"amount" gorm:"type:numeric(78,0);not null"`
	TxHash      string `json:"tx_hash" gorm:"uniqueIndex"`
	Seq         int64  `json:"seq"`
}

// TableName 自定义表名
func (RefundRecordModel) TableName() string {
	return "refund_record"
}
