package model

import (
	"time"
)

// SettlementRecordModel 结算记录：阶段结算和受益人提取
type SettlementRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PoolAddress    string    `json:"pool_address" gorm:"not null;index"`
	SettlementType string    `json:"settlement_type" gorm:"not null"` // success, failed, withdraw
	Operator       string    `json:"operator"`
	Amount         string    `json:"amount" gorm:"type:numeric(78,0);not null"`
	TxHash         string    `json:"tx_hash" gorm:"uniqueIndex"`
	Seq            int64     `json:"seq"`
	SettlementTime time.Time `json:"settlement_time"`
}

// SettlementType 结算类型
type SettlementType string

const (
	SettlementTypeSuccess  SettlementType = "success"  // 募资成功
	SettlementTypeFailed   SettlementType = "failed"   // 募资失败
	SettlementTypeWithdraw SettlementType = "withdraw" // 受益人提取
)

// TableName 自定义表名
func (SettlementRecordModel) TableName() string {
	return "settlement_record"
}
