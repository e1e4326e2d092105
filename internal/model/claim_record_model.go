package model

import (
	"time"
)

// ClaimRecordModel 奖励领取记录
type ClaimRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PoolAddress  string `json:"pool_address" gorm:"not null;uniqueIndex:idx_claim_pool_address"`
	TokenAddress string `json:"token_address"`
	Address      string `json:"address" gorm:"not null;uniqueIndex:idx_claim_pool_address"`
	Reward       string `json:"reward" gorm:"type:numeric(78,0);not null"`
	TxHash       string `json:"tx_hash" gorm:"uniqueIndex"`
	Seq          int64  `json:"seq"`
}

// TableName 自定义表名
func (ClaimRecordModel) TableName() string {
	return "claim_record"
}
