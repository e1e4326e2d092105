package model

import (
	"time"
)

// EventModel 众筹池事件流水，按日志格式保存 ABI 编码后的数据
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventId         string    `json:"event_id" gorm:"uniqueIndex;not null"`
	ContractAddress string    `json:"contract_address" gorm:"not null;index"`
	ContractName    string    `json:"contract_name" gorm:"not null"`
	EventType       string    `json:"event_type" gorm:"not null;index"`
	TxHash          string    `json:"tx_hash" gorm:"not null"`
	Seq             int64     `json:"seq" gorm:"not null"`
	Account         string    `json:"account" gorm:"index"`
	Amount          string    `json:"amount" gorm:"type:numeric(78,0);not null"`
	Stage           string    `json:"stage"`
	Topics          string    `json:"topics" gorm:"type:text"`
	Data            string    `json:"data" gorm:"type:text"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}
