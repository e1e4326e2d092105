package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blues/smartfunding/internal/chain"
	"github.com/blues/smartfunding/internal/funding"
	"github.com/blues/smartfunding/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"gorm.io/gorm"
)

// EventLogic 事件流水业务逻辑
type EventLogic struct {
	db       *gorm.DB
	contract *chain.Contract
}

// NewEventLogic 创建事件流水业务逻辑
func NewEventLogic(db *gorm.DB, contract *chain.Contract) *EventLogic {
	return &EventLogic{db: db, contract: contract}
}

// SaveEvent 在同一个事务中写入事件流水和对应的业务记录
func (e *EventLogic) SaveEvent(ctx context.Context, evt funding.Event) error {
	log, err := e.contract.EncodeEvent(evt)
	if err != nil {
		return err
	}

	topics, err := json.Marshal(log.Topics)
	if err != nil {
		return fmt.Errorf("编码事件主题失败: %w", err)
	}

	event := &model.EventModel{
		EventId:         evt.ID.String(),
		ContractAddress: e.contract.GetAddress().Hex(),
		ContractName:    e.contract.GetName(),
		EventType:       string(evt.Kind),
		TxHash:          log.TxHash.Hex(),
		Seq:             int64(evt.Seq),
		Account:         evt.Account.Hex(),
		Amount:          amountString(evt),
		Stage:           evt.Stage.String(),
		Topics:          string(topics),
		Data:            hexutil.Encode(log.Data),
		OccurredAt:      evt.Time,
	}

	tx := e.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("创建事件记录失败: %w", err)
	}

	if record := e.recordFor(evt, event); record != nil {
		if err := tx.Create(record).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("创建%s记录失败: %w", evt.Kind, err)
		}
	}

	return tx.Commit().Error
}

// recordFor 事件对应的业务记录，没有对应记录时返回 nil
func (e *EventLogic) recordFor(evt funding.Event, event *model.EventModel) interface{} {
	pool := event.ContractAddress
	switch evt.Kind {
	case funding.EventInvest:
		return &model.ContributeRecordModel{
			PoolAddress: pool,
			Address:     event.Account,
			Amount:      event.Amount,
			TxHash:      event.TxHash,
			Seq:         event.Seq,
		}
	case funding.EventClaim:
		return &model.ClaimRecordModel{
			PoolAddress: pool,
			Address:     event.Account,
			Reward:      event.Amount,
			TxHash:      event.TxHash,
			Seq:         event.Seq,
		}
	case funding.EventRefund:
		return &model.RefundRecordModel{
			PoolAddress: pool,
			Address:     event.Account,
			Amount:      event.Amount,
			TxHash:      event.TxHash,
			Seq:         event.Seq,
		}
	case funding.EventStageChanged, funding.EventWithdraw:
		settlementType := model.SettlementTypeWithdraw
		if evt.Kind == funding.EventStageChanged {
			settlementType = model.SettlementTypeFailed
			if evt.Stage == funding.StageSuccess {
				settlementType = model.SettlementTypeSuccess
			}
		}
		return &model.SettlementRecordModel{
			PoolAddress:    pool,
			SettlementType: string(settlementType),
			Operator:       event.Account,
			Amount:         event.Amount,
			TxHash:         event.TxHash,
			Seq:            event.Seq,
			SettlementTime: evt.Time,
		}
	}
	return nil
}

func amountString(evt funding.Event) string {
	if evt.Amount == nil {
		return "0"
	}
	return evt.Amount.String()
}

// GetEvents 获取事件列表，eventType 为空时返回全部
func (e *EventLogic) GetEvents(eventType string, page, pageSize int) ([]model.EventModel, int64, error) {
	var events []model.EventModel
	var total int64

	query := e.db.Model(&model.EventModel{})
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事件总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("seq DESC").Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事件列表失败: %w", err)
	}

	return events, total, nil
}

// GetEventByTxHash 根据交易哈希获取事件
func (e *EventLogic) GetEventByTxHash(txHash string) (*model.EventModel, error) {
	var event model.EventModel
	if err := e.db.Where("tx_hash = ?", txHash).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("事件不存在")
		}
		return nil, fmt.Errorf("获取事件失败: %w", err)
	}

	return &event, nil
}

// DecodeEvent 从流水记录中的 ABI 数据还原事件
func (e *EventLogic) DecodeEvent(event *model.EventModel) (funding.Event, error) {
	var topics []common.Hash
	if err := json.Unmarshal([]byte(event.Topics), &topics); err != nil {
		return funding.Event{}, fmt.Errorf("解析事件主题失败: %w", err)
	}
	data, err := hexutil.Decode(event.Data)
	if err != nil {
		return funding.Event{}, fmt.Errorf("解析事件数据失败: %w", err)
	}

	decoded, err := e.contract.DecodeEvent(types.Log{
		Address: common.HexToAddress(event.ContractAddress),
		Topics:  topics,
		Data:    data,
		TxHash:  common.HexToHash(event.TxHash),
		Index:   uint(event.Seq),
	})
	if err != nil {
		return funding.Event{}, err
	}
	decoded.Time = event.OccurredAt
	return decoded, nil
}

// GetSettlementRecords 获取结算记录
func (e *EventLogic) GetSettlementRecords() ([]model.SettlementRecordModel, error) {
	var records []model.SettlementRecordModel
	if err := e.db.Order("seq ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("获取结算记录失败: %w", err)
	}
	return records, nil
}

// GetEventStatistics 按事件类型统计数量
func (e *EventLogic) GetEventStatistics() (map[string]int64, error) {
	var rows []struct {
		EventType string
		Count     int64
	}
	if err := e.db.Model(&model.EventModel{}).
		Select("event_type, COUNT(*) AS count").
		Group("event_type").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("获取事件统计失败: %w", err)
	}

	stats := make(map[string]int64, len(rows))
	for _, row := range rows {
		stats[row.EventType] = row.Count
	}
	return stats, nil
}
