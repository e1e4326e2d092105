package event

import (
	"context"

	"github.com/blues/smartfunding/internal/funding"
	"github.com/blues/smartfunding/internal/logger"
	"github.com/blues/smartfunding/internal/logic"
)

// StoreProcessor 将事件写入数据库流水
type StoreProcessor struct {
	eventLogic *logic.EventLogic
}

// NewStoreProcessor 创建流水处理器
func NewStoreProcessor(eventLogic *logic.EventLogic) *StoreProcessor {
	return &StoreProcessor{eventLogic: eventLogic}
}

// Process 写入事件
func (p *StoreProcessor) Process(ctx context.Context, evt funding.Event) error {
	return p.eventLogic.SaveEvent(ctx, evt)
}

// GetName 处理器名称
func (p *StoreProcessor) GetName() string {
	return "store"
}

// LogProcessor 将事件写入日志
type LogProcessor struct{}

// Process 记录事件
func (LogProcessor) Process(_ context.Context, evt funding.Event) error {
	amount := "-"
	if evt.Amount != nil {
		amount = evt.Amount.String()
	}
	logger.Info("Event #%d %s account=%s amount=%s stage=%s", evt.Seq, evt.Kind, evt.Account.Hex(), amount, evt.Stage)
	return nil
}

// GetName 处理器名称
func (LogProcessor) GetName() string {
	return "log"
}

// ProcessorFunc 函数形式的处理器
type ProcessorFunc struct {
	Name string
	Fn   func(ctx context.Context, evt funding.Event) error
}

// Process 调用 Fn
func (p ProcessorFunc) Process(ctx context.Context, evt funding.Event) error {
	return p.Fn(ctx, evt)
}

// GetName 处理器名称
func (p ProcessorFunc) GetName() string {
	return p.Name
}
