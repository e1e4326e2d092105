package funding

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Stage 众筹阶段
type Stage uint8

const (
	StageCreated Stage = iota // 已创建，未初始化
	StageFunding              // 募资中
	StageSuccess              // 成功
	StageFailed               // 失败
)

// String 阶段名称
func (s Stage) String() string {
	switch s {
	case StageCreated:
		return "created"
	case StageFunding:
		return "funding"
	case StageSuccess:
		return "success"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsFinal 是否已经结束
func (s Stage) IsFinal() bool {
	return s == StageSuccess || s == StageFailed
}

// Action 需要权限的操作
type Action string

const (
	ActionInitialize Action = "initialize"
	ActionPause      Action = "pause"
	ActionUnpause    Action = "unpause"
	ActionFinalize   Action = "finalize"
	ActionWithdraw   Action = "withdraw"
)

// EventKind 事件类型
type EventKind string

const (
	EventInitialized  EventKind = "Initialized"
	EventInvest       EventKind = "Invest"
	EventClaim        EventKind = "Claim"
	EventRefund       EventKind = "Refund"
	EventStageChanged EventKind = "StageChanged"
	EventPaused       EventKind = "Paused"
	EventUnpaused     EventKind = "Unpaused"
	EventWithdraw     EventKind = "Withdraw"
)

// Event 众筹池对外发出的事件，仅用于观测
type Event struct {
	ID      uuid.UUID
	Seq     uint64
	Kind    EventKind
	Pool    common.Address
	Account common.Address // 投资人、受益人或操作人
	Amount  *big.Int       // Invest/Claim/Refund/Withdraw 的金额，Initialized 的目标金额
	Stage   Stage          // 事件发生后的阶段
	Time    time.Time
}

// ValueTransfer 原生货币转出通道
type ValueTransfer interface {
	Pay(ctx context.Context, to common.Address, amount *big.Int) error
}

// RewardStore 奖励代币余额存储
type RewardStore interface {
	Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error
}

// Authority 权限解析
type Authority interface {
	IsAuthorized(caller common.Address, action Action) bool
}

// AuthorityFunc 函数形式的 Authority
type AuthorityFunc func(caller common.Address, action Action) bool

// IsAuthorized 实现 Authority 接口
func (f AuthorityFunc) IsAuthorized(caller common.Address, action Action) bool {
	return f(caller, action)
}

// EventSink 事件接收端，实现方不得阻塞
type EventSink interface {
	Publish(evt Event)
}

// EventSinkFunc 函数形式的 EventSink
type EventSinkFunc func(evt Event)

// Publish 实现 EventSink 接口
func (f EventSinkFunc) Publish(evt Event) {
	f(evt)
}

type discardSink struct{}

func (discardSink) Publish(Event) {}

// Summary 众筹池快照
type Summary struct {
	Address       common.Address
	RewardToken   common.Address
	Beneficiary   common.Address
	RewardSupply  *big.Int
	Goal          *big.Int
	Deadline      time.Time
	Pool          *big.Int
	Distributed   *big.Int
	Stage         Stage
	Paused        bool
	Withdrawn     bool
	InvestorCount int
}

// Investor 单个投资人的视图
type Investor struct {
	Address common.Address
	Invest  *big.Int
	Reward  *big.Int
	Claimed bool
}
