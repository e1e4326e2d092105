// Package funding 实现单轮众筹池的记账逻辑：投资、奖励计算、阶段结算、领取奖励与退款。
package funding

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// DefaultUnit 默认的募资时长单位（天）
const DefaultUnit = 24 * time.Hour

// Options 众筹池构造参数
type Options struct {
	Address      common.Address // 众筹池自身账户，同时是奖励代币的储备账户
	RewardToken  common.Address
	Beneficiary  common.Address // 可为空
	RewardSupply *big.Int
	Unit         time.Duration

	Native    ValueTransfer
	Rewards   RewardStore
	Authority Authority
	Sink      EventSink
	Now       func() time.Time
}

// Pool 众筹池
type Pool struct {
	mu sync.Mutex

	address      common.Address
	rewardToken  common.Address
	beneficiary  common.Address
	rewardSupply *big.Int
	unit         time.Duration

	goal          *big.Int
	deadline      time.Time
	balance       *big.Int
	contributions map[common.Address]*big.Int
	claimed       map[common.Address]bool
	distributed   *big.Int // 已发放的奖励
	stage         Stage
	paused        bool
	withdrawn     bool
	seq           uint64

	native    ValueTransfer
	rewards   RewardStore
	authority Authority
	sink      EventSink
	now       func() time.Time
}

// New 创建众筹池
func New(opts Options) (*Pool, error) {
	if opts.RewardSupply == nil || opts.RewardSupply.Sign() <= 0 {
		return nil, fmt.Errorf("%w: reward supply must be positive", ErrInvalidParameter)
	}
	if opts.Native == nil || opts.Rewards == nil || opts.Authority == nil {
		return nil, fmt.Errorf("%w: native, rewards and authority are required", ErrInvalidParameter)
	}
	if opts.Unit <= 0 {
		opts.Unit = DefaultUnit
	}
	if opts.Sink == nil {
		opts.Sink = discardSink{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Pool{
		address:       opts.Address,
		rewardToken:   opts.RewardToken,
		beneficiary:   opts.Beneficiary,
		rewardSupply:  new(big.Int).Set(opts.RewardSupply),
		unit:          opts.Unit,
		goal:          new(big.Int),
		balance:       new(big.Int),
		contributions: make(map[common.Address]*big.Int),
		claimed:       make(map[common.Address]bool),
		distributed:   new(big.Int),
		stage:         StageCreated,
		native:        opts.Native,
		rewards:       opts.Rewards,
		authority:     opts.Authority,
		sink:          opts.Sink,
		now:           opts.Now,
	}, nil
}

// Initialize 设置目标金额和截止时间，进入募资阶段，只能执行一次
func (p *Pool) Initialize(caller common.Address, goal *big.Int, durationUnits int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.authority.IsAuthorized(caller, ActionInitialize) {
		return fmt.Errorf("initialize: %w", ErrUnauthorized)
	}
	if p.stage != StageCreated {
		return fmt.Errorf("initialize: %w", ErrAlreadyInitialized)
	}
	if goal == nil || goal.Sign() <= 0 {
		return fmt.Errorf("initialize: %w: goal must be positive", ErrInvalidParameter)
	}
	if durationUnits <= 0 {
		return fmt.Errorf("initialize: %w: duration must be positive", ErrInvalidParameter)
	}
	window := time.Duration(durationUnits) * p.unit
	if window/p.unit != time.Duration(durationUnits) {
		return fmt.Errorf("initialize: %w: duration overflows", ErrInvalidParameter)
	}

	now := p.now()
	p.goal = new(big.Int).Set(goal)
	p.deadline = now.Add(window)
	p.stage = StageFunding

	p.emit(EventInitialized, caller, p.goal, now)
	return nil
}

// Invest 记录一笔投资，资金在调用前已经到账
func (p *Pool) Invest(caller common.Address, amount *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("invest: %w", ErrInvalidAmount)
	}
	if p.stage != StageFunding {
		return fmt.Errorf("invest: %w", ErrNotFundingStage)
	}
	if p.paused {
		return fmt.Errorf("invest: %w", ErrPaused)
	}
	now := p.now()
	if !now.Before(p.deadline) {
		return fmt.Errorf("invest: %w", ErrFundingClosed)
	}

	current, ok := p.contributions[caller]
	if !ok {
		current = new(big.Int)
		p.contributions[caller] = current
	}
	current.Add(current, amount)
	p.balance.Add(p.balance, amount)

	p.emit(EventInvest, caller, amount, now)
	return nil
}

// CalculateReward 按目标金额等比例计算奖励，结果不超过奖励总量
func (p *Pool) CalculateReward(amount *big.Int) *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calculateReward(amount)
}

func (p *Pool) calculateReward(amount *big.Int) *big.Int {
	return CalculateReward(amount, p.rewardSupply, p.goal)
}

// CalculateReward reward = amount * supply / goal，向零截断，上限为 supply
func CalculateReward(amount, supply, goal *big.Int) *big.Int {
	if amount == nil || amount.Sign() <= 0 || goal == nil || goal.Sign() <= 0 || supply == nil || supply.Sign() <= 0 {
		return new(big.Int)
	}
	reward := new(big.Int).Mul(amount, supply)
	reward.Quo(reward, goal)
	if reward.Cmp(supply) > 0 {
		reward.Set(supply)
	}
	return reward
}

// Finalize 结算阶段：达到目标为成功，否则失败。截止前只有授权方可以强制结算
func (p *Pool) Finalize(caller common.Address) (Stage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.stage == StageCreated:
		return p.stage, fmt.Errorf("finalize: %w", ErrNotFundingStage)
	case p.stage.IsFinal():
		return p.stage, fmt.Errorf("finalize: %w", ErrAlreadyFinalized)
	}

	now := p.now()
	if now.Before(p.deadline) && !p.authority.IsAuthorized(caller, ActionFinalize) {
		return p.stage, fmt.Errorf("finalize before deadline: %w", ErrUnauthorized)
	}

	if p.balance.Cmp(p.goal) >= 0 {
		p.stage = StageSuccess
	} else {
		p.stage = StageFailed
	}

	p.emit(EventStageChanged, caller, nil, now)
	return p.stage, nil
}

// Claim 领取奖励。转账失败时不会标记为已领取
func (p *Pool) Claim(ctx context.Context, caller common.Address) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stage != StageSuccess {
		return nil, fmt.Errorf("claim: %w", ErrNotSuccessStage)
	}
	if p.claimed[caller] {
		return nil, fmt.Errorf("claim: %w", ErrAlreadyClaimed)
	}
	reward := p.rewardOf(caller)
	if reward.Sign() == 0 {
		return nil, fmt.Errorf("claim: %w", ErrNoReward)
	}

	if err := p.rewards.Transfer(ctx, p.address, caller, reward); err != nil {
		return nil, fmt.Errorf("claim: %w: %v", ErrTransferFailed, err)
	}
	p.claimed[caller] = true
	p.distributed.Add(p.distributed, reward)

	p.emit(EventClaim, caller, reward, p.now())
	return new(big.Int).Set(reward), nil
}

// Refund 退还投资。退款后投资记录清零，因此不能重复退款
func (p *Pool) Refund(ctx context.Context, caller common.Address) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stage != StageFailed {
		return nil, fmt.Errorf("refund: %w", ErrNotFailedStage)
	}
	amount := p.contributions[caller]
	if amount == nil || amount.Sign() == 0 {
		return nil, fmt.Errorf("refund: %w", ErrNoInvestment)
	}
	refund := new(big.Int).Set(amount)

	if err := p.native.Pay(ctx, caller, refund); err != nil {
		return nil, fmt.Errorf("refund: %w: %v", ErrTransferFailed, err)
	}
	p.contributions[caller] = new(big.Int)
	p.balance.Sub(p.balance, refund)

	p.emit(EventRefund, caller, refund, p.now())
	return refund, nil
}

// Withdraw 成功后将募集资金转给受益人，只能执行一次
func (p *Pool) Withdraw(ctx context.Context, caller common.Address) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stage != StageSuccess {
		return nil, fmt.Errorf("withdraw: %w", ErrNotSucceeded)
	}
	if caller != p.beneficiary && !p.authority.IsAuthorized(caller, ActionWithdraw) {
		return nil, fmt.Errorf("withdraw: %w", ErrUnauthorized)
	}
	if p.beneficiary == (common.Address{}) {
		return nil, fmt.Errorf("withdraw: %w: no beneficiary configured", ErrInvalidParameter)
	}
	if p.withdrawn {
		return nil, fmt.Errorf("withdraw: %w", ErrAlreadyWithdrawn)
	}
	if p.balance.Sign() == 0 {
		return nil, fmt.Errorf("withdraw: %w", ErrNothingToWithdraw)
	}
	amount := new(big.Int).Set(p.balance)

	if err := p.native.Pay(ctx, p.beneficiary, amount); err != nil {
		return nil, fmt.Errorf("withdraw: %w: %v", ErrTransferFailed, err)
	}
	p.balance.SetInt64(0)
	p.withdrawn = true

	p.emit(EventWithdraw, p.beneficiary, amount, p.now())
	return amount, nil
}

// Pause 暂停投资
func (p *Pool) Pause(caller common.Address) error {
	return p.setPaused(caller, true)
}

// Unpause 恢复投资
func (p *Pool) Unpause(caller common.Address) error {
	return p.setPaused(caller, false)
}

func (p *Pool) setPaused(caller common.Address, paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	action, kind := ActionPause, EventPaused
	if !paused {
		action, kind = ActionUnpause, EventUnpaused
	}
	if !p.authority.IsAuthorized(caller, action) {
		return fmt.Errorf("%s: %w", action, ErrUnauthorized)
	}
	if p.paused == paused {
		return nil
	}
	p.paused = paused

	p.emit(kind, caller, nil, p.now())
	return nil
}

// InvestOf 查询投资金额
func (p *Pool) InvestOf(addr common.Address) *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.investOf(addr)
}

func (p *Pool) investOf(addr common.Address) *big.Int {
	if amount, ok := p.contributions[addr]; ok {
		return new(big.Int).Set(amount)
	}
	return new(big.Int)
}

// RewardOf 查询可领取奖励，已领取返回 0
func (p *Pool) RewardOf(addr common.Address) *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rewardOf(addr)
}

// rewardOf 超额募资时按领取顺序发放，发完剩余奖励为止
func (p *Pool) rewardOf(addr common.Address) *big.Int {
	if p.claimed[addr] {
		return new(big.Int)
	}
	reward := p.calculateReward(p.contributions[addr])
	remaining := new(big.Int).Sub(p.rewardSupply, p.distributed)
	if reward.Cmp(remaining) > 0 {
		reward.Set(remaining)
	}
	return reward
}

// Claimed 是否已领取奖励
func (p *Pool) Claimed(addr common.Address) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.claimed[addr]
}

// Investor 投资人视图
func (p *Pool) Investor(addr common.Address) Investor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Investor{
		Address: addr,
		Invest:  p.investOf(addr),
		Reward:  p.rewardOf(addr),
		Claimed: p.claimed[addr],
	}
}

// Stage 当前阶段
func (p *Pool) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// Summary 众筹池快照
func (p *Pool) Summary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()

	investors := 0
	for _, amount := range p.contributions {
		if amount.Sign() > 0 {
			investors++
		}
	}

	return Summary{
		Address:       p.address,
		RewardToken:   p.rewardToken,
		Beneficiary:   p.beneficiary,
		RewardSupply:  new(big.Int).Set(p.rewardSupply),
		Goal:          new(big.Int).Set(p.goal),
		Deadline:      p.deadline,
		Pool:          new(big.Int).Set(p.balance),
		Distributed:   new(big.Int).Set(p.distributed),
		Stage:         p.stage,
		Paused:        p.paused,
		Withdrawn:     p.withdrawn,
		InvestorCount: investors,
	}
}

// emit 必须在持有锁时调用，保证事件序号与提交顺序一致
func (p *Pool) emit(kind EventKind, account common.Address, amount *big.Int, at time.Time) {
	p.seq++
	evt := Event{
		ID:      uuid.New(),
		Seq:     p.seq,
		Kind:    kind,
		Pool:    p.address,
		Account: account,
		Stage:   p.stage,
		Time:    at,
	}
	if amount != nil {
		evt.Amount = new(big.Int).Set(amount)
	}
	p.sink.Publish(evt)
}
