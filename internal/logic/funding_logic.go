package logic

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/blues/smartfunding/internal/funding"
	"github.com/blues/smartfunding/internal/ledger"
	"github.com/blues/smartfunding/internal/logger"
	"github.com/blues/smartfunding/internal/metrics"
	"github.com/ethereum/go-ethereum/common"
)

// FundingLogic 众筹池业务逻辑：资金划转、指标和日志
type FundingLogic struct {
	pool    *funding.Pool
	native  *ledger.Ledger
	rewards *ledger.Ledger
	address common.Address
}

// NewFundingLogic 创建众筹池业务逻辑
func NewFundingLogic(pool *funding.Pool, native, rewards *ledger.Ledger) *FundingLogic {
	return &FundingLogic{
		pool:    pool,
		native:  native,
		rewards: rewards,
		address: pool.Summary().Address,
	}
}

// Balances 账户在原生账本和奖励账本中的余额
type Balances struct {
	Native *big.Int
	Reward *big.Int
}

// Initialize 初始化众筹
func (f *FundingLogic) Initialize(caller common.Address, goal *big.Int, durationUnits int64) (err error) {
	defer f.observe("initialize", time.Now(), &err)

	if err = f.pool.Initialize(caller, goal, durationUnits); err != nil {
		logger.Warn("Failed to initialize pool by %s: %v", caller.Hex(), err)
		return err
	}
	logger.Info("Pool initialized by %s, goal=%s, duration=%d", caller.Hex(), goal, durationUnits)
	return nil
}

// Invest 先将资金转入众筹池账户再记账，记账失败时原路退回
func (f *FundingLogic) Invest(ctx context.Context, caller common.Address, amount *big.Int) (err error) {
	defer f.observe("invest", time.Now(), &err)

	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("invest: %w", funding.ErrInvalidAmount)
	}

	if err = f.native.Transfer(ctx, caller, f.address, amount); err != nil {
		logger.Warn("Failed to move %s from %s into pool: %v", amount, caller.Hex(), err)
		return fmt.Errorf("invest: %w", err)
	}

	if err = f.pool.Invest(caller, amount); err != nil {
		if compErr := f.native.Transfer(context.WithoutCancel(ctx), f.address, caller, amount); compErr != nil {
			logger.Error("Failed to return %s to %s after rejected invest: %v", amount, caller.Hex(), compErr)
		}
		logger.Warn("Invest of %s by %s rejected: %v", amount, caller.Hex(), err)
		return err
	}

	logger.Info("Invest %s from %s", amount, caller.Hex())
	return nil
}

// Finalize 结算众筹
func (f *FundingLogic) Finalize(caller common.Address) (stage funding.Stage, err error) {
	defer f.observe("finalize", time.Now(), &err)

	stage, err = f.pool.Finalize(caller)
	if err != nil {
		logger.Warn("Failed to finalize pool by %s: %v", caller.Hex(), err)
		return stage, err
	}
	logger.Info("Pool finalized by %s, stage=%s", caller.Hex(), stage)
	return stage, nil
}

// Claim 领取奖励
func (f *FundingLogic) Claim(ctx context.Context, caller common.Address) (reward *big.Int, err error) {
	defer f.observe("claim", time.Now(), &err)

	reward, err = f.pool.Claim(ctx, caller)
	if err != nil {
		logger.Warn("Claim by %s failed: %v", caller.Hex(), err)
		return nil, err
	}
	logger.Info("Claim %s reward by %s", reward, caller.Hex())
	return reward, nil
}

// Refund 退款
func (f *FundingLogic) Refund(ctx context.Context, caller common.Address) (amount *big.Int, err error) {
	defer f.observe("refund", time.Now(), &err)

	amount, err = f.pool.Refund(ctx, caller)
	if err != nil {
		logger.Warn("Refund by %s failed: %v", caller.Hex(), err)
		return nil, err
	}
	logger.Info("Refund %s to %s", amount, caller.Hex())
	return amount, nil
}

// Withdraw 受益人提取募集资金
func (f *FundingLogic) Withdraw(ctx context.Context, caller common.Address) (amount *big.Int, err error) {
	defer f.observe("withdraw", time.Now(), &err)

	amount, err = f.pool.Withdraw(ctx, caller)
	if err != nil {
		logger.Warn("Withdraw by %s failed: %v", caller.Hex(), err)
		return nil, err
	}
	logger.Info("Withdraw %s to beneficiary by %s", amount, caller.Hex())
	return amount, nil
}

// Pause 暂停投资
func (f *FundingLogic) Pause(caller common.Address) (err error) {
	defer f.observe("pause", time.Now(), &err)

	if err = f.pool.Pause(caller); err != nil {
		logger.Warn("Pause by %s failed: %v", caller.Hex(), err)
		return err
	}
	logger.Info("Pool paused by %s", caller.Hex())
	return nil
}

// Unpause 恢复投资
func (f *FundingLogic) Unpause(caller common.Address) (err error) {
	defer f.observe("unpause", time.Now(), &err)

	if err = f.pool.Unpause(caller); err != nil {
		logger.Warn("Unpause by %s failed: %v", caller.Hex(), err)
		return err
	}
	logger.Info("Pool unpaused by %s", caller.Hex())
	return nil
}

// Summary 众筹池快照
func (f *FundingLogic) Summary() funding.Summary {
	return f.pool.Summary()
}

// Investor 投资人视图
func (f *FundingLogic) Investor(addr common.Address) funding.Investor {
	return f.pool.Investor(addr)
}

// CalculateReward 按当前目标计算奖励
func (f *FundingLogic) CalculateReward(amount *big.Int) *big.Int {
	return f.pool.CalculateReward(amount)
}

// Balances 查询账户余额
func (f *FundingLogic) Balances(addr common.Address) Balances {
	return Balances{
		Native: f.native.BalanceOf(addr),
		Reward: f.rewards.BalanceOf(addr),
	}
}

func (f *FundingLogic) observe(operation string, start time.Time, err *error) {
	metrics.RecordOperation(operation, start, *err)
	if *err == nil {
		metrics.ObservePool(f.pool.Summary())
	}
}
