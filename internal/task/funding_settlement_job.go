package task

import (
	"context"
	"math/big"
	"time"

	"github.com/blues/smartfunding/internal/funding"
	"github.com/blues/smartfunding/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-co-op/gocron/v2"
)

// Withdrawer 可提取募集资金的众筹池
type Withdrawer interface {
	Summary() funding.Summary
	Withdraw(ctx context.Context, caller common.Address) (*big.Int, error)
}

// FundingSettlementJob 成功后自动把募集资金转给受益人
type FundingSettlementJob struct {
	pool     Withdrawer
	interval time.Duration
	timeout  time.Duration
}

// NewFundingSettlementJob 创建结算转账任务
func NewFundingSettlementJob(pool Withdrawer, interval time.Duration) *FundingSettlementJob {
	return &FundingSettlementJob{
		pool:     pool,
		interval: interval,
		timeout:  30 * time.Second,
	}
}

// GetName 获取任务名称
func (j *FundingSettlementJob) GetName() string {
	return "funding_settlement"
}

// GetSchedule 获取调度配置
func (j *FundingSettlementJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *FundingSettlementJob) Execute() {
	summary := j.pool.Summary()
	if summary.Stage != funding.StageSuccess || summary.Withdrawn || summary.Pool.Sign() == 0 {
		return
	}
	if summary.Beneficiary == (common.Address{}) {
		logger.Warn("Funding succeeded but no beneficiary configured, skipping settlement")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	amount, err := j.pool.Withdraw(ctx, summary.Beneficiary)
	if err != nil {
		logger.Error("Failed to settle funding to %s: %v", summary.Beneficiary.Hex(), err)
		return
	}
	logger.Info("Settled %s to beneficiary %s", amount, summary.Beneficiary.Hex())
}
