package task

import (
	"errors"
	"time"

	"github.com/blues/smartfunding/internal/funding"
	"github.com/blues/smartfunding/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-co-op/gocron/v2"
)

// Finalizer 可结算的众筹池
type Finalizer interface {
	Summary() funding.Summary
	Finalize(caller common.Address) (funding.Stage, error)
}

// FundingFinishJob 截止时间到达后结算众筹
type FundingFinishJob struct {
	pool     Finalizer
	operator common.Address
	interval time.Duration
	now      func() time.Time
}

// NewFundingFinishJob 创建结算任务，operator 作为结算调用方记录在事件中
func NewFundingFinishJob(pool Finalizer, operator common.Address, interval time.Duration) *FundingFinishJob {
	return &FundingFinishJob{
		pool:     pool,
		operator: operator,
		interval: interval,
		now:      time.Now,
	}
}

// GetName 获取任务名称
func (j *FundingFinishJob) GetName() string {
	return "funding_finish_updater"
}

// GetSchedule 获取调度配置
func (j *FundingFinishJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *FundingFinishJob) Execute() {
	summary := j.pool.Summary()
	if summary.Stage != funding.StageFunding {
		return
	}
	if j.now().Before(summary.Deadline) {
		logger.Debug("Funding still open until %s", summary.Deadline.Format(time.RFC3339))
		return
	}

	logger.Info("Starting funding finish task, pool=%s goal=%s", summary.Pool, summary.Goal)

	stage, err := j.pool.Finalize(j.operator)
	if err != nil {
		if !errors.Is(err, funding.ErrAlreadyFinalized) {
			logger.Error("Failed to finalize funding: %v", err)
		}
		return
	}

	if stage == funding.StageSuccess {
		logger.Info("Funding reached goal: %s/%s", summary.Pool, summary.Goal)
	} else {
		logger.Info("Funding failed to reach goal: %s/%s", summary.Pool, summary.Goal)
	}
}
