package funding

import (
	"errors"
	"fmt"
)

// 众筹池错误定义
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrAlreadyFinalized   = errors.New("already finalized")
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrInvalidAmount      = errors.New("reject amount of invest")
	ErrNotFundingStage    = errors.New("not in funding stage")
	ErrPaused             = errors.New("paused")
	ErrNoReward           = errors.New("no reward")
	ErrAlreadyClaimed     = errors.New("already claimed")
	ErrNoInvestment       = errors.New("no investment")
	ErrTransferFailed     = errors.New("transfer failed")
	ErrAlreadyWithdrawn   = errors.New("already withdrawn")
	ErrNothingToWithdraw  = errors.New("nothing to withdraw")
	ErrNotSucceeded       = errors.New("funding round did not succeed")
)

// 细分错误，仍可通过 errors.Is 匹配到上面的基础错误
var (
	ErrNotSuccessStage = fmt.Errorf("%w: funding round did not succeed", ErrNoReward)
	ErrNotFailedStage  = fmt.Errorf("%w: funding round did not fail", ErrNoInvestment)
	ErrFundingClosed   = fmt.Errorf("%w: funding window closed", ErrNotFundingStage)
)
