package handler

import (
	"math/big"
	"time"

	"github.com/blues/smartfunding/internal/funding"
	"github.com/blues/smartfunding/internal/logic"
	"github.com/ethereum/go-ethereum/common"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// NewPagination 计算总页数
func NewPagination(page, pageSize int, total int64) Pagination {
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}

// 请求模型，金额均为最小单位的十进制字符串

// CallerRequest 只需要调用方的请求
type CallerRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// InitializeRequest 初始化请求
type InitializeRequest struct {
	Caller   string `json:"caller" binding:"required"`
	Goal     string `json:"goal" binding:"required"`
	Duration int64  `json:"duration" binding:"required"`
}

// InvestRequest 投资请求
type InvestRequest struct {
	Caller string `json:"caller" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// 响应模型

// SummaryResponse 众筹池概览
type SummaryResponse struct {
	Address       string    `json:"address"`
	RewardToken   string    `json:"rewardToken"`
	Beneficiary   string    `json:"beneficiary,omitempty"`
	RewardSupply  string    `json:"rewardSupply"`
	Goal          string    `json:"goal"`
	Deadline      time.Time `json:"deadline"`
	Pool          string    `json:"pool"`
	Distributed   string    `json:"distributed"`
	Stage         string    `json:"stage"`
	Paused        bool      `json:"paused"`
	Withdrawn     bool      `json:"withdrawn"`
	InvestorCount int       `json:"investorCount"`
}

// InvestorResponse 投资人详情
type InvestorResponse struct {
	Address       string `json:"address"`
	Invest        string `json:"invest"`
	Reward        string `json:"reward"`
	Claimed       bool   `json:"claimed"`
	NativeBalance string `json:"nativeBalance"`
	RewardBalance string `json:"rewardBalance"`
}

// StageResponse 结算结果
type StageResponse struct {
	Stage string `json:"stage"`
}

// AmountResponse 转账金额
type AmountResponse struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// ToSummaryResponse 转换众筹池概览
func ToSummaryResponse(s funding.Summary) SummaryResponse {
	resp := SummaryResponse{
		Address:       s.Address.Hex(),
		RewardToken:   s.RewardToken.Hex(),
		RewardSupply:  s.RewardSupply.String(),
		Goal:          s.Goal.String(),
		Deadline:      s.Deadline,
		Pool:          s.Pool.String(),
		Distributed:   s.Distributed.String(),
		Stage:         s.Stage.String(),
		Paused:        s.Paused,
		Withdrawn:     s.Withdrawn,
		InvestorCount: s.InvestorCount,
	}
	if s.Beneficiary != (common.Address{}) {
		resp.Beneficiary = s.Beneficiary.Hex()
	}
	return resp
}

// ToInvestorResponse 转换投资人详情
func ToInvestorResponse(inv funding.Investor, balances logic.Balances) InvestorResponse {
	return InvestorResponse{
		Address:       inv.Address.Hex(),
		Invest:        inv.Invest.String(),
		Reward:        inv.Reward.String(),
		Claimed:       inv.Claimed,
		NativeBalance: balances.Native.String(),
		RewardBalance: balances.Reward.String(),
	}
}

// ToAmountResponse 转换转账金额
func ToAmountResponse(addr common.Address, amount *big.Int) AmountResponse {
	return AmountResponse{Address: addr.Hex(), Amount: amount.String()}
}
