package handler

import (
	"context"
	"math/big"
	"net/http"

	"github.com/blues/smartfunding/internal/funding"
	"github.com/blues/smartfunding/internal/logic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// FundingService 众筹池业务接口，由 logic.FundingLogic 实现
type FundingService interface {
	Initialize(caller common.Address, goal *big.Int, durationUnits int64) error
	Invest(ctx context.Context, caller common.Address, amount *big.Int) error
	Finalize(caller common.Address) (funding.Stage, error)
	Claim(ctx context.Context, caller common.Address) (*big.Int, error)
	Refund(ctx context.Context, caller common.Address) (*big.Int, error)
	Withdraw(ctx context.Context, caller common.Address) (*big.Int, error)
	Pause(caller common.Address) error
	Unpause(caller common.Address) error
	Summary() funding.Summary
	Investor(addr common.Address) funding.Investor
	CalculateReward(amount *big.Int) *big.Int
	Balances(addr common.Address) logic.Balances
}

// FundingHandler 众筹池处理器
type FundingHandler struct {
	service FundingService
}

// NewFundingHandler 创建众筹池处理器
func NewFundingHandler(service FundingService) *FundingHandler {
	return &FundingHandler{service: service}
}

// GetSummary 获取众筹池概览
func (h *FundingHandler) GetSummary(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "获取众筹信息成功", ToSummaryResponse(h.service.Summary()))
}

// GetInvestor 获取投资人详情
func (h *FundingHandler) GetInvestor(c *gin.Context) {
	addr, ok := parseAddress(c.Param("address"))
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "无效的地址")
		return
	}

	resp := ToInvestorResponse(h.service.Investor(addr), h.service.Balances(addr))
	SuccessResponse(c, http.StatusOK, "获取投资人信息成功", resp)
}

// CalculateReward 按金额预估奖励
func (h *FundingHandler) CalculateReward(c *gin.Context) {
	amount, ok := parseAmount(c.Query("amount"))
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "无效的金额")
		return
	}

	SuccessResponse(c, http.StatusOK, "计算奖励成功", gin.H{
		"amount": amount.String(),
		"reward": h.service.CalculateReward(amount).String(),
	})
}

// Initialize 初始化众筹
func (h *FundingHandler) Initialize(c *gin.Context) {
	var req InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "无效的调用方地址")
		return
	}
	goal, ok := parseAmount(req.Goal)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "无效的目标金额")
		return
	}

	if err := h.service.Initialize(caller, goal, req.Duration); err != nil {
		FundingErrorResponse(c, "初始化失败", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "初始化成功", ToSummaryResponse(h.service.Summary()))
}

// Invest 投资
func (h *FundingHandler) Invest(c *gin.Context) {
	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "无效的调用方地址")
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "无效的投资金额")
		return
	}

	if err := h.service.Invest(c.Request.Context(), caller, amount); err != nil {
		FundingErrorResponse(c, "投资失败", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "投资成功", ToAmountResponse(caller, amount))
}

// Finalize 结算
func (h *FundingHandler) Finalize(c *gin.Context) {
	caller, ok := bindCaller(c)
	if !ok {
		return
	}

	stage, err := h.service.Finalize(caller)
	if err != nil {
		FundingErrorResponse(c, "结算失败", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "结算成功", StageResponse{Stage: stage.String()})
}

// Claim 领取奖励
func (h *FundingHandler) Claim(c *gin.Context) {
	caller, ok := bindCaller(c)
	if !ok {
		return
	}

	reward, err := h.service.Claim(c.Request.Context(), caller)
	if err != nil {
		FundingErrorResponse(c, "领取奖励失败", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "领取奖励成功", ToAmountResponse(caller, reward))
}

// Refund 退款
func (h *FundingHandler) Refund(c *gin.Context) {
	caller, ok := bindCaller(c)
	if !ok {
		return
	}

	amount, err := h.service.Refund(c.Request.Context(), caller)
	if err != nil {
		FundingErrorResponse(c, "退款失败", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "退款成功", ToAmountResponse(caller, amount))
}

// Withdraw 受益人提取
func (h *FundingHandler) Withdraw(c *gin.Context) {
	caller, ok := bindCaller(c)
	if !ok {
		return
	}

	amount, err := h.service.Withdraw(c.Request.Context(), caller)
	if err != nil {
		FundingErrorResponse(c, "提取失败", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "提取成功", ToAmountResponse(h.service.Summary().Beneficiary, amount))
}

// Pause 暂停投资
func (h *FundingHandler) Pause(c *gin.Context) {
	caller, ok := bindCaller(c)
	if !ok {
		return
	}

	if err := h.service.Pause(caller); err != nil {
		FundingErrorResponse(c, "暂停失败", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "已暂停", ToSummaryResponse(h.service.Summary()))
}

// Unpause 恢复投资
func (h *FundingHandler) Unpause(c *gin.Context) {
	caller, ok := bindCaller(c)
	if !ok {
		return
	}

	if err := h.service.Unpause(caller); err != nil {
		FundingErrorResponse(c, "恢复失败", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "已恢复", ToSummaryResponse(h.service.Summary()))
}

// bindCaller 解析请求中的调用方，失败时已写入响应
func bindCaller(c *gin.Context) (common.Address, bool) {
	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return common.Address{}, false
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "无效的调用方地址")
		return common.Address{}, false
	}
	return caller, true
}

func parseAddress(s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

func parseAmount(s string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok || amount.Sign() < 0 {
		return nil, false
	}
	return amount, true
}
