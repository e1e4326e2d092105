package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/smartfunding/internal/chain"
	"github.com/blues/smartfunding/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	maxPageSize = 100
	maxPage     = 100000
)

// RecordHandler 事件流水和业务记录查询
type RecordHandler struct {
	eventLogic      *logic.EventLogic
	contributeLogic *logic.ContributeRecordLogic
	claimLogic      *logic.ClaimRecordLogic
	refundLogic     *logic.RefundRecordLogic
}

// NewRecordHandler 创建记录处理器
func NewRecordHandler(db *gorm.DB, contract *chain.Contract) *RecordHandler {
	return &RecordHandler{
		eventLogic:      logic.NewEventLogic(db, contract),
		contributeLogic: logic.NewContributeRecordLogic(db),
		claimLogic:      logic.NewClaimRecordLogic(db),
		refundLogic:     logic.NewRefundRecordLogic(db),
	}
}

// GetContributeRecords 获取投资记录
func (h *RecordHandler) GetContributeRecords(c *gin.Context) {
	address, page, pageSize, ok := listParams(c)
	if !ok {
		return
	}

	records, total, err := h.contributeLogic.GetContributeRecords(address, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取投资记录成功", gin.H{
		"records":    records,
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetContributeStats 获取投资统计
func (h *RecordHandler) GetContributeStats(c *gin.Context) {
	stats, err := h.contributeLogic.GetContributeStats()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取投资统计成功", stats)
}

// GetClaimRecords 获取领取记录
func (h *RecordHandler) GetClaimRecords(c *gin.Context) {
	address, page, pageSize, ok := listParams(c)
	if !ok {
		return
	}

	records, total, err := h.claimLogic.GetClaimRecords(address, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取领取记录成功", gin.H{
		"records":    records,
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetRefundRecords 获取退款记录
func (h *RecordHandler) GetRefundRecords(c *gin.Context) {
	address, page, pageSize, ok := listParams(c)
	if !ok {
		return
	}

	records, total, err := h.refundLogic.GetRefundRecords(address, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取退款记录成功", gin.H{
		"records":    records,
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetRefundStats 获取退款统计
func (h *RecordHandler) GetRefundStats(c *gin.Context) {
	stats, err := h.refundLogic.GetRefundStats()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取退款统计成功", stats)
}

// GetEvents 获取事件流水
func (h *RecordHandler) GetEvents(c *gin.Context) {
	page, pageSize, ok := pageParams(c)
	if !ok {
		return
	}

	events, total, err := h.eventLogic.GetEvents(c.Query("type"), page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取事件成功", gin.H{
		"events":     events,
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetEventByTxHash 根据交易哈希获取事件，并附带解码后的字段
func (h *RecordHandler) GetEventByTxHash(c *gin.Context) {
	event, err := h.eventLogic.GetEventByTxHash(c.Param("tx_hash"))
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	decoded, err := h.eventLogic.DecodeEvent(event)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	amount := ""
	if decoded.Amount != nil {
		amount = decoded.Amount.String()
	}
	SuccessResponse(c, http.StatusOK, "获取事件成功", gin.H{
		"event": event,
		"decoded": gin.H{
			"kind":    decoded.Kind,
			"seq":     decoded.Seq,
			"account": decoded.Account.Hex(),
			"amount":  amount,
		},
	})
}

// GetEventStats 按类型统计事件
func (h *RecordHandler) GetEventStats(c *gin.Context) {
	stats, err := h.eventLogic.GetEventStatistics()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取事件统计成功", stats)
}

// GetSettlementRecords 获取结算记录
func (h *RecordHandler) GetSettlementRecords(c *gin.Context) {
	records, err := h.eventLogic.GetSettlementRecords()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取结算记录成功", records)
}

// listParams 地址过滤和分页参数，失败时已写入响应
func listParams(c *gin.Context) (string, int, int, bool) {
	address := c.Query("address")
	if address != "" {
		addr, ok := parseAddress(address)
		if !ok {
			ErrorResponse(c, http.StatusBadRequest, "无效的地址")
			return "", 0, 0, false
		}
		address = addr.Hex()
	}

	page, pageSize, ok := pageParams(c)
	return address, page, pageSize, ok
}

func pageParams(c *gin.Context) (int, int, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 || page > maxPage {
		ErrorResponse(c, http.StatusBadRequest, "无效的页码")
		return 0, 0, false
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize < 1 {
		ErrorResponse(c, http.StatusBadRequest, "无效的分页大小")
		return 0, 0, false
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, true
}
