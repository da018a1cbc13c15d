/*
 * @Description: 重复文件管理接口：扫描、查询、选择、删除
 * @Author: 青崖
 * @Date: 2026-05-23 09:45:27
 * @LastEditTime: 2026-08-27 14:08:19
 * @LastEditors: 青崖
 */
package dedup_handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/luoying-studio/luoying-app/pkg/constant"
	"github.com/luoying-studio/luoying-app/pkg/domain/model"
	"github.com/luoying-studio/luoying-app/pkg/response"
	"github.com/luoying-studio/luoying-app/pkg/service/dedup"
	"github.com/luoying-studio/luoying-app/pkg/service/volume"

	"github.com/gin-gonic/gin"
)

// DedupHandler 封装了重复文件管理的控制器方法
type DedupHandler struct {
	dedupSvc  dedup.IDedupService
	bucketSvc volume.IBucketService
}

// NewDedupHandler 是 DedupHandler 的构造函数
func NewDedupHandler(dedupSvc dedup.IDedupService, bucketSvc volume.IBucketService) *DedupHandler {
	return &DedupHandler{
		dedupSvc:  dedupSvc,
		bucketSvc: bucketSvc,
	}
}

// ScanRequest 是触发扫描的请求体。Buckets 为空表示扫描全部已配置的桶。
type ScanRequest struct {
	Buckets []string `json:"buckets"`
}

// Scan 触发一次同步的重复文件扫描并返回完整结果。
func (h *DedupHandler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	buckets := req.Buckets
	if len(buckets) == 0 {
		buckets = h.bucketSvc.Buckets()
	}

	result, err := h.dedupSvc.StartScan(c.Request.Context(), buckets)
	if err != nil {
		h.failByError(c, err)
		return
	}
	response.Success(c, result, "扫描完成")
}

// GetScan 取回一次已缓存的扫描结果。
func (h *DedupHandler) GetScan(c *gin.Context) {
	result, err := h.dedupSvc.GetScan(c.Request.Context(), c.Param("scanID"))
	if err != nil {
		h.failByError(c, err)
		return
	}
	response.Success(c, result, "获取成功")
}

// SelectRequest 是“选择未引用文件”的请求体。GroupHash 为空表示跨全部组。
type SelectRequest struct {
	ScanID    string `json:"scanId" binding:"required"`
	GroupHash string `json:"groupHash"`
}

// Select 返回扫描结果中未被数据库引用的对象ID。
// 这条路径永远不会产生 Force 标记，被引用的对象绝不会出现在返回值里。
func (h *DedupHandler) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	ids, err := h.dedupSvc.SelectNonReferenced(c.Request.Context(), req.ScanID, req.GroupHash)
	if err != nil {
		h.failByError(c, err)
		return
	}
	response.Success(c, gin.H{"objectIds": ids}, "选择完成")
}

// DeleteRequest 是批量删除的请求体。
type DeleteRequest struct {
	ScanID  string                  `json:"scanId" binding:"required"`
	Objects []model.DeleteSelection `json:"objects" binding:"required,min=1"`
}

// Delete 按选择删除对象，部分成功如实上报。
func (h *DedupHandler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	report, err := h.dedupSvc.Delete(c.Request.Context(), req.ScanID, req.Objects)
	if err != nil {
		h.failByError(c, err)
		return
	}

	msg := fmt.Sprintf("删除完成：成功 %d 个，失败 %d 个", report.DeletedCount, len(report.Failures))
	response.Success(c, report, msg)
}

// failByError 把领域错误映射为 HTTP 状态码。
func (h *DedupHandler) failByError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, constant.ErrScanNotFound):
		response.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, constant.ErrBucketNotFound), errors.Is(err, constant.ErrNotFound):
		response.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, constant.ErrObjectReferenced):
		// 策略违规：批次里有被引用但未显式 Force 的对象，整批拒绝
		response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, constant.ErrScanFailed):
		response.Fail(c, http.StatusBadGateway, err.Error())
	default:
		log.Printf("[重复文件] 未归类的错误: %v", err)
		response.Fail(c, http.StatusInternalServerError, err.Error())
	}
}
