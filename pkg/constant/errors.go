/*
 * @Description:
 * @Author: 青崖
 * @Date: 2026-03-02 10:12:45
 * @LastEditTime: 2026-08-14 16:40:02
 * @LastEditors: 青崖
 */
package constant

import "errors"

// 定义业务逻辑相关的标准错误
var (
	// ErrNotFound 表示资源未找到，可以由 Handler 转换为 404
	ErrNotFound = errors.New("资源未找到")

	// ErrForbidden 表示无权访问，可以由 Handler 转换为 403
	ErrForbidden = errors.New("操作禁止")

	// ErrConflict 表示资源冲突，可以由 Handler 转换为 409
	ErrConflict = errors.New("资源冲突")

	// ErrInternalServer 表示服务器内部错误，可以由 Handler 转换为 500
	ErrInternalServer = errors.New("内部服务器错误")

	// ErrBadRequest 表示请求参数错误，可以由 Handler 转换为 400
	ErrBadRequest = errors.New("错误的请求")

	// ErrUnauthorized 表示未授权，可以由 Handler 转换为 401
	ErrUnauthorized = errors.New("未经授权的访问")

	// ErrInvalidToken 表示无效的令牌，可以由 Handler 转换为 401
	ErrInvalidToken = errors.New("无效令牌")

	// ErrBucketNotFound 表示存储桶未配置，可以由 Handler 转换为 404
	ErrBucketNotFound = errors.New("存储桶未配置")

	// ErrInvalidPolicyType 表示无效的存储策略类型，可以由 Handler 转换为 400
	ErrInvalidPolicyType = errors.New("无效的存储策略类型")

	// ErrScanNotFound 表示扫描结果不存在或已过期，可以由 Handler 转换为 404
	ErrScanNotFound = errors.New("扫描结果不存在或已过期")

	// ErrScanFailed 表示对象存储不可达导致整次扫描失败，可以由 Handler 转换为 502
	ErrScanFailed = errors.New("扫描失败：无法访问对象存储")

	// ErrObjectReferenced 表示尝试删除仍被数据库引用的对象。
	// 这是一个策略违规（区别于普通删除失败），除非调用方对该对象显式传入 force 标记，
	// 否则整个删除批次都会被拒绝。
	ErrObjectReferenced = errors.New("对象仍被数据库记录引用，拒绝删除")

	// ErrInvalidPublicID 表示无效的公共ID，可以由 Handler 转换为 400
	ErrInvalidPublicID = errors.New("无效的公共ID")
)
