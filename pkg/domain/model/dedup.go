/*
 * @Description: 重复文件扫描与清理的领域模型
 * @Author: 青崖
 * @Date: 2026-04-22 16:30:44
 * @LastEditTime: 2026-08-23 20:17:25
 * @LastEditors: 青崖
 */
package model

import "time"

// StoredObject 是扫描时在对象存储中发现的一个对象。
// 它只在单次扫描的生命周期内有意义，跨扫描的同一性仅由 Bucket+Key 维系。
type StoredObject struct {
	// ObjectID 是本次扫描内的随机标识，删除请求通过它引用对象，
	// 避免把裸对象键暴露到删除接口。
	ObjectID string `json:"objectId"`

	Bucket       string    `json:"bucket"`
	Key          string    `json:"key"`      // 对象键
	FileName     string    `json:"fileName"` // 对象键最后一段
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`

	// Hash 是内容哈希，带算法前缀（"md5:..." 或 "sha256:..."），
	// 不同算法的哈希永不相等。
	Hash string `json:"hash"`

	// Reference 为 nil 表示数据库中没有任何记录引用该对象。
	Reference *ReferenceAnnotation `json:"reference,omitempty"`
}

// ReferenceAnnotation 记录对象被哪张引用表的哪一行引用。
type ReferenceAnnotation struct {
	Table    string `json:"table"`    // images / custom_images / gallery_images
	RecordID string `json:"recordId"` // 该行的公共ID
}

// DuplicateGroup 是一组内容哈希相同的对象（至少 2 个）。
type DuplicateGroup struct {
	Hash    string          `json:"hash"`
	Objects []*StoredObject `json:"objects"`

	// WastedBytes = (len(Objects)-1) * 单个对象大小。
	// 哈希相同意味着字节相同，组内所有对象大小一致。
	WastedBytes int64 `json:"wastedBytes"`
}

// SkippedObject 记录扫描中单个对象级别的失败（列举到了但无法取哈希等）。
type SkippedObject struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// ScanResult 是一次完整扫描的产物。结果会以 ScanID 为键缓存一段时间，
// 删除请求必须引用某次具体扫描的结果（两阶段协议）。
type ScanResult struct {
	ScanID     string    `json:"scanId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Buckets    []string  `json:"buckets"`

	TotalObjects int               `json:"totalObjects"` // 扫描到的对象总数（含无重复的）
	Groups       []*DuplicateGroup `json:"groups"`       // 仅包含成员数 >= 2 的组
	WastedBytes  int64             `json:"wastedBytes"`  // 所有组的浪费空间合计

	Skipped []SkippedObject `json:"skipped,omitempty"` // 被跳过的对象清单
}

// FindObject 按扫描内对象ID查找对象。
func (r *ScanResult) FindObject(objectID string) *StoredObject {
	for _, g := range r.Groups {
		for _, obj := range g.Objects {
			if obj.ObjectID == objectID {
				return obj
			}
		}
	}
	return nil
}

// DeleteSelection 是删除请求中的一项。
// Force 必须由操作员对单个对象显式确认；批量“选择未引用文件”的路径永远不会设置它。
type DeleteSelection struct {
	ObjectID string `json:"objectId" binding:"required"`
	Force    bool   `json:"force"`
}

// DeleteFailure 记录批量删除中单个对象的失败。
type DeleteFailure struct {
	ObjectID string `json:"objectId"`
	Key      string `json:"key"`
	Reason   string `json:"reason"`
}

// DeleteReport 是批量删除的结果。删除不是事务性的：
// 部分成功是预期行为，必须如实上报而不是掩盖。
type DeleteReport struct {
	DeletedCount int             `json:"deletedCount"`
	Failures     []DeleteFailure `json:"failures"`
}
