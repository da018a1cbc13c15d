/*
 * @Description: 上传入口：准入校验、路径生成、写入存储、登记引用
 * @Author: 青崖
 * @Date: 2026-05-22 10:08:14
 * @LastEditTime: 2026-08-27 11:30:52
 * @LastEditors: 青崖
 */
package upload_handler

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/luoying-studio/luoying-app/internal/pkg/auth"
	"github.com/luoying-studio/luoying-app/pkg/constant"
	"github.com/luoying-studio/luoying-app/pkg/domain/model"
	"github.com/luoying-studio/luoying-app/pkg/domain/repository"
	"github.com/luoying-studio/luoying-app/pkg/idgen"
	"github.com/luoying-studio/luoying-app/pkg/response"
	"github.com/luoying-studio/luoying-app/pkg/service/filesecurity"
	"github.com/luoying-studio/luoying-app/pkg/service/volume"

	"github.com/gin-gonic/gin"
)

// headBytes 是准入校验读取的文件头长度，足够覆盖全部已知签名。
const headBytes = 16

// UploadHandler 封装了上传相关的控制器方法
type UploadHandler struct {
	bucketSvc volume.IBucketService
	imageRepo repository.ImageRepository
}

// NewUploadHandler 是 UploadHandler 的构造函数
func NewUploadHandler(bucketSvc volume.IBucketService, imageRepo repository.ImageRepository) *UploadHandler {
	return &UploadHandler{
		bucketSvc: bucketSvc,
		imageRepo: imageRepo,
	}
}

// Upload 处理 multipart 上传。
// 流程：解析表单 → 准入校验 → 生成对象键 → 写入存储 → image 桶登记 images 行。
// 校验失败时把完整的错误与警告列表原样返回（400），绝不只给第一条。
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "缺少上传文件: "+err.Error())
		return
	}
	bucket := c.PostForm("bucket")
	if bucket == "" {
		bucket = constant.BucketImage
	}

	policy, provider, err := h.bucketSvc.GetProvider(bucket)
	if err != nil {
		response.Fail(c, http.StatusNotFound, err.Error())
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "读取上传文件失败: "+err.Error())
		return
	}
	defer src.Close()

	head := make([]byte, headBytes)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		response.Fail(c, http.StatusInternalServerError, "读取文件头失败: "+err.Error())
		return
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		response.Fail(c, http.StatusInternalServerError, "重置文件指针失败: "+err.Error())
		return
	}

	candidate := &model.UploadCandidate{
		Name:         fileHeader.Filename,
		DeclaredMIME: fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Head:         head[:n],
	}
	result := filesecurity.Validate(candidate, model.ValidateOptions{
		Bucket:       bucket,
		AllowAnyType: policy.AllowAnyType,
	}, h.bucketSvc.SiteLimits())

	if !result.IsValid {
		response.FailWithData(c, http.StatusBadRequest, result, "文件未通过校验")
		return
	}

	// 存储时必须使用清洗后的文件名，绝不使用客户端原始名
	key, err := filesecurity.GenerateStoragePath(result.SanitizedName, bucket, filesecurity.PathOptions{
		UserID: h.currentUserID(c),
	})
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "生成存储路径失败: "+err.Error())
		return
	}
	objectKey := h.fullObjectKey(policy, key)

	uploaded, err := provider.Upload(c.Request.Context(), src, policy, objectKey)
	if err != nil {
		log.Printf("[上传] 写入存储失败: bucket=%s, key=%s, 错误: %v", bucket, objectKey, err)
		response.Fail(c, http.StatusInternalServerError, "写入存储失败")
		return
	}

	// image 桶的上传同步登记到 images 表，让后续的重复扫描能看到引用
	if bucket == constant.BucketImage {
		img := &model.Image{
			Title:     c.PostForm("title"),
			Bucket:    bucket,
			ObjectKey: uploaded.Key,
			Size:      uploaded.Size,
			MimeType:  uploaded.MimeType,
		}
		if err := h.imageRepo.Create(c.Request.Context(), img); err != nil {
			log.Printf("[上传] 登记 images 记录失败: key=%s, 错误: %v", uploaded.Key, err)
			response.Fail(c, http.StatusInternalServerError, "登记图片记录失败")
			return
		}
	}

	response.Success(c, gin.H{
		"validation": result,
		"objectKey":  uploaded.Key,
		"size":       uploaded.Size,
		"mimeType":   uploaded.MimeType,
	}, "上传成功")
}

// currentUserID 从认证中间件写入的 claims 里解出数据库用户ID，失败时返回 0（不加用户段）。
func (h *UploadHandler) currentUserID(c *gin.Context) uint {
	claimsValue, exists := c.Get(auth.ClaimsKey)
	if !exists {
		return 0
	}
	claims, ok := claimsValue.(*auth.CustomClaims)
	if !ok {
		return 0
	}
	userID, entityType, err := idgen.DecodePublicID(claims.UserID)
	if err != nil || entityType != idgen.EntityTypeUser {
		return 0
	}
	return userID
}

// fullObjectKey 把生成的相对键补成驱动需要的完整对象键。
// 本地驱动以 BasePath 为磁盘根目录，键保持相对；云端驱动的键要带上 BasePath 前缀。
func (h *UploadHandler) fullObjectKey(policy *model.StoragePolicy, key string) string {
	if policy.Type == constant.PolicyTypeLocal || policy.BasePath == "" {
		return key
	}
	return strings.Trim(policy.BasePath, "/") + "/" + key
}
