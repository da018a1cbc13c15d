/*
 * @Description: 存储桶服务：桶名到存储策略与驱动实例的解析
 * @Author: 青崖
 * @Date: 2026-03-18 10:40:33
 * @LastEditTime: 2026-08-25 09:14:20
 * @LastEditors: 青崖
 */
package volume

import (
	"fmt"
	"log"

	"github.com/luoying-studio/luoying-app/internal/infra/storage"
	"github.com/luoying-studio/luoying-app/pkg/config"
	"github.com/luoying-studio/luoying-app/pkg/constant"
	"github.com/luoying-studio/luoying-app/pkg/domain/model"
)

// IBucketService 定义了存储桶解析服务的接口。
// 全部策略在构造时从配置一次性载入，此后只读，并发访问不需要加锁。
type IBucketService interface {
	// GetPolicy 返回桶的存储策略，桶未配置时返回 constant.ErrBucketNotFound。
	GetPolicy(bucket string) (*model.StoragePolicy, error)

	// GetProvider 返回桶的存储策略与对应的驱动实例。
	GetProvider(bucket string) (*model.StoragePolicy, storage.IStorageProvider, error)

	// Buckets 返回所有已配置的桶名。
	Buckets() []string

	// SiteLimits 返回注入给上传校验器的全站尺寸限制。
	SiteLimits() model.SiteLimits
}

type bucketService struct {
	policies  map[string]*model.StoragePolicy
	order     []string
	providers map[constant.StoragePolicyType]storage.IStorageProvider
	limits    model.SiteLimits
}

// NewBucketService 从配置文件载入全部桶策略并构造解析服务。
// 配置里声明了桶但策略类型非法时直接报错，让问题在启动期暴露。
func NewBucketService(cfg *config.Config) (IBucketService, error) {
	buckets := cfg.GetStringSlice(config.KeyStorageBuckets)
	if len(buckets) == 0 {
		buckets = constant.DefaultBuckets
		log.Printf("[存储桶] 未配置 Storage.Buckets，使用默认桶列表: %v", buckets)
	}

	svc := &bucketService{
		policies: make(map[string]*model.StoragePolicy, len(buckets)),
		providers: map[constant.StoragePolicyType]storage.IStorageProvider{
			constant.PolicyTypeLocal:      storage.NewLocalProvider(),
			constant.PolicyTypeS3:         storage.NewAWSS3Provider(),
			constant.PolicyTypeTencentCOS: storage.NewTencentCOSProvider(),
		},
		limits: model.SiteLimits{
			DefaultMaxSize: cfg.GetInt64(config.KeyUploadDefaultMaxSize),
			BucketMaxSize:  make(map[string]int64),
		},
	}

	for _, bucket := range buckets {
		section := "Storage." + bucket
		policyType := constant.StoragePolicyType(cfg.GetString(section + ".Type"))
		if policyType == "" {
			policyType = constant.PolicyTypeLocal
		}
		if !policyType.IsValid() {
			return nil, fmt.Errorf("存储桶 %s 的策略类型非法: %s: %w", bucket, policyType, constant.ErrInvalidPolicyType)
		}

		policy := &model.StoragePolicy{
			Name:         bucket,
			Type:         policyType,
			Server:       cfg.GetString(section + ".Server"),
			BucketName:   cfg.GetString(section + ".BucketName"),
			AccessKey:    cfg.GetString(section + ".AccessKey"),
			SecretKey:    cfg.GetString(section + ".SecretKey"),
			BasePath:     cfg.GetString(section + ".BasePath"),
			MaxSize:      cfg.GetInt64(section + ".MaxSize"),
			AllowAnyType: cfg.GetBool(section + ".AllowAnyType"),
		}
		if policy.Type == constant.PolicyTypeLocal && policy.BasePath == "" {
			policy.BasePath = "data/storage/" + bucket
		}

		svc.policies[bucket] = policy
		svc.order = append(svc.order, bucket)
		if policy.MaxSize > 0 {
			svc.limits.BucketMaxSize[bucket] = policy.MaxSize
		}
		log.Printf("[存储桶] 已载入: %s (类型: %s)", bucket, policy.Type)
	}

	return svc, nil
}

func (s *bucketService) GetPolicy(bucket string) (*model.StoragePolicy, error) {
	policy, ok := s.policies[bucket]
	if !ok {
		return nil, fmt.Errorf("存储桶 %s: %w", bucket, constant.ErrBucketNotFound)
	}
	return policy, nil
}

func (s *bucketService) GetProvider(bucket string) (*model.StoragePolicy, storage.IStorageProvider, error) {
	policy, err := s.GetPolicy(bucket)
	if err != nil {
		return nil, nil, err
	}
	provider, ok := s.providers[policy.Type]
	if !ok {
		return nil, nil, fmt.Errorf("存储桶 %s 的策略类型 %s 没有对应驱动: %w", bucket, policy.Type, constant.ErrInvalidPolicyType)
	}
	return policy, provider, nil
}

func (s *bucketService) Buckets() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *bucketService) SiteLimits() model.SiteLimits {
	return s.limits
}
