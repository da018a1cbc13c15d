package dedup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/luoying-studio/luoying-app/internal/infra/storage"
	"github.com/luoying-studio/luoying-app/pkg/constant"
	"github.com/luoying-studio/luoying-app/pkg/domain/model"
	"github.com/luoying-studio/luoying-app/pkg/idgen"
	"github.com/luoying-studio/luoying-app/pkg/service/utility"
	"github.com/luoying-studio/luoying-app/pkg/service/volume"
)

// fakeProvider 是测试用的内存存储驱动。
type fakeProvider struct {
	objects    map[string][]byte // key -> 内容
	failGet    map[string]bool   // 读取即失败的键
	failDelete map[string]bool   // 删除即失败的键
	listErr    error
	deleted    []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		objects:    make(map[string][]byte),
		failGet:    make(map[string]bool),
		failDelete: make(map[string]bool),
	}
}

func (p *fakeProvider) Upload(ctx context.Context, file io.Reader, policy *model.StoragePolicy, objectKey string) (*storage.UploadResult, error) {
	data, _ := io.ReadAll(file)
	p.objects[objectKey] = data
	return &storage.UploadResult{Key: objectKey, Size: int64(len(data))}, nil
}

func (p *fakeProvider) Get(ctx context.Context, policy *model.StoragePolicy, objectKey string) (io.ReadCloser, error) {
	if p.failGet[objectKey] {
		return nil, fmt.Errorf("模拟读取失败")
	}
	data, ok := p.objects[objectKey]
	if !ok {
		return nil, fmt.Errorf("对象不存在")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (p *fakeProvider) DeleteSingle(ctx context.Context, policy *model.StoragePolicy, objectKey string) error {
	if p.failDelete[objectKey] {
		return fmt.Errorf("模拟删除失败")
	}
	if _, ok := p.objects[objectKey]; !ok {
		return fmt.Errorf("对象不存在")
	}
	delete(p.objects, objectKey)
	p.deleted = append(p.deleted, objectKey)
	return nil
}

func (p *fakeProvider) IsExist(ctx context.Context, policy *model.StoragePolicy, objectKey string) (bool, error) {
	_, ok := p.objects[objectKey]
	return ok, nil
}

func (p *fakeProvider) ListAllObjects(ctx context.Context, policy *model.StoragePolicy) ([]storage.ObjectInfo, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	var infos []storage.ObjectInfo
	for key, data := range p.objects {
		infos = append(infos, storage.ObjectInfo{
			Key:          key,
			Size:         int64(len(data)),
			LastModified: time.Now(),
		})
	}
	return infos, nil
}

// fakeBucketService 把所有桶都解析到同一个 fakeProvider。
type fakeBucketService struct {
	provider *fakeProvider
	buckets  []string
}

func (s *fakeBucketService) GetPolicy(bucket string) (*model.StoragePolicy, error) {
	for _, b := range s.buckets {
		if b == bucket {
			return &model.StoragePolicy{Name: bucket, Type: constant.PolicyTypeLocal}, nil
		}
	}
	return nil, constant.ErrBucketNotFound
}

func (s *fakeBucketService) GetProvider(bucket string) (*model.StoragePolicy, storage.IStorageProvider, error) {
	policy, err := s.GetPolicy(bucket)
	if err != nil {
		return nil, nil, err
	}
	return policy, s.provider, nil
}

func (s *fakeBucketService) Buckets() []string { return s.buckets }

func (s *fakeBucketService) SiteLimits() model.SiteLimits { return model.SiteLimits{} }

var _ volume.IBucketService = (*fakeBucketService)(nil)

// fakeLookup 是测试用的引用反查：objectKey -> 行ID。
type fakeLookup struct {
	rows map[string]uint
	err  error
}

func (l *fakeLookup) FindReferencedKeys(ctx context.Context, objectKeys []string) (map[string]uint, error) {
	if l.err != nil {
		return nil, l.err
	}
	out := make(map[string]uint)
	for _, k := range objectKeys {
		if id, ok := l.rows[k]; ok {
			out[k] = id
		}
	}
	return out, nil
}

func (l *fakeLookup) Create(ctx context.Context, img *model.Image) error        { return nil }
func (l *fakeLookup) FindByID(ctx context.Context, id uint) (*model.Image, error) {
	return nil, constant.ErrNotFound
}

type fakeCustomLookup struct{ fakeLookup }

func (l *fakeCustomLookup) Create(ctx context.Context, img *model.CustomImage) error { return nil }

type fakeGalleryLookup struct{ fakeLookup }

func (l *fakeGalleryLookup) Create(ctx context.Context, img *model.GalleryImage) error { return nil }

func newTestResolver(imageRows, customRows, galleryRows map[string]uint) *Resolver {
	img := &fakeLookup{rows: imageRows}
	custom := &fakeCustomLookup{fakeLookup{rows: customRows}}
	gallery := &fakeGalleryLookup{fakeLookup{rows: galleryRows}}
	return NewResolver(img, custom, gallery)
}

func mustInitIDGen(t *testing.T) {
	t.Helper()
	if err := idgen.InitSqidsEncoder(); err != nil {
		t.Fatalf("初始化ID编码器失败: %v", err)
	}
}

func TestScanner_重复分组正确性(t *testing.T) {
	provider := newFakeProvider()
	provider.objects["a.png"] = []byte("same-content")
	provider.objects["b.png"] = []byte("unique-content")
	provider.objects["c.png"] = []byte("same-content")

	bucketSvc := &fakeBucketService{provider: provider, buckets: []string{"image"}}
	scanner := NewScanner(bucketSvc, 4)

	result, err := scanner.Scan(context.Background(), []string{"image"})
	if err != nil {
		t.Fatalf("扫描失败: %v", err)
	}

	if result.TotalObjects != 3 {
		t.Errorf("TotalObjects = %d, 期望 3", result.TotalObjects)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("重复组数量 = %d, 期望 1 (单例组必须被排除)", len(result.Groups))
	}
	group := result.Groups[0]
	if len(group.Objects) != 2 {
		t.Errorf("组内对象数 = %d, 期望 2", len(group.Objects))
	}
	wantWasted := int64(len("same-content"))
	if group.WastedBytes != wantWasted {
		t.Errorf("WastedBytes = %d, 期望 %d", group.WastedBytes, wantWasted)
	}
	if !strings.HasPrefix(group.Hash, "sha256:") {
		t.Errorf("无 ETag 时哈希应带 sha256 前缀, 实际 %q", group.Hash)
	}
}

func TestScanner_单对象失败只跳过不中断(t *testing.T) {
	provider := newFakeProvider()
	provider.objects["a.png"] = []byte("dup")
	provider.objects["b.png"] = []byte("dup")
	provider.objects["broken.png"] = []byte("x")
	provider.failGet["broken.png"] = true

	bucketSvc := &fakeBucketService{provider: provider, buckets: []string{"image"}}
	scanner := NewScanner(bucketSvc, 2)

	result, err := scanner.Scan(context.Background(), []string{"image"})
	if err != nil {
		t.Fatalf("单对象失败不应让扫描整体失败: %v", err)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("Skipped 数量 = %d, 期望 1", len(result.Skipped))
	}
	if result.Skipped[0].Key != "broken.png" {
		t.Errorf("跳过的对象 = %q, 期望 broken.png", result.Skipped[0].Key)
	}
	if len(result.Groups) != 1 {
		t.Errorf("其余对象仍应正常分组, 组数 = %d", len(result.Groups))
	}
}

func TestScanner_列举失败导致整体失败(t *testing.T) {
	provider := newFakeProvider()
	provider.listErr = fmt.Errorf("网络不可达")

	bucketSvc := &fakeBucketService{provider: provider, buckets: []string{"image"}}
	scanner := NewScanner(bucketSvc, 2)

	_, err := scanner.Scan(context.Background(), []string{"image"})
	if !errors.Is(err, constant.ErrScanFailed) {
		t.Fatalf("期望 ErrScanFailed, 得到 %v", err)
	}
}

func TestScanner_ETag为MD5时免读取(t *testing.T) {
	provider := newFakeProvider()
	bucketSvc := &fakeBucketService{provider: provider, buckets: []string{"image"}}
	scanner := NewScanner(bucketSvc, 1)

	task := hashTask{
		policy:   &model.StoragePolicy{Name: "image"},
		provider: provider,
		bucket:   "image",
		info: storage.ObjectInfo{
			Key:  "x.png",
			Size: 10,
			ETag: "D41D8CD98F00B204E9800998ECF8427E",
		},
	}
	outcome := scanner.hashOne(context.Background(), task)
	if outcome.skipped != nil {
		t.Fatalf("有MD5 ETag时不应读取对象: %v", outcome.skipped)
	}
	if outcome.object.Hash != "md5:d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("Hash = %q, 期望小写的 md5 前缀哈希", outcome.object.Hash)
	}
}

func TestResolver_批量标注与表优先级(t *testing.T) {
	mustInitIDGen(t)

	result := &model.ScanResult{
		ScanID: "test",
		Groups: []*model.DuplicateGroup{
			{
				Hash: "sha256:x",
				Objects: []*model.StoredObject{
					{ObjectID: "o1", Key: "k1"},
					{ObjectID: "o2", Key: "k2"},
					{ObjectID: "o3", Key: "k3"},
				},
			},
		},
	}
	// k1 同时出现在 images 和 gallery_images，必须标注为先命中的 images
	resolver := newTestResolver(
		map[string]uint{"k1": 11},
		nil,
		map[string]uint{"k1": 99, "k2": 22},
	)

	if err := resolver.Annotate(context.Background(), result); err != nil {
		t.Fatalf("标注失败: %v", err)
	}

	objs := result.Groups[0].Objects
	if objs[0].Reference == nil || objs[0].Reference.Table != "images" {
		t.Errorf("k1 应标注为 images 表, 实际 %+v", objs[0].Reference)
	}
	if objs[1].Reference == nil || objs[1].Reference.Table != "gallery_images" {
		t.Errorf("k2 应标注为 gallery_images 表, 实际 %+v", objs[1].Reference)
	}
	if objs[2].Reference != nil {
		t.Errorf("k3 不应有标注, 实际 %+v", objs[2].Reference)
	}

	dbID, entityType, err := idgen.DecodePublicID(objs[0].Reference.RecordID)
	if err != nil {
		t.Fatalf("解码公共ID失败: %v", err)
	}
	if dbID != 11 || entityType != idgen.EntityTypeImage {
		t.Errorf("公共ID解码 = (%d, %d), 期望 (11, %d)", dbID, entityType, idgen.EntityTypeImage)
	}
}

func TestEngine_SelectNonReferenced引用安全(t *testing.T) {
	result := &model.ScanResult{
		Groups: []*model.DuplicateGroup{
			{
				Hash: "h1",
				Objects: []*model.StoredObject{
					{ObjectID: "o1"},
					{ObjectID: "o2", Reference: &model.ReferenceAnnotation{Table: "images", RecordID: "x"}},
				},
			},
			{
				Hash: "h2",
				Objects: []*model.StoredObject{
					{ObjectID: "o3"},
					{ObjectID: "o4"},
				},
			},
		},
	}
	engine := NewEngine(&fakeBucketService{})

	all := engine.SelectNonReferenced(result, "")
	for _, id := range all {
		if id == "o2" {
			t.Fatal("被引用的对象绝不能出现在选择结果中")
		}
	}
	if len(all) != 3 {
		t.Errorf("跨组选择数量 = %d, 期望 3", len(all))
	}

	one := engine.SelectNonReferenced(result, "h1")
	if len(one) != 1 || one[0] != "o1" {
		t.Errorf("组内选择 = %v, 期望 [o1]", one)
	}
}

func TestEngine_删除部分失败如实上报(t *testing.T) {
	provider := newFakeProvider()
	keys := []string{"k1", "k2", "k3", "k4", "k5"}
	for _, k := range keys {
		provider.objects[k] = []byte("data")
	}
	provider.failDelete["k2"] = true
	provider.failDelete["k4"] = true

	result := &model.ScanResult{ScanID: "s", Groups: []*model.DuplicateGroup{{Hash: "h"}}}
	var selections []model.DeleteSelection
	for i, k := range keys {
		id := fmt.Sprintf("o%d", i+1)
		result.Groups[0].Objects = append(result.Groups[0].Objects, &model.StoredObject{
			ObjectID: id, Bucket: "custom", Key: k, Size: 4,
		})
		selections = append(selections, model.DeleteSelection{ObjectID: id})
	}

	engine := NewEngine(&fakeBucketService{provider: provider, buckets: []string{"custom"}})
	report, err := engine.DeleteObjects(context.Background(), result, selections)
	if err != nil {
		t.Fatalf("部分失败不应让整个批次报错: %v", err)
	}
	if report.DeletedCount != 3 {
		t.Errorf("DeletedCount = %d, 期望 3", report.DeletedCount)
	}
	if len(report.Failures) != 2 {
		t.Errorf("Failures 数量 = %d, 期望 2", len(report.Failures))
	}
}

func TestEngine_被引用对象未带Force整批拒绝(t *testing.T) {
	provider := newFakeProvider()
	provider.objects["k1"] = []byte("data")
	provider.objects["k2"] = []byte("data")

	result := &model.ScanResult{
		ScanID: "s",
		Groups: []*model.DuplicateGroup{{
			Hash: "h",
			Objects: []*model.StoredObject{
				{ObjectID: "o1", Bucket: "custom", Key: "k1"},
				{ObjectID: "o2", Bucket: "custom", Key: "k2", Reference: &model.ReferenceAnnotation{Table: "images", RecordID: "x"}},
			},
		}},
	}
	engine := NewEngine(&fakeBucketService{provider: provider, buckets: []string{"custom"}})

	_, err := engine.DeleteObjects(context.Background(), result, []model.DeleteSelection{
		{ObjectID: "o1"},
		{ObjectID: "o2"}, // 被引用且未带 Force
	})
	if !errors.Is(err, constant.ErrObjectReferenced) {
		t.Fatalf("期望 ErrObjectReferenced, 得到 %v", err)
	}
	if len(provider.deleted) != 0 {
		t.Errorf("整批拒绝时一个对象都不应被删除, 实际删除了 %v", provider.deleted)
	}

	// 对被引用对象显式带 Force 后整批放行
	report, err := engine.DeleteObjects(context.Background(), result, []model.DeleteSelection{
		{ObjectID: "o1"},
		{ObjectID: "o2", Force: true},
	})
	if err != nil {
		t.Fatalf("显式 Force 后不应报错: %v", err)
	}
	if report.DeletedCount != 2 {
		t.Errorf("DeletedCount = %d, 期望 2", report.DeletedCount)
	}
}

func TestEngine_删除前重新确认存在性(t *testing.T) {
	provider := newFakeProvider()
	// 扫描结果里有 k1，但真实存储中已经没有它了
	result := &model.ScanResult{
		ScanID: "s",
		Groups: []*model.DuplicateGroup{{
			Hash:    "h",
			Objects: []*model.StoredObject{{ObjectID: "o1", Bucket: "custom", Key: "k1"}},
		}},
	}
	engine := NewEngine(&fakeBucketService{provider: provider, buckets: []string{"custom"}})

	report, err := engine.DeleteObjects(context.Background(), result, []model.DeleteSelection{{ObjectID: "o1"}})
	if err != nil {
		t.Fatalf("对象已消失应记为失败而不是报错: %v", err)
	}
	if report.DeletedCount != 0 || len(report.Failures) != 1 {
		t.Errorf("report = %+v, 期望 0 成功 1 失败", report)
	}
}

func TestDedupService_场景C_三副本一引用(t *testing.T) {
	mustInitIDGen(t)

	const oneMB = 1 << 20
	content := bytes.Repeat([]byte("x"), oneMB)

	provider := newFakeProvider()
	provider.objects["copy1.jpg"] = content
	provider.objects["copy2.jpg"] = content
	provider.objects["copy3.jpg"] = content

	bucketSvc := &fakeBucketService{provider: provider, buckets: []string{"custom"}}
	scanner := NewScanner(bucketSvc, 4)
	// copy2 被 gallery_images 表引用
	resolver := newTestResolver(nil, nil, map[string]uint{"copy2.jpg": 7})
	engine := NewEngine(bucketSvc)
	svc := NewDedupService(scanner, resolver, engine, utility.NewMemoryCacheService(), Options{
		ScanTimeout: time.Minute,
		ResultTTL:   time.Minute,
	})

	ctx := context.Background()
	result, err := svc.StartScan(ctx, []string{"custom"})
	if err != nil {
		t.Fatalf("扫描失败: %v", err)
	}
	if len(result.Groups) != 1 || len(result.Groups[0].Objects) != 3 {
		t.Fatalf("期望 1 组 3 个对象, 实际 %+v", result.Groups)
	}
	if result.WastedBytes != 2*oneMB {
		t.Errorf("删除前浪费空间 = %d, 期望 %d", result.WastedBytes, 2*oneMB)
	}

	ids, err := svc.SelectNonReferenced(ctx, result.ScanID, result.Groups[0].Hash)
	if err != nil {
		t.Fatalf("选择失败: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("未引用副本数量 = %d, 期望 2", len(ids))
	}

	var selections []model.DeleteSelection
	for _, id := range ids {
		selections = append(selections, model.DeleteSelection{ObjectID: id})
	}
	report, err := svc.Delete(ctx, result.ScanID, selections)
	if err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if report.DeletedCount != 2 || len(report.Failures) != 0 {
		t.Errorf("report = %+v, 期望删除 2 个且无失败", report)
	}

	// 被引用的 copy2 必须原样幸存
	if _, ok := provider.objects["copy2.jpg"]; !ok {
		t.Fatal("被引用的副本被错误删除")
	}

	// 缓存视图已更新：组内只剩 1 个对象，不再构成重复组
	after, err := svc.GetScan(ctx, result.ScanID)
	if err != nil {
		t.Fatalf("取回扫描结果失败: %v", err)
	}
	if len(after.Groups) != 0 {
		t.Errorf("删除后不应再有重复组, 实际 %d 组", len(after.Groups))
	}
	if after.WastedBytes != 0 {
		t.Errorf("删除后浪费空间 = %d, 期望 0", after.WastedBytes)
	}
}

func TestDedupService_过期扫描不可用(t *testing.T) {
	svc := NewDedupService(nil, nil, NewEngine(&fakeBucketService{}), utility.NewMemoryCacheService(), Options{})
	_, err := svc.GetScan(context.Background(), "no-such-scan")
	if !errors.Is(err, constant.ErrScanNotFound) {
		t.Fatalf("期望 ErrScanNotFound, 得到 %v", err)
	}
}
