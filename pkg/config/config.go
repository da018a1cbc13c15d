/*
 * @Description: 统一配置管理 (手动加载，文件默认值 + 环境变量覆盖)
 * @Author: 青崖
 * @Date: 2026-03-02 09:21:07
 * @LastEditTime: 2026-08-21 14:35:46
 * @LastEditors: 青崖
 */
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/spf13/viper"
)

// 定义所有已知的固定配置键。
// 存储桶相关的键（Storage.<bucket>.*）是动态的，随 Storage.Buckets 列表展开，
// 它们由 ini 分区整体载入，不在此列表中逐一枚举。
var allKeys = []string{
	KeyServerPort, KeyServerDebug, KeyJWTSecret,
	KeyDBType, KeyDBHost, KeyDBPort, KeyDBUser, KeyDBPassword, KeyDBName,
	KeyRedisAddr, KeyRedisPassword, KeyRedisDB,
	KeyAdminUsername, KeyAdminPasswordHash,
	KeyStorageBuckets, KeyUploadDefaultMaxSize,
	KeyDedupScanWorkers, KeyDedupScanTimeout, KeyDedupResultTTL, KeyDedupScanCron,
}

const (
	KeyServerPort  = "System.Port"
	KeyServerDebug = "System.Debug"
	KeyJWTSecret   = "System.JWTSecret"

	KeyDBType     = "Database.Type"
	KeyDBHost     = "Database.Host"
	KeyDBPort     = "Database.Port"
	KeyDBUser     = "Database.User"
	KeyDBPassword = "Database.Password"
	KeyDBName     = "Database.Name"

	KeyRedisAddr     = "Redis.Addr"
	KeyRedisPassword = "Redis.Password"
	KeyRedisDB       = "Redis.DB"

	KeyAdminUsername     = "Admin.Username"
	KeyAdminPasswordHash = "Admin.PasswordHash"

	// KeyStorageBuckets 是逗号分隔的存储桶名称列表，
	// 每个桶对应一个 [Storage.<bucket>] 分区。
	KeyStorageBuckets = "Storage.Buckets"

	// KeyUploadDefaultMaxSize 是未配置桶级上限时的全站默认上传大小上限（字节）。
	KeyUploadDefaultMaxSize = "Upload.DefaultMaxSize"

	KeyDedupScanWorkers = "Dedup.ScanWorkers"
	KeyDedupScanTimeout = "Dedup.ScanTimeoutMinutes"
	KeyDedupResultTTL   = "Dedup.ResultTTLMinutes"
	KeyDedupScanCron    = "Dedup.ScanCron"
)

type Config struct {
	vp *viper.Viper
}

// NewConfig 手动加载配置：先用 go-ini 读取 data/conf.ini 作为默认值，
// 再逐键检查 LUOYING_* 环境变量进行覆盖，保证容器环境下的可靠性。
func NewConfig() (*Config, error) {
	vp := viper.New()
	filePath := "data/conf.ini"

	// --- 步骤 1: 使用 go-ini 从文件加载配置 (作为默认值) ---
	iniCfg, err := ini.Load(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("提示: 未找到 %s，将创建默认配置文件。", filePath)
			if err := createDefaultConfigFile(filePath); err != nil {
				log.Printf("警告: 创建默认配置文件失败: %v，将仅依赖环境变量或内部默认值。", err)
			} else {
				log.Printf("✅ 已创建默认配置文件: %s", filePath)
				iniCfg, err = ini.Load(filePath)
				if err != nil {
					log.Printf("警告: 重新加载配置文件失败: %v", err)
				}
			}
		} else {
			return nil, fmt.Errorf("错误: 解析配置文件 '%s' 失败: %w", filePath, err)
		}
	}

	// 如果文件成功加载，则将其中的值全部设置到 Viper 中。
	// 分区名可以带点（如 [Storage.image]），因此动态的桶级配置也会被载入。
	if iniCfg != nil {
		for _, section := range iniCfg.Sections() {
			for _, key := range section.Keys() {
				viperKey := fmt.Sprintf("%s.%s", section.Name(), key.Name())
				if section.Name() == "DEFAULT" {
					viperKey = key.Name()
				}
				vp.Set(viperKey, key.Value())
			}
		}
		log.Println("从 data/conf.ini 文件加载了默认配置。")
	}

	// --- 步骤 2: 手动检查并覆盖环境变量 ---
	envReplacer := strings.NewReplacer(".", "_")
	envPrefix := "LUOYING"

	for _, key := range allKeys {
		envVarName := fmt.Sprintf("%s_%s", envPrefix, envReplacer.Replace(strings.ToUpper(key)))
		if value, found := os.LookupEnv(envVarName); found {
			vp.Set(key, value)
			log.Printf("发现环境变量: %s, 已覆盖配置 '%s'。", envVarName, key)
		}
	}

	log.Println("✅ 配置加载器初始化完成。")
	return &Config{vp: vp}, nil
}

func (c *Config) GetString(key string) string {
	return c.vp.GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.vp.GetInt(key)
}

func (c *Config) GetInt64(key string) int64 {
	return c.vp.GetInt64(key)
}

func (c *Config) GetBool(key string) bool {
	return c.vp.GetBool(key)
}

// GetStringSlice 读取一个逗号分隔的字符串配置并去除空白项。
func (c *Config) GetStringSlice(key string) []string {
	raw := c.vp.GetString(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// createDefaultConfigFile 创建默认的配置文件
func createDefaultConfigFile(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	// 默认配置内容（使用 SQLite 作为默认数据库，本地磁盘作为默认存储）
	defaultConfig := `[System]
Port = 8091
Debug = false
JWTSecret =

[Database]
Type = sqlite
Name = luoying_app.db

# Redis 配置（可选）
# 如果不配置或留空 Addr，系统将自动使用内存缓存
[Redis]
Addr =
Password =
DB = 0

[Admin]
Username = admin
# bcrypt 哈希，可用 htpasswd -bnBC 10 "" <密码> 生成
PasswordHash =

[Upload]
# 全站默认上传大小上限：50MB
DefaultMaxSize = 52428800

[Storage]
Buckets = image,custom,gallery,video,files

[Storage.image]
Type = local
BasePath = data/storage/image

[Storage.custom]
Type = local
BasePath = data/storage/custom

[Storage.gallery]
Type = local
BasePath = data/storage/gallery

[Storage.video]
Type = local
BasePath = data/storage/video
MaxSize = 524288000

[Storage.files]
Type = local
BasePath = data/storage/files

[Dedup]
ScanWorkers = 8
ScanTimeoutMinutes = 10
ResultTTLMinutes = 60
# 每天凌晨 4 点对所有桶做一次重复文件扫描
ScanCron = 0 0 4 * * *
`

	if err := os.WriteFile(filePath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
