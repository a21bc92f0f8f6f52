// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"log"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Config 是所有服务共享的配置结构。
// 配置来源：yaml 文件（CONFIG_PATH 指定）+ 环境变量覆盖。
type Config struct {
	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
		} `yaml:"kafka"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
	} `yaml:"infra"`

	Services struct {
		MenuCatalogURL string `yaml:"menu_catalog_url"`
		DirectoryURL   string `yaml:"directory_url"`
	} `yaml:"services"`

	App struct {
		NotificationTopic string `yaml:"notification_topic"`
		// 开启后，预订写入会额外套一层 zookeeper 按桌分布式锁
		EnableReservationLock bool `yaml:"enable_reservation_lock"`
		// 开启后，限量奖励兑换走 redis 快速路径预扣
		EnableRewardFastPath bool `yaml:"enable_reward_fast_path"`
	} `yaml:"app"`
}

var currentConfig atomic.Pointer[Config]

// Init 加载配置。必须在 StartService 之前调用。
func Init() {
	cfg := defaultConfig()

	if path := getEnv("CONFIG_PATH", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("FATAL: cannot read config file %s: %v", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("FATAL: cannot parse config file %s: %v", path, err)
		}
	}

	// 环境变量优先级高于文件
	cfg.Infra.Mysql.DSN = getEnv("MYSQL_DSN", cfg.Infra.Mysql.DSN)
	cfg.Infra.Redis.Addr = getEnv("REDIS_ADDR", cfg.Infra.Redis.Addr)
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.Infra.Kafka.Brokers = strings.Split(brokers, ",")
	}
	if servers := getEnv("ZK_SERVERS", ""); servers != "" {
		cfg.Infra.Zookeeper.Servers = strings.Split(servers, ",")
	}
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Infra.Jaeger.Endpoint)
	cfg.Services.MenuCatalogURL = getEnv("MENU_CATALOG_URL", cfg.Services.MenuCatalogURL)
	cfg.Services.DirectoryURL = getEnv("DIRECTORY_URL", cfg.Services.DirectoryURL)
	cfg.App.NotificationTopic = getEnv("NOTIFICATION_TOPIC", cfg.App.NotificationTopic)

	currentConfig.Store(cfg)
}

// GetCurrentConfig 返回当前配置。Init 之前调用会得到默认值。
func GetCurrentConfig() *Config {
	if c := currentConfig.Load(); c != nil {
		return c
	}
	c := defaultConfig()
	currentConfig.Store(c)
	return c
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Infra.Mysql.DSN = "root:root@tcp(localhost:3306)/bistro?parseTime=true"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Zookeeper.Servers = []string{"localhost:2181"}
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Services.MenuCatalogURL = "http://localhost:8091"
	cfg.Services.DirectoryURL = "http://localhost:8092"
	cfg.App.NotificationTopic = "booking-notifications"
	return cfg
}
