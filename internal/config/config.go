package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	StoreBackendKey     = "STORE_BACKEND"
	StoreKeyPrefixKey   = "STORE_KEY_PREFIX"
	StoreCompressKey    = "STORE_COMPRESS"
	InvoiceNumberingKey = "INVOICE_NUMBERING"
	SQLitePathKey       = "SQLITE_PATH"

	DDBEndpointKey = "DDB_ENDPOINT"
	DDBTableKey    = "DDB_TABLE"
	AWSRegionKey   = "AWS_REGION"

	RedisHostKey  = "REDIS_HOST"
	RedisPortKey  = "REDIS_PORT"
	RedisUserKey  = "REDIS_USER"
	RedisPassKey  = "REDIS_PASS"
	RedisTLSKey   = "REDIS_SSL"
	RedisDBNumKey = "REDIS_DB_NUM"

	ShareTopicARNKey = "SHARE_TOPIC_ARN"
	SNSEndpointKey   = "SNS_ENDPOINT"

	SeedFileKey  = "SEED_FILE"
	LogLevelKey  = "LOG_LEVEL"
	LogFormatKey = "LOG_FORMAT"
)

type Config struct {
	Backend    string
	KeyPrefix  string
	Compress   bool
	Numbering  string
	SQLitePath string
	SeedFile   string
	Region     string // AWS region of the DynamoDB table and the share topic

	Redis RedisConfig
	DDB   DDBConfig
	Share ShareConfig
	Log   LogConfig
}

type RedisConfig struct {
	Host string
	Port string
	User string
	Pass string
	TLS  bool
	DB   int
}

// Addr is the host:port dial address.
func (r RedisConfig) Addr() string { return fmt.Sprintf("%s:%s", r.Host, r.Port) }

type DDBConfig struct {
	// Endpoint overrides the AWS endpoint; used against local mocks only.
	Endpoint string
	Table    string
}

type ShareConfig struct {
	TopicARN    string
	SNSEndpoint string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads the .env file named by ENV_FILE (default ".env") when present, then resolves every setting
// from the environment with defaults for a single-device setup backed by a local SQLite file.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Debugf("The %s file not found.", envFile)
	}

	v := viper.New()
	v.SetDefault(StoreBackendKey, "sqlite")
	v.SetDefault(StoreKeyPrefixKey, "")
	v.SetDefault(StoreCompressKey, false)
	v.SetDefault(InvoiceNumberingKey, "sequence")
	v.SetDefault(SQLitePathKey, "invoicer.db")
	v.SetDefault(DDBTableKey, "invoicer")
	v.SetDefault(AWSRegionKey, "us-east-1")
	v.SetDefault(RedisHostKey, "localhost")
	v.SetDefault(RedisPortKey, "6379")
	v.SetDefault(RedisTLSKey, false)
	v.SetDefault(RedisDBNumKey, 0)
	v.SetDefault(LogLevelKey, "info")
	v.SetDefault(LogFormatKey, "text")
	v.AutomaticEnv()

	cfg := &Config{
		Backend:    strings.ToLower(v.GetString(StoreBackendKey)),
		KeyPrefix:  v.GetString(StoreKeyPrefixKey),
		Compress:   v.GetBool(StoreCompressKey),
		Numbering:  strings.ToLower(v.GetString(InvoiceNumberingKey)),
		SQLitePath: v.GetString(SQLitePathKey),
		SeedFile:   v.GetString(SeedFileKey),
		Region:     v.GetString(AWSRegionKey),
		Redis: RedisConfig{
			Host: v.GetString(RedisHostKey),
			Port: v.GetString(RedisPortKey),
			User: v.GetString(RedisUserKey),
			Pass: v.GetString(RedisPassKey),
			TLS:  v.GetBool(RedisTLSKey),
			DB:   v.GetInt(RedisDBNumKey),
		},
		DDB: DDBConfig{
			Endpoint: v.GetString(DDBEndpointKey),
			Table:    v.GetString(DDBTableKey),
		},
		Share: ShareConfig{
			TopicARN:    v.GetString(ShareTopicARNKey),
			SNSEndpoint: v.GetString(SNSEndpointKey),
		},
		Log: LogConfig{
			Level:  v.GetString(LogLevelKey),
			Format: v.GetString(LogFormatKey),
		},
	}

	if cfg.Numbering != "sequence" && cfg.Numbering != "count" {
		return nil, fmt.Errorf("%s must be \"sequence\" or \"count\", got %q", InvoiceNumberingKey, cfg.Numbering)
	}
	return cfg, nil
}

// Apply configures the process-wide logrus logger.
func (c LogConfig) Apply() {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		log.Warnf("invalid %s %q, using info", LogLevelKey, c.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if strings.EqualFold(c.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
