package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type AdminHTTP struct {
	Host string
	Port int
}

// Limits 保护性中间件参数；<=0 表示关闭对应中间件
type Limits struct {
	RequestTimeoutSec int
	MaxBodyBytes      int64
	RateRPS           float64
	RateBurst         int
	PerIPRPS          float64
	PerIPBurst        int
	MaxConcurrent     int64
}

type App struct {
	Name        string
	Env         string
	Mode        string   // gin mode: debug / release / test
	CORSOrigins []string // 为空时允许所有来源
	HTTP        HTTP
	Admin       AdminHTTP
	Limits      Limits
}

type LogFile struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	PageTTLSec int    `mapstructure:"pagettlsec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Upload struct {
	Dir      string
	MaxBytes int64
}

// Export.PDFFont / PDFBoldFont 为 UTF-8 TTF 路径，为空时使用内置 Go 字体
type Export struct {
	Title       string
	PDFCompress bool
	PDFFont     string
	PDFBoldFont string
}

// Bcrypt.Cost 为 0 时使用 bcrypt.DefaultCost
type Bcrypt struct {
	Cost int
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Upload Upload
	Export Export
	Bcrypt Bcrypt
}

const DefaultPath = "./configs/config.local.yaml"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "booking-users")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.mode", "release")
	v.SetDefault("app.corsorigins", []string{})
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 15)
	v.SetDefault("app.http.writetimeoutsec", 60)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("app.limits.requesttimeoutsec", 30)
	v.SetDefault("app.limits.maxbodybytes", 12<<20)
	v.SetDefault("app.limits.raterps", 200)
	v.SetDefault("app.limits.rateburst", 400)
	v.SetDefault("app.limits.periprps", 20)
	v.SetDefault("app.limits.peripburst", 40)
	v.SetDefault("app.limits.maxconcurrent", 256)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 7)
	v.SetDefault("log.file.maxagedays", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.issuer", "booking-users")
	v.SetDefault("jwt.accesstokenttlmin", 60)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:booking-users.db?_foreign_keys=on")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("redis.pagettlsec", 60)

	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.maxbytes", 10<<20)

	v.SetDefault("export.title", "Users")
	v.SetDefault("export.pdfcompress", true)
	v.SetDefault("export.pdffont", "")
	v.SetDefault("export.pdfboldfont", "")

	v.SetDefault("bcrypt.cost", 0)
}

// Load 读取 YAML（CONFIG_PATH 或默认路径），APP_ 前缀环境变量覆盖。
// 默认路径的文件不存在时只用默认值 + 环境变量；显式指定的文件不存在则报错。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		if path = os.Getenv("CONFIG_PATH"); path != "" {
			explicit = true
		} else {
			path = DefaultPath
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.Upload.Dir == "" {
		return errors.New("config: upload.dir is required")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("config: upload.maxBytes must be positive")
	}
	if c.App.HTTP.Port <= 0 || c.App.Admin.Port <= 0 {
		return errors.New("config: http ports must be positive")
	}
	return nil
}
