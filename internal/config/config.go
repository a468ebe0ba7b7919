package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DateLayout = "2006-01-02"

type Config struct {
	App       AppConfig
	Generator GeneratorConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Drive     DriveConfig
}

type AppConfig struct {
	OutputDir string
	LogLevel  string
	LogFormat string
}

type GeneratorConfig struct {
	Products    int
	StartDate   time.Time
	Days        int
	Seed        uint64
	Workers     int
	Locales     []string
	LocaleFiles []string
	Verify      bool
	ExportXLSX  bool
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ManifestTTLSeconds int
}

type StorageConfig struct {
	Driver    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults(viper.GetViper())

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_OUTPUT_DIR"))

		instance = fromViper(viper.GetViper())
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_OUTPUT_DIR", "./output")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("GENERATOR_PRODUCTS", 200)
	v.SetDefault("GENERATOR_START_DATE", "2022-01-01")
	v.SetDefault("GENERATOR_DAYS", 365*2)
	v.SetDefault("GENERATOR_SEED", 0)
	v.SetDefault("GENERATOR_WORKERS", 1)
	v.SetDefault("GENERATOR_LOCALES", []string{"en_US", "es_ES"})
	v.SetDefault("GENERATOR_LOCALE_FILES", []string{})
	v.SetDefault("GENERATOR_VERIFY", true)
	v.SetDefault("EXPORT_XLSX", false)

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "shopgen")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_MANIFEST_TTL_SECONDS", 3600)

	v.SetDefault("STORAGE_DRIVER", "minio")
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "shopgen")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_PREFIX", "datasets")
	v.SetDefault("STORAGE_USE_SSL", true)

	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("GOOGLE_DRIVE_FOLDER_ID", "")
}

func fromViper(v *viper.Viper) *Config {
	start, err := time.Parse(DateLayout, v.GetString("GENERATOR_START_DATE"))
	if err != nil {
		log.Printf("invalid GENERATOR_START_DATE %q, using 2022-01-01: %v", v.GetString("GENERATOR_START_DATE"), err)
		start = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	return &Config{
		App: AppConfig{
			OutputDir: v.GetString("APP_OUTPUT_DIR"),
			LogLevel:  v.GetString("LOG_LEVEL"),
			LogFormat: v.GetString("LOG_FORMAT"),
		},
		Generator: GeneratorConfig{
			Products:    v.GetInt("GENERATOR_PRODUCTS"),
			StartDate:   start,
			Days:        v.GetInt("GENERATOR_DAYS"),
			Seed:        v.GetUint64("GENERATOR_SEED"),
			Workers:     v.GetInt("GENERATOR_WORKERS"),
			Locales:     v.GetStringSlice("GENERATOR_LOCALES"),
			LocaleFiles: v.GetStringSlice("GENERATOR_LOCALE_FILES"),
			Verify:      v.GetBool("GENERATOR_VERIFY"),
			ExportXLSX:  v.GetBool("EXPORT_XLSX"),
		},
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:            v.GetBool("CACHE_ENABLED"),
			RedisURL:           v.GetString("REDIS_URL"),
			RedisHost:          v.GetString("REDIS_HOST"),
			RedisPort:          v.GetString("REDIS_PORT"),
			RedisPassword:      v.GetString("REDIS_PASSWORD"),
			RedisDB:            v.GetInt("REDIS_DB"),
			ManifestTTLSeconds: v.GetInt("CACHE_MANIFEST_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Driver:    v.GetString("STORAGE_DRIVER"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			Prefix:    v.GetString("STORAGE_PREFIX"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderID:        v.GetString("GOOGLE_DRIVE_FOLDER_ID"),
		},
	}
}

// DSN returns DATABASE_URL when set, otherwise a key/value connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return "host=" + c.Host + " port=" + c.Port + " user=" + c.User +
		" password=" + c.Password + " dbname=" + c.DBName + " sslmode=" + c.SSLMode
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
