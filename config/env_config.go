package config

import (
	"os"
	"strconv"
	"strings"
)

type EnvConfig struct {
	Postgres struct {
		HOST     string
		Database string
		Username string
		Password string
		Port     string
	}
	JWT struct {
		SecretKey string
		Algorithm string
		Expire    int
	}
	CORS struct {
		AllowDomains string
		GlobalDomain string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Minio struct {
		Endpoint     string
		RootUser     string
		RootPassword string
		Bucket       string
		Region       string
		UseSSL       bool
	}
	Upload struct {
		SignedURLExpireSeconds int   // Default 900 (15 minutes)
		MultipartThreshold     int64 // Default 50MB (52428800 bytes)
		PendingTTLSeconds      int   // Default 86400 (1 day)
	}
	Storage struct {
		FreeQuotaBytes int64 // Default 10GB
		ProQuotaBytes  int64 // Default 1TB
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	Environment struct {
		Mode  string
		Group string
	}
	DomainName string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.HOST = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = os.Getenv("PGPOOL_PORT")

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")
	config.JWT.Algorithm = os.Getenv("JWT_ALGORITHM")
	if val, err := strconv.Atoi(os.Getenv("JWT_EXPIRE")); err == nil && val > 0 {
		config.JWT.Expire = val
	} else {
		config.JWT.Expire = 3600 * 24 * 7
	}

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")
	config.CORS.GlobalDomain = os.Getenv("GLOBAL_DOMAIN")

	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.RedisHost = os.Getenv("REDIS_HOST")
	config.Redis.RedisPort = os.Getenv("REDIS_PORT")

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	if config.RabbitMQ.Host == "" {
		config.RabbitMQ.Host = "localhost"
	}
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}

	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.RootUser = os.Getenv("MINIO_ROOT_USER")
	config.Minio.RootPassword = os.Getenv("MINIO_ROOT_PASSWORD")
	config.Minio.Bucket = os.Getenv("MINIO_BUCKET")
	if config.Minio.Bucket == "" {
		config.Minio.Bucket = "drive-blobs"
	}
	config.Minio.Region = os.Getenv("MINIO_REGION")
	if config.Minio.Region == "" {
		config.Minio.Region = "us-east-1"
	}
	config.Minio.UseSSL = os.Getenv("MINIO_USE_SSL") == "true"

	// Upload configuration
	if val, err := strconv.Atoi(os.Getenv("SIGNED_URL_EXPIRE_SECONDS")); err == nil && val > 0 {
		config.Upload.SignedURLExpireSeconds = val
	} else {
		config.Upload.SignedURLExpireSeconds = 900 // Default 15 minutes
	}
	if val, err := strconv.ParseInt(os.Getenv("MULTIPART_THRESHOLD"), 10, 64); err == nil && val > 0 {
		config.Upload.MultipartThreshold = val
	} else {
		config.Upload.MultipartThreshold = 52428800 // Default 50MB
	}
	if val, err := strconv.Atoi(os.Getenv("PENDING_UPLOAD_TTL_SECONDS")); err == nil && val > 0 {
		config.Upload.PendingTTLSeconds = val
	} else {
		config.Upload.PendingTTLSeconds = 86400 // Default 1 day
	}

	// Storage quotas
	if val, err := strconv.ParseInt(os.Getenv("FREE_QUOTA_BYTES"), 10, 64); err == nil && val > 0 {
		config.Storage.FreeQuotaBytes = val
	} else {
		config.Storage.FreeQuotaBytes = 10 * 1024 * 1024 * 1024 // Default 10GB
	}
	if val, err := strconv.ParseInt(os.Getenv("PRO_QUOTA_BYTES"), 10, 64); err == nil && val > 0 {
		config.Storage.ProQuotaBytes = val
	} else {
		config.Storage.ProQuotaBytes = 1024 * 1024 * 1024 * 1024 // Default 1TB
	}

	// Grafana/OpenTelemetry
	grafanaEndpoint := os.Getenv("GRAFANA_OTLP_ENDPOINT")
	// Remove protocol for OpenTelemetry client to avoid duplicate protocols
	if strings.HasPrefix(grafanaEndpoint, "https://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	} else if strings.HasPrefix(grafanaEndpoint, "http://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	} else {
		config.Grafana.OTLPEndpoint = grafanaEndpoint
	}
	config.Grafana.ServiceName = os.Getenv("SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "drive-service"
	}

	config.Environment.Mode = os.Getenv("DEPLOY_ENV")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}
	config.Environment.Group = os.Getenv("GROUP_NAME")
	if config.Environment.Group == "" {
		config.Environment.Group = "local"
	}

	config.DomainName = os.Getenv("DOMAIN_NAME")
	if config.DomainName == "" {
		config.DomainName = "localhost:8080"
	}

	return &config
}
