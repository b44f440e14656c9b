package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Observ ObservabilityConfig
	IDs    IDConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	TopicEvents   string
	ConsumerGroup string
}

// ObservabilityConfig points tracing at the collector. Metrics need no
// address of their own; they are scraped from /metrics on the server port.
type ObservabilityConfig struct {
	JaegerEndpoint string
}

// IDConfig holds the starting points for the id allocator.
type IDConfig struct {
	ReservationSeed int64
	TransactionSeed int64
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	reservationSeed, _ := strconv.ParseInt(getEnv("RESERVATION_ID_SEED", "1"), 10, 64)
	transactionSeed, _ := strconv.ParseInt(getEnv("TRANSACTION_ID_SEED", "1000"), 10, 64)

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicEvents:   getEnv("KAFKA_TOPIC_RESERVATION_EVENTS", "reservation-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "dining-service-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		IDs: IDConfig{
			ReservationSeed: reservationSeed,
			TransactionSeed: transactionSeed,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s", cfg.Server.Env, cfg.Server.Port)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
