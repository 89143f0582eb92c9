// config.go
package config

import "os"

type Config struct {
	MongoURI    string
	MongoDBName string
	RabbitURL   string
	RedisAddr   string
	AuthURL     string
	MailURL     string
	Port        string
}

func Load() *Config {
	return &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "kryptic_store"),
		RabbitURL:   getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		RedisAddr:   getEnv("REDIS_ADDR", "host.docker.internal:6379"),
		AuthURL:     getEnv("AUTH_URL", "http://host.docker.internal:3000"),
		MailURL:     getEnv("MAIL_URL", "http://host.docker.internal:3006"),
		Port:        getEnv("PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
