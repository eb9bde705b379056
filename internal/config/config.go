package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ListenAddr         string
	AllowedOrigins     []string
	STUNServers        []string
	MaxRoomSize        int
	SendQueueSize      int
	MaxMessageBytes    int64
	PingIntervalSec    int
	PongWaitSec        int
	ShutdownTimeoutSec int
}

func Load() *Config {
	return &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":4444"),
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", "*"),
		STUNServers:        getEnvList("STUN_SERVERS", "stun:stun.l.google.com:19302"),
		MaxRoomSize:        getEnvInt("MAX_ROOM_SIZE", 0),
		SendQueueSize:      getEnvInt("SEND_QUEUE_SIZE", 256),
		MaxMessageBytes:    int64(getEnvInt("MAX_MESSAGE_BYTES", 64*1024)),
		PingIntervalSec:    getEnvInt("PING_INTERVAL_SEC", 2),
		PongWaitSec:        getEnvInt("PONG_WAIT_SEC", 5),
		ShutdownTimeoutSec: getEnvInt("SHUTDOWN_TIMEOUT_SEC", 5),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
