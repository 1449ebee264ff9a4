package config

import (
	"os"
	"time"
)

// QueueConfig describes where lifecycle events are published. An empty URL
// disables publishing. DialTimeout bounds the broker connect and handshake.
type QueueConfig struct {
	URL         string
	Name        string
	Service     string
	DialTimeout time.Duration
}

func LoadQueueConfig() QueueConfig {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = os.Getenv("AMQP_URL")
	}
	return QueueConfig{
		URL:         url,
		Name:        envStr("QUEUE_NAME", "app.lifecycle"),
		Service:     envStr("SERVICE_NAME", "application-tier"),
		DialTimeout: envDur("QUEUE_DIAL_TIMEOUT", 2*time.Second),
	}
}
