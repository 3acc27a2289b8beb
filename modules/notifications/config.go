package notifications

import "time"

// Config tunes the live delivery channel.
type Config struct {
	StreamBuffer    int           `env:"NOTIFY_STREAM_BUFFER" envDefault:"32"`
	StreamHeartbeat time.Duration `env:"NOTIFY_STREAM_HEARTBEAT" envDefault:"25s"`
}
