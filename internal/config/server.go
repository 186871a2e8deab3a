package config

import (
	"fmt"
	"net"
	"strconv"
)

// ServerConfig represents the [server] section
type ServerConfig struct {
	Host string `toml:"host" mapstructure:"host"`
	Port int    `toml:"port" mapstructure:"port"`

	// Admin enables administrative RPC methods such as clock_advance
	Admin bool `toml:"admin" mapstructure:"admin"`

	// SendQueueLimit bounds the events buffered per websocket subscriber
	SendQueueLimit int `toml:"send_queue_limit" mapstructure:"send_queue_limit"`
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Validate performs validation on the server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.Host != "" && s.Host != "localhost" && net.ParseIP(s.Host) == nil {
		return fmt.Errorf("invalid host address: %s", s.Host)
	}
	if s.SendQueueLimit < 0 {
		return fmt.Errorf("send_queue_limit must be non-negative, got %d", s.SendQueueLimit)
	}
	return nil
}
