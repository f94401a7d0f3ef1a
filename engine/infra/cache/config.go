package cache

import "time"

// Config holds Redis connection settings.
type Config struct {
	URL         string        `json:"url,omitempty"          mapstructure:"url"`
	Host        string        `json:"host,omitempty"         mapstructure:"host"`
	Port        string        `json:"port,omitempty"         mapstructure:"port"`
	Password    string        `json:"password,omitempty"     mapstructure:"password"`
	DB          int           `json:"db,omitempty"           mapstructure:"db"`
	PoolSize    int           `json:"pool_size,omitempty"    mapstructure:"pool_size"`
	DialTimeout time.Duration `json:"dial_timeout,omitempty" mapstructure:"dial_timeout"`
	PingTimeout time.Duration `json:"ping_timeout,omitempty" mapstructure:"ping_timeout"`
}

// Addr returns the host:port address, defaulting to localhost:6379.
func (c *Config) Addr() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == "" {
		port = "6379"
	}
	return host + ":" + port
}
