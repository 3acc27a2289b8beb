package session

import "time"

const (
	DriverJWT   = "jwt"
	DriverRedis = "redis"
)

// Config selects and configures the resolver used by the server.
type Config struct {
	Driver     string        `env:"SESSION_DRIVER" envDefault:"jwt"`
	JWTSecret  string        `env:"JWT_SECRET"`
	JWTIssuer  string        `env:"JWT_ISSUER" envDefault:"notifications"`
	TokenTTL   time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"24h"`
	QueryParam string        `env:"SESSION_QUERY_PARAM" envDefault:"access_token"`
	KeyPrefix  string        `env:"SESSION_REDIS_PREFIX" envDefault:"session:"`
}
