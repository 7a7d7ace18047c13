package config

// LoadTestConfig returns a fixed configuration for tests: in-memory SQLite
// and a throwaway JWT secret.
func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8081,
		},
		Database: DatabaseConfig{
			SQLitePath: "file::memory:?cache=shared",
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
	}
}
