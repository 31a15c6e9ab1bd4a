package config

import "os"

// ApplyEnv overlays environment variables on top of the loaded
// configuration. Deployment sets these, the file carries the rest.
func (c *AppConfig) ApplyEnv() {
	apply := func(target *string, env string) {
		if v := os.Getenv(env); v != "" {
			*target = v
		}
	}
	apply(&c.Server.Listen, "LISTEN_ADDRESS")
	apply(&c.Rabbit.Url, "RABBIT_URL")
	apply(&c.Rabbit.VHost, "RABBIT_VHOST")
	apply(&c.Redis.Addr, "REDIS_URL")
	apply(&c.Redis.Password, "REDIS_PASSWORD")
	apply(&c.Storage.Path, "STORAGE_PATH")
}
