package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppCfg is the process configuration: ports, backing services and budgets.
type AppCfg struct {
	Port        string
	Env         string
	ParserPath  string
	MongoURL    string
	MongoDB     string
	RedisURL    string
	MeiliURL    string
	MeiliKey    string
	L1CacheSize int
	CacheTTL    time.Duration
	UseRedis    bool
	BatchBudget time.Duration
	UserAgent   string
	JobTTL      time.Duration
}

// LoadApp reads config/app.yaml (or ./app.yaml) and the environment. A
// missing file is not an error; defaults and env still apply. APP_PORT
// overrides app.port, MONGO_URL overrides mongo.url and so on.
func LoadApp(v *viper.Viper) (AppCfg, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("parser.config", "config/parser.yaml")
	v.SetDefault("mongo.url", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "salary_parser")
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("redis.enabled", true)
	v.SetDefault("meilisearch.url", "http://localhost:7700")
	v.SetDefault("meilisearch.master_key", "")
	v.SetDefault("cache.l1_size", 10000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("worker.budget", "30m")
	v.SetDefault("worker.user_agent", "salary-parser/1.0")
	v.SetDefault("jobs.ttl", "1h")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return AppCfg{}, err
		}
	}

	return AppCfg{
		Port:        v.GetString("app.port"),
		Env:         v.GetString("app.env"),
		ParserPath:  v.GetString("parser.config"),
		MongoURL:    v.GetString("mongo.url"),
		MongoDB:     v.GetString("mongo.database"),
		RedisURL:    v.GetString("redis.url"),
		UseRedis:    v.GetBool("redis.enabled"),
		MeiliURL:    v.GetString("meilisearch.url"),
		MeiliKey:    v.GetString("meilisearch.master_key"),
		L1CacheSize: v.GetInt("cache.l1_size"),
		CacheTTL:    v.GetDuration("cache.ttl"),
		BatchBudget: v.GetDuration("worker.budget"),
		UserAgent:   v.GetString("worker.user_agent"),
		JobTTL:      v.GetDuration("jobs.ttl"),
	}, nil
}

// IsProduction selects the production logger.
func (c AppCfg) IsProduction() bool {
	return c.Env == "production"
}
