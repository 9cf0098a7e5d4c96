package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

var Rds *redis.Client

func NewCache() error {
	Rds = redis.NewClient(&redis.Options{
		Addr:     viper.GetString("cache.addr"),
		Password: viper.GetString("cache.password"),
		DB:       viper.GetInt("cache.db"),
	})

	return Rds.Ping(context.Background()).Err()
}
