package config

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/viper"
)

func asynqRedisOpt(v *viper.Viper) asynq.RedisClientOpt {
	host := v.GetString("redis.host")
	if host == "" {
		host = "127.0.0.1"
	}

	port := v.GetInt("redis.port")
	if port == 0 {
		port = 6379
	}

	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
}

func NewAsynqClient(v *viper.Viper) *asynq.Client {
	return asynq.NewClient(asynqRedisOpt(v))
}

func NewAsynqServer(v *viper.Viper) *asynq.Server {
	concurrency := v.GetInt("asynq.concurrency")
	if concurrency <= 0 {
		concurrency = 5
	}

	return asynq.NewServer(asynqRedisOpt(v), asynq.Config{
		Concurrency: concurrency,
	})
}

// NewAsynqScheduler enqueues the settlement batches at UTC midnight and the
// reconciliation pass every minute.
func NewAsynqScheduler(v *viper.Viper) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(asynqRedisOpt(v), nil)

	if _, err := scheduler.Register("0 0 * * *", asynq.NewTask(TypeSettlementDaily, nil)); err != nil {
		return nil, fmt.Errorf("register daily settlement: %w", err)
	}
	if _, err := scheduler.Register("0 0 * * 1", asynq.NewTask(TypeSettlementWeekly, nil)); err != nil {
		return nil, fmt.Errorf("register weekly settlement: %w", err)
	}

	interval := v.GetString("reconciliation.interval")
	if interval == "" {
		interval = "@every 1m"
	}
	if _, err := scheduler.Register(interval, asynq.NewTask(TypeReconciliationRun, nil)); err != nil {
		return nil, fmt.Errorf("register reconciliation pass: %w", err)
	}

	return scheduler, nil
}
