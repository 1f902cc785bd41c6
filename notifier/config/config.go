package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/libertine-io/library-backend/notifier/internal/mail"
	"github.com/libertine-io/library-backend/pkg/kafka"
	"github.com/libertine-io/library-backend/pkg/logger"
	"github.com/libertine-io/library-backend/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"NOTIFIER_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"NOTIFIER_HTTP_PORT" default:"8081"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"5s"`
	WriteTimeout time.Duration
}

type Reminder struct {
	// DaysAhead is how far before the due date a reminder goes out.
	DaysAhead int `yaml:"daysAhead" envconfig:"REMINDER_DAYS_AHEAD" default:"3"`
}

type Config struct {
	Server   HTTPServer   `yaml:"server"`
	Database postgres.DB  `yaml:"db"`
	Kafka    kafka.Config `yaml:"kafka"`
	Mail     mail.Config  `yaml:"mail"`
	Reminder Reminder     `yaml:"reminder"`
	Log      logger.Log   `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
