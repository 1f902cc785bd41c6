package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/libertine-io/library-backend/pkg/kafka"
	"github.com/libertine-io/library-backend/pkg/logger"
	"github.com/libertine-io/library-backend/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LIBRARY_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"LIBRARY_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"5s"`
	WriteTimeout time.Duration
}

// Policy holds the lending rules with the product defaults.
type Policy struct {
	MaxBooksPerUser  int     `yaml:"maxBooksPerUser" envconfig:"MAX_BOOKS_PER_USER" default:"3"`
	DailyPenaltyRate float64 `yaml:"dailyPenaltyRate" envconfig:"DAILY_PENALTY_RATE" default:"10.00"`
	MaxBorrowDays    int     `yaml:"maxBorrowDays" envconfig:"MAX_BORROW_DAYS" default:"30"`
}

type Config struct {
	Server   HTTPServer   `yaml:"server"`
	Database postgres.DB  `yaml:"db"`
	Kafka    kafka.Config `yaml:"kafka"`
	Policy   Policy       `yaml:"policy"`
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
