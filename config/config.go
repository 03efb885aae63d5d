package config

import (
	"flag"
	"os"
	"sync"
	"time"
)

const (
	defaultServerAddr        = ":8080"
	defaultDatabaseDSN       = ""
	defaultPaymentSystemAddr = ":8181"
	defaultMailerAddr        = ""
	defaultNATSURL           = ""
	defaultClientOrigin      = ""
	defaultLogLevel          = "debug"
	defaultPollInterval      = 5 * time.Second
)

type Config struct {
	ServerAddr          string
	DatabaseDSN         string
	PaymentSystemAddr   string
	MailerAddr          string
	NATSURL             string
	ClientOrigin        string
	LogLevel            string
	PaymentPollInterval time.Duration
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddr, "mealmart server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "mealmart database DSN")
		flag.StringVar(&cfg.PaymentSystemAddr, "p", defaultPaymentSystemAddr, "payment system address")
		flag.StringVar(&cfg.MailerAddr, "m", defaultMailerAddr, "mail relay address, empty disables email")
		flag.StringVar(&cfg.NATSURL, "n", defaultNATSURL, "NATS URL for the fanout bridge, empty disables it")
		flag.StringVar(&cfg.ClientOrigin, "c", defaultClientOrigin, "allowed browser origin for websocket connections, empty allows all")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
		flag.DurationVar(&cfg.PaymentPollInterval, "i", defaultPollInterval, "payment poll interval")

		flag.Parse()

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if dataBaseURIEnv := os.Getenv("DATABASE_URI"); dataBaseURIEnv != "" {
			cfg.DatabaseDSN = dataBaseURIEnv
		}
		if paymentSysAddrEnv := os.Getenv("PAYMENT_SYSTEM_ADDRESS"); paymentSysAddrEnv != "" {
			cfg.PaymentSystemAddr = paymentSysAddrEnv
		}
		if mailerAddrEnv := os.Getenv("MAILER_ADDRESS"); mailerAddrEnv != "" {
			cfg.MailerAddr = mailerAddrEnv
		}
		if natsURLEnv := os.Getenv("NATS_URL"); natsURLEnv != "" {
			cfg.NATSURL = natsURLEnv
		}
		if clientURLEnv := os.Getenv("CLIENT_URL"); clientURLEnv != "" {
			cfg.ClientOrigin = clientURLEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}
		if pollIntervalEnv := os.Getenv("PAYMENT_POLL_INTERVAL"); pollIntervalEnv != "" {
			if d, err := time.ParseDuration(pollIntervalEnv); err == nil {
				cfg.PaymentPollInterval = d
			}
		}

		singleton = &cfg
	})

	return singleton, nil
}
