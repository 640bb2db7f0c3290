package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	HTTPPort               string
	StoreDriver            string
	DBHost                 string
	DBPort                 string
	DBUser                 string
	DBPassword             string
	DBName                 string
	DBSslMode              string
	JWTSecret              string
	KafkaHost              string
	KafkaParcelEventsTopic string
	RelaySchedule          string
	RelayBatchSize         string
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver)
	}
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if _, err := c.relayBatchSize(); err != nil {
		return err
	}
	return nil
}

// DSN is the postgres connection string shared by gorm and the change
// listener.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) kafkaBrokers() []string {
	var brokers []string
	for _, host := range strings.Split(c.KafkaHost, ",") {
		if host = strings.TrimSpace(host); host != "" {
			brokers = append(brokers, host)
		}
	}
	return brokers
}

func (c Config) relayBatchSize() (int, error) {
	if c.RelayBatchSize == "" {
		return defaultRelayBatchSize, nil
	}
	n, err := strconv.Atoi(c.RelayBatchSize)
	if err != nil {
		return 0, fmt.Errorf("RELAY_BATCH_SIZE: %w", err)
	}
	return n, nil
}
