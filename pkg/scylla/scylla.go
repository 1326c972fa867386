package scylla

import (
	"fmt"
	"time"

	"github.com/ds124wfegd/voucher-reminder/config"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"
)

// migrations create the tables the reminder sweep reads and writes in the
// session keyspace. Every statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS vouchers (
		id text PRIMARY KEY,
		code text,
		value double,
		expiry_date timestamp,
		status text,
		last_reminder_sent timestamp,
		last_reminder_type text,
		days_until_expiry_at_reminder int,
		buyer_id text,
		boutique_id text,
		shop_id text
	)`,
	`CREATE TABLE IF NOT EXISTS users (id text PRIMARY KEY, email text, name text)`,
	`CREATE TABLE IF NOT EXISTS establishments (id text PRIMARY KEY, user_id text, name text, voucher_usage_conditions text)`,
	`CREATE TABLE IF NOT EXISTS mail (id uuid PRIMARY KEY, recipient text, subject text, html text, status text, created_at timestamp)`,
}

func newCluster(cfg *config.ScyllaConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = cfg.Timeout
	cluster.NumConns = cfg.NumConns
	cluster.ReconnectInterval = 1 * time.Second

	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

func NewSession(cfg *config.ScyllaConfig) (*gocql.Session, error) {
	session, err := newCluster(cfg).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create scylla session for keyspace %s: %w", cfg.Keyspace, err)
	}

	logrus.WithField("keyspace", cfg.Keyspace).Info("Successfully connected to ScyllaDB")
	return session, nil
}

// RunMigrations applies the table definitions. The keyspace itself is
// provisioned by ops.
func RunMigrations(session *gocql.Session) error {
	for _, migration := range migrations {
		if err := session.Query(migration).Exec(); err != nil {
			return fmt.Errorf("failed to execute scylla migration: %w", err)
		}
	}

	logrus.Info("Scylla migrations completed successfully")
	return nil
}
