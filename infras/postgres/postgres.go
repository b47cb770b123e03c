package postgres

//nolint:revive
import (
	"context"
	"fmt"
	"net"
	"time"

	"driveease/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 5 * time.Second

// Connection holds the primary pool for writes and the replica pool for reads.
// Both may point at the same server.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type endpoint struct {
	role     string
	host     string
	port     string
	user     string
	password string
	name     string
	sslMode  string
}

func (e endpoint) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		e.user, e.password, net.JoinHostPort(e.host, e.port), e.name, e.sslMode)
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres

	write := endpoint{
		role: "write", host: pg.Write.Host, port: pg.Write.Port, user: pg.Write.Username,
		password: pg.Write.Password, name: DBName(cfg, pg.Write.Name), sslMode: pg.Write.SSLMode,
	}
	read := endpoint{
		role: "read", host: pg.Read.Host, port: pg.Read.Port, user: pg.Read.Username,
		password: pg.Read.Password, name: DBName(cfg, pg.Read.Name), sslMode: pg.Read.SSLMode,
	}

	return &Connection{
		Read:  connect(cfg, read),
		Write: connect(cfg, write),
	}
}

// DBName applies the configured prefix, used to isolate test databases.
func DBName(cfg *config.Config, baseName string) string {
	return cfg.DB.Postgres.Prefix + baseName
}

func connect(cfg *config.Config, target endpoint) *sqlx.DB {
	pg := cfg.DB.Postgres
	attempts := max(pg.MaxRetry, 1)
	wait := time.Duration(pg.RetryWaitTime) * time.Second

	logger := log.With().
		Str("role", target.role).
		Str("host", target.host).
		Str("port", target.port).
		Str("dbName", target.name).
		Logger()

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := open(target.dsn())
		if err == nil {
			db.SetMaxOpenConns(pg.MaxOpenConns)
			db.SetMaxIdleConns(pg.MaxIdleConns)
			db.SetConnMaxLifetime(time.Duration(pg.ConnMaxLifetimeMinutes) * time.Minute)

			logger.Info().Int("maxOpen", pg.MaxOpenConns).Msg("Connected to database")

			return db
		}

		lastErr = err

		logger.Error().Err(err).Int("attempt", attempt).Int("of", attempts).Msg("Failed connecting to database")

		if attempt < attempts {
			time.Sleep(wait)
		}
	}

	logger.Fatal().Err(lastErr).Msg("Giving up on database")

	return nil
}

func open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping: %w", err)
	}

	return db, nil
}
