package config

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var (
	DB   *sqlx.DB
	dbMu sync.Mutex
)

// ConnectDB initializes the shared DB connection (idempotent).
func ConnectDB(cfg DBConfig) (*sqlx.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		return DB, nil
	}

	driver, dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	DB = db
	zap.L().Info("database connected", zap.String("driver", driver), zap.String("host", cfg.Host))
	return DB, nil
}

// BuildDSN returns the sqlx driver name and connection string for cfg.
func BuildDSN(cfg DBConfig) (string, string, error) {
	switch cfg.Driver {
	case "mysql":
		if cfg.DSN != "" {
			return "mysql", cfg.DSN, nil
		}
		port := cfg.Port
		if port == "" {
			port = "3306"
		}
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Pass
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, port)
		mc.DBName = cfg.Name
		mc.ParseTime = true
		// RowsAffected counts matched rows, which the inventory guard relies on.
		mc.ClientFoundRows = true
		mc.Loc = time.UTC
		mc.Timeout = 5 * time.Second
		mc.ReadTimeout = 30 * time.Second
		mc.WriteTimeout = 30 * time.Second
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return "mysql", mc.FormatDSN(), nil
	case "postgres":
		if cfg.DSN != "" {
			return "postgres", cfg.DSN, nil
		}
		port := cfg.Port
		if port == "" {
			port = "5432"
		}
		dsn := "host=" + cfg.Host + " port=" + port + " user=" + cfg.User + " password=" + cfg.Pass + " dbname=" + cfg.Name + " sslmode=disable"
		return "postgres", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

func EnsureDB() error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB == nil {
		return fmt.Errorf("database not connected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return DB.PingContext(ctx)
}

func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
}
