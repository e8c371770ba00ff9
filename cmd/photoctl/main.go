// Command photoctl is the operator tool for the photoshare API: it lists
// accounts, changes roles and applies the database schema.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/photoshare-api/internal/config"
	"github.com/iliyamo/photoshare-api/internal/database"
	"github.com/iliyamo/photoshare-api/internal/repository"
	"github.com/iliyamo/photoshare-api/internal/service"
	"github.com/iliyamo/photoshare-api/internal/utils"
)

const Version = "0.1.0"

func main() {
	if err := rootCmd(envBackend{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// envBackend opens the database described by the environment.
type envBackend struct{}

func (envBackend) open() (*sql.DB, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, err
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return db, cfg, err
}

func (b envBackend) Users(ctx context.Context) (UserAdmin, func(), error) {
	db, cfg, err := b.open()
	if err != nil {
		return nil, nil, err
	}
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	done := func() {
		if rdb != nil {
			rdb.Close()
		}
		db.Close()
	}
	auth, err := newUserAdmin(db, rdb, cfg)
	if err != nil {
		done()
		return nil, nil, err
	}
	return auth, done, nil
}

// newUserAdmin builds the Authenticator the commands run against.  With
// rdb set it shares the API's session cache, so a role change drops the
// cached user and the API sees it on the next request.  Without Redis the
// API has no cache either.
func newUserAdmin(db *sql.DB, rdb *redis.Client, cfg config.Config) (*service.Authenticator, error) {
	codec, err := utils.NewTokenCodec(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		return nil, err
	}
	var sessions service.SessionCache = service.NoopSessionCache{}
	if rdb != nil {
		sessions = service.NewRedisSessionCache(rdb, cfg.SessionCacheTTL, cfg.SessionCachePrefix)
	}
	return service.NewAuthenticator(repository.NewUserRepo(db), codec, utils.NewHasher(cfg.BcryptCost), sessions, service.DefaultAuthPolicy()), nil
}

func (b envBackend) Migrate(ctx context.Context) error {
	db, _, err := b.open()
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Migrate(ctx, db)
}
