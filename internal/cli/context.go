// Package cli implements the habitctl subcommands.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"habittracker/internal/config"
	"habittracker/pkg/db"
)

// Context is passed to every command's Run method.
type Context struct {
	Config *config.Config
	Logger *zap.Logger
	Out    io.Writer
	// DatabaseURL overrides the db section when set.
	DatabaseURL string

	pool *pgxpool.Pool
}

// Pool opens the database on first use.
func (c *Context) Pool() (*pgxpool.Pool, error) {
	if c.pool != nil {
		return c.pool, nil
	}

	var (
		pool *pgxpool.Pool
		err  error
	)
	if c.DatabaseURL != "" {
		pool, err = db.NewConnectionFromURL(c.DatabaseURL, c.Logger)
	} else {
		pool, err = db.NewConnection(c.Config.DB, c.Logger)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	c.pool = pool
	return pool, nil
}

func (c *Context) Location() (*time.Location, error) {
	loc, err := c.Config.Tracker.Location()
	if err != nil {
		return nil, fmt.Errorf("tracker.timezone: %w", err)
	}
	return loc, nil
}

// Close releases the pool if one was opened.
func (c *Context) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}
