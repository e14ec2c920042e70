package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/logrusorgru/aurora"
	"github.com/zeu5/leanrl/store"
)

// interruptContext is cancelled on the first interrupt or once done is called
func interruptContext() (context.Context, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	doneCh := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, func() { close(doneCh) }
}

func getenv(key, def string) string {
	if v, found := os.LookupEnv(key); found && v != "" {
		return v
	}
	return def
}

func ok(format string, args ...interface{}) {
	fmt.Println(aurora.Green(fmt.Sprintf(format, args...)))
}

func warn(format string, args ...interface{}) {
	fmt.Println(aurora.Yellow(fmt.Sprintf(format, args...)))
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

type storeFlags struct {
	redisAddr string
	dbPath    string
	dir       string
}

func (f *storeFlags) register(flags interface {
	StringVar(*string, string, string, string)
}) {
	flags.StringVar(&f.redisAddr, "redis", getenv("LEANRL_REDIS_ADDR", ""), "Redis address of the weights store")
	flags.StringVar(&f.dbPath, "db", getenv("LEANRL_DB", ""), "SQLite database of the weights store")
	flags.StringVar(&f.dir, "dir", "", "Directory of the weights store")
}

// open picks redis, then sqlite, then a directory. Returns nil when none is configured.
func (f *storeFlags) open() (store.Store, error) {
	switch {
	case f.redisAddr != "":
		return store.NewRedisStore(f.redisAddr), nil
	case f.dbPath != "":
		return store.NewSQLiteStore(f.dbPath)
	case f.dir != "":
		return store.NewFileStore(f.dir)
	}
	return nil, nil
}
