package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jrsteele09/go-scim-gateway/credentials"
	"github.com/jrsteele09/go-scim-gateway/internal/config"
	"github.com/jrsteele09/go-scim-gateway/replication"
	"github.com/jrsteele09/go-scim-gateway/server"
	"github.com/jrsteele09/go-scim-gateway/users"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	store := credentials.NewStore(
		credentials.WithSessionLifetime(c.GetSessionLifetime()),
		credentials.WithCodeTimeout(c.GetAuthCodeTimeout()),
	)

	repo, err := newUserRepo(c)
	if err != nil {
		return fmt.Errorf("newUserRepo: %w", err)
	}

	dispatcher := newDispatcher(c)

	handler, err := server.New(c, store, repo, dispatcher)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	if dispatcher != nil {
		dispatcher.Close()
	}
	return returnError
}

// newUserRepo picks Postgres when DATABASE_URL is set, otherwise the
// in-memory repository.
func newUserRepo(c config.Config) (users.Repo, error) {
	databaseURL := c.GetDatabaseURL()
	if databaseURL == "" {
		return users.NewInMemoryRepo(), nil
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	repo := users.NewPGRepo(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("repo.EnsureSchema: %w", err)
	}
	return repo, nil
}

// newDispatcher wires mirror replication when MIRROR_URL is set.
func newDispatcher(c config.Config) *replication.Dispatcher {
	mirrorURL := c.GetMirrorURL()
	if mirrorURL == "" {
		return nil
	}
	mirror := replication.NewMirrorClient(mirrorURL, c.GetMirrorToken(), c.GetMirrorTimeout())
	return replication.NewDispatcher(mirror, c.GetReplicationWorkers(), c.GetReplicationQueueSize(), c.GetMirrorTimeout())
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
