package main

import (
	"bufio"
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/observability"
	"chat-core/repositories"
	"chat-core/runtime"
	"chat-core/runtime/workers"
	"chat-core/services"
	"chat-core/sink"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages their lifecycle, and
// centralizes error reporting, so defers execute and main stays
// testable.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Table store (BadgerDB, or in-memory for throwaway sessions)
	var store contract.Store
	if config.Ephemeral {
		store = repositories.NewMemoryStore()
	} else {
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return fmt.Errorf("database opening failed: %w", err)
		}
		defer func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}()

		badgerStore, err := repositories.NewBadgerStore(db, log)
		if err != nil {
			return err
		}
		defer badgerStore.Close()
		store = badgerStore
	}

	// 3. Core services & dispatcher
	recorder := observability.NewRecorder(log)
	directory := services.NewDirectoryService(store, log, recorder)
	ledger := services.NewLedgerService(store, log, recorder)
	registry := runtime.NewRegistry()
	dispatcher := runtime.NewDispatcher(log, directory, ledger, registry, config.BufferSize)

	// 4. Background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewEventFanout(log, dispatcher.Events(), registry, config.SinkTimeout),
		workers.NewStatsWorker(log, recorder, config.StatsInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)
	defer sup.Stop()

	// 5. Local client harness on stdin
	log.Info("Ready. Commands: connect|disconnect|name|send|history|stats")
	return console(ctx, dispatcher, recorder)
}

// console reads line commands from stdin and plays the role of the
// connection source and of the clients, one timeline per connected
// identity.
func console(ctx context.Context, dispatcher *runtime.Dispatcher, recorder *observability.Recorder) error {
	sessions := make(map[domain.Identity]*sink.Timeline)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := handleLine(dispatcher, recorder, sessions, line); err != nil {
				fmt.Printf("error: %v\n", err)
			}
		}
	}
}

func handleLine(dispatcher *runtime.Dispatcher, recorder *observability.Recorder,
	sessions map[domain.Identity]*sink.Timeline, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	command := fields[0]

	if command == "stats" {
		fmt.Printf("%+v\n", recorder.Snapshot())
		return nil
	}

	if len(fields) < 2 {
		return fmt.Errorf("usage: %s <identity> [args]", command)
	}
	identity := domain.Identity(fields[1])
	rest := strings.Join(fields[2:], " ")
	call := contract.CallContext{Sender: identity, Timestamp: time.Now().UTC()}

	switch command {
	case "connect":
		timeline := sink.NewTimeline()
		if err := dispatcher.Connect(identity, timeline); err != nil {
			return err
		}
		sessions[identity] = timeline
	case "disconnect":
		dispatcher.Disconnect(identity)
		delete(sessions, identity)
	case "name":
		return dispatcher.Dispatch(call, runtime.OpSetName, rest)
	case "send":
		return dispatcher.Dispatch(call, runtime.OpSendMessage, rest)
	case "history":
		timeline, ok := sessions[identity]
		if !ok {
			return fmt.Errorf("%s is not connected", identity)
		}
		for _, message := range timeline.Messages() {
			fmt.Printf("[%s] %s: %s\n", message.Sent.Format(time.TimeOnly), message.Sender, message.Text)
		}
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}
