package main

import "time"

type Config struct {
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,default=./data/badger"`
	Ephemeral       bool          `env:"EPHEMERAL,default=false"`
	BufferSize      int           `env:"BUFFER_SIZE,default=64"`
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=2s"`
	StatsInterval   time.Duration `env:"STATS_INTERVAL,default=30s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=1s"`
}
