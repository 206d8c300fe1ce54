package main

import "time"

// Flag structs decouple cobra from command logic for testing.

type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

type RunFlags struct {
	Name         string
	Path         string
	Args         []string // key=value, in order
	Verbose      bool
	PollInterval time.Duration
	OutputDir    string
}

type EncodeFlags struct {
	Args []string
}

type RemoteFlags struct {
	APIUrl     string
	APITimeout time.Duration
	ID         string
}
