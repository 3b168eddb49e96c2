package main

import (
	"time"

	"github.com/urfave/cli/v2"
)

var FlagLogLevel = &cli.StringFlag{
	Name:     "log-level",
	EnvVars:  []string{"LOG_LEVEL"},
	Value:    "info",
	Required: false,
}

var FlagLogWriter = &cli.StringFlag{
	Name:     "log-writer",
	EnvVars:  []string{"LOG_WRITER"},
	Value:    "console",
	Required: false,
}

var FlagEndpoint = &cli.StringFlag{
	Name:     "endpoint",
	Usage:    "control service base URL, overrides the stored one",
	EnvVars:  []string{"LIGHTCTL_ENDPOINT"},
	Required: false,
}

var FlagConfig = &cli.StringFlag{
	Name:     "config",
	Usage:    "path of the endpoint config file",
	EnvVars:  []string{"LIGHTCTL_CONFIG"},
	Required: false,
}

var FlagTimeout = &cli.DurationFlag{
	Name:     "timeout",
	Usage:    "per-request wait ceiling",
	EnvVars:  []string{"LIGHTCTL_TIMEOUT"},
	Value:    10 * time.Second,
	Required: false,
}

var FlagPollInterval = &cli.DurationFlag{
	Name:     "poll-interval",
	Usage:    "status refresh cadence for watch",
	EnvVars:  []string{"LIGHTCTL_POLL_INTERVAL"},
	Value:    5 * time.Second,
	Required: false,
}

var FlagListenAddr = &cli.StringFlag{
	Name:     "listen",
	Usage:    "listen address for the mock daemon",
	EnvVars:  []string{"LIGHTCTL_MOCK_LISTEN"},
	Value:    "127.0.0.1:8000",
	Required: false,
}
