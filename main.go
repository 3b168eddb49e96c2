package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"lightctl/adapters"
	"lightctl/application"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var Flags = []cli.Flag{
	FlagLogLevel,
	FlagLogWriter,
	FlagEndpoint,
	FlagConfig,
	FlagTimeout,
}

func main() {
	var logger zerolog.Logger

	app := cli.App{
		Name:    "lightctl",
		Usage:   "control a smart light through its HTTP control service",
		Version: "v0.1.0",
		Flags:   Flags,
		Before: func(ctx *cli.Context) error {
			var logWriter io.Writer
			if ctx.String(FlagLogWriter.Name) == "console" {
				logWriter = zerolog.ConsoleWriter{
					Out:        os.Stderr,
					TimeFormat: time.RFC3339Nano,
				}
			} else if ctx.String(FlagLogWriter.Name) == "json" {
				logWriter = os.Stderr
			}

			logger = zerolog.New(logWriter).With().Timestamp().
				Str("service", "lightctl").
				Str("module", "main").
				Logger()

			level, err := zerolog.ParseLevel(ctx.String(FlagLogLevel.Name))
			if err != nil {
				return err
			}

			zerolog.SetGlobalLevel(level)

			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "show the current bulb state",
				Action: func(ctx *cli.Context) error {
					gateway, _, err := buildGateway(ctx, logger)
					if err != nil {
						return err
					}

					status, err := gateway.Status(ctx.Context)
					if err != nil {
						return err
					}

					printStatus(status)
					return nil
				},
			},
			{
				Name:  "on",
				Usage: "turn the bulb on",
				Action: func(ctx *cli.Context) error {
					dispatcher, _, err := buildDispatcher(ctx, logger)
					if err != nil {
						return err
					}
					if err := dispatcher.TurnOn(ctx.Context); err != nil {
						return err
					}
					fmt.Println("Bulb turned ON")
					return nil
				},
			},
			{
				Name:  "off",
				Usage: "turn the bulb off",
				Action: func(ctx *cli.Context) error {
					dispatcher, _, err := buildDispatcher(ctx, logger)
					if err != nil {
						return err
					}
					if err := dispatcher.TurnOff(ctx.Context); err != nil {
						return err
					}
					fmt.Println("Bulb turned OFF")
					return nil
				},
			},
			{
				Name:  "toggle",
				Usage: "toggle the bulb power",
				Action: func(ctx *cli.Context) error {
					dispatcher, _, err := buildDispatcher(ctx, logger)
					if err != nil {
						return err
					}
					power, err := dispatcher.TogglePower(ctx.Context)
					if err != nil {
						return err
					}
					fmt.Printf("Power is now %s\n", strings.ToUpper(string(power)))
					return nil
				},
			},
			{
				Name:      "brightness",
				Usage:     "set brightness (1-100)",
				ArgsUsage: "<level>",
				Action: func(ctx *cli.Context) error {
					if ctx.Args().Len() != 1 {
						return fmt.Errorf("usage: lightctl brightness <1-100>")
					}
					level, err := strconv.Atoi(ctx.Args().First())
					if err != nil {
						return fmt.Errorf("invalid brightness %q", ctx.Args().First())
					}

					dispatcher, _, err := buildDispatcher(ctx, logger)
					if err != nil {
						return err
					}
					if err := dispatcher.SetBrightness(ctx.Context, level); err != nil {
						return err
					}
					fmt.Printf("Brightness set to %d%%\n", level)
					return nil
				},
			},
			{
				Name:  "watch",
				Usage: "poll the bulb state until interrupted",
				Flags: []cli.Flag{FlagPollInterval},
				Action: func(ctx *cli.Context) error {
					gateway, cache, err := buildGateway(ctx, logger)
					if err != nil {
						return err
					}

					synchronizer, err := application.NewStatusSynchronizer(application.StatusSynchronizerParams{
						Gateway:  gateway,
						Cache:    cache,
						Interval: ctx.Duration(FlagPollInterval.Name),
						OnUpdate: printSnapshot,
						Log:      logger.With().Str("module", "synchronizer").Logger(),
					})
					if err != nil {
						return err
					}

					watchCtx, cancel := signalContext(ctx.Context, logger)
					defer cancel()

					return synchronizer.Run(watchCtx)
				},
			},
			{
				Name:  "endpoint",
				Usage: "show the control service base URL",
				Action: func(ctx *cli.Context) error {
					store, err := buildEndpointStore(ctx, logger)
					if err != nil {
						return err
					}
					fmt.Println(store.Get())
					return nil
				},
				Subcommands: []*cli.Command{
					{
						Name:      "set",
						Usage:     "persist a new base URL and probe it",
						ArgsUsage: "<url>",
						Action: func(ctx *cli.Context) error {
							if ctx.Args().Len() != 1 {
								return fmt.Errorf("usage: lightctl endpoint set <url>")
							}
							url := ctx.Args().First()

							store, err := buildEndpointStore(ctx, logger)
							if err != nil {
								return err
							}

							// Persist first: the new value must survive a
							// failed reachability probe.
							if err := store.Set(url); err != nil {
								return err
							}

							gateway, err := adapters.NewHTTPGateway(adapters.HTTPGatewayParams{
								Endpoints:      store,
								RequestTimeout: ctx.Duration(FlagTimeout.Name),
								Log:            logger.With().Str("module", "gateway").Logger(),
							})
							if err != nil {
								return err
							}
							if err := gateway.Health(ctx.Context); err != nil {
								return fmt.Errorf("endpoint saved, but health probe failed: %w", err)
							}

							fmt.Printf("Endpoint set to %s\n", url)
							return nil
						},
					},
				},
			},
			{
				Name:  "mock-daemon",
				Usage: "serve an in-memory stand-in control service",
				Flags: []cli.Flag{FlagListenAddr},
				Action: func(ctx *cli.Context) error {
					daemon := adapters.NewMockDaemon(adapters.MockDaemonParams{
						Log: logger.With().Str("module", "mock-daemon").Logger(),
					})

					server := &http.Server{
						Addr:    ctx.String(FlagListenAddr.Name),
						Handler: daemon.Handler(),
					}

					serveCtx, cancel := signalContext(ctx.Context, logger)
					defer cancel()

					g := errgroup.Group{}
					g.Go(func() error {
						logger.Info().Str("addr", server.Addr).Msg("mock daemon listening")
						if err := server.ListenAndServe(); err != http.ErrServerClosed {
							return err
						}
						return nil
					})
					g.Go(func() error {
						<-serveCtx.Done()
						shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
						defer shutdownCancel()
						return server.Shutdown(shutdownCtx)
					})

					return g.Wait()
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// signalContext cancels the returned context on SIGINT/SIGTERM.
func signalContext(parent context.Context, logger zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-c:
			logger.Warn().Msg("interrupt signal received")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func buildEndpointStore(ctx *cli.Context, logger zerolog.Logger) (application.EndpointStore, error) {
	if url := ctx.String(FlagEndpoint.Name); url != "" {
		return application.StaticEndpointStore{URL: url}, nil
	}
	return adapters.NewFileEndpointStore(adapters.FileEndpointStoreParams{
		Path: ctx.String(FlagConfig.Name),
		Log:  logger.With().Str("module", "endpoint-store").Logger(),
	})
}

func buildGateway(ctx *cli.Context, logger zerolog.Logger) (application.ControlGateway, *application.StatusCache, error) {
	store, err := buildEndpointStore(ctx, logger)
	if err != nil {
		return nil, nil, err
	}

	gateway, err := adapters.NewHTTPGateway(adapters.HTTPGatewayParams{
		Endpoints:      store,
		RequestTimeout: ctx.Duration(FlagTimeout.Name),
		Log:            logger.With().Str("module", "gateway").Logger(),
	})
	if err != nil {
		return nil, nil, err
	}

	return gateway, application.NewStatusCache(), nil
}

func buildDispatcher(ctx *cli.Context, logger zerolog.Logger) (*application.CommandDispatcher, *application.StatusCache, error) {
	gateway, cache, err := buildGateway(ctx, logger)
	if err != nil {
		return nil, nil, err
	}

	dispatcher, err := application.NewCommandDispatcher(application.CommandDispatcherParams{
		Gateway: gateway,
		Cache:   cache,
		Log:     logger.With().Str("module", "dispatcher").Logger(),
	})
	if err != nil {
		return nil, nil, err
	}
	return dispatcher, cache, nil
}

func printStatus(status application.DeviceStatus) {
	power := "UNKNOWN"
	if status.Power != "" {
		power = strings.ToUpper(string(status.Power))
	}

	fmt.Println("Bulb Status:")
	fmt.Printf("  Power:      %s\n", power)
	if status.Brightness > 0 {
		fmt.Printf("  Brightness: %d%%\n", status.Brightness)
	} else {
		fmt.Printf("  Brightness: -\n")
	}
	fmt.Printf("  Connected:  %v\n", status.Connected)
	if status.Error != "" {
		fmt.Printf("  Error:      %s\n", status.Error)
	}
}

func printSnapshot(snapshot application.Snapshot) {
	if snapshot.LastError != "" {
		fmt.Printf("[%s] error: %s\n", time.Now().Format(time.TimeOnly), snapshot.LastError)
		return
	}
	if !snapshot.HasStatus {
		return
	}

	status := snapshot.Status
	fmt.Printf("[%s] power=%s brightness=%d%% connected=%v\n",
		time.Now().Format(time.TimeOnly),
		strings.ToUpper(string(status.Power)),
		snapshot.DisplayedBrightness,
		status.Connected,
	)
}
