// Package main boots the Kratos HTTP entrypoint for the greeter contract service.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/configloader"
	loginfra "github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/logger"
	"github.com/bionicotaku/lingo-services-greeter/internal/tasks/retention"

	"github.com/bionicotaku/lingo-utils/observability"
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name string
	// Version is the version of the compiled software.
	Version string
)

func newApp(meta configloader.ServiceMetadata, logger log.Logger, hs *http.Server, archiveScan *retention.Task) *kratos.App {
	return kratos.New(
		kratos.ID(meta.InstanceID),
		kratos.Name(meta.Name),
		kratos.Version(meta.Version),
		kratos.Metadata(map[string]string{"environment": meta.Environment}),
		kratos.Logger(logger),
		kratos.Server(
			hs,
			archiveScan,
		),
	)
}

func main() {
	// Parse command-line flags (currently only -conf).
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	confPath, err := configloader.ParseConfPath(fs, os.Args[1:])
	if err != nil {
		panic(err)
	}

	// Load bootstrap configuration and derive service metadata.
	bundle, err := configloader.Build(configloader.Params{
		ConfPath: confPath,
		Name:     Name,
		Version:  Version,
	})
	if err != nil {
		panic(err)
	}
	meta := configloader.ProvideServiceMetadata(bundle)

	// Build the structured logger used by the entire application.
	loggr, err := loginfra.NewLogger(configloader.ProvideLoggerConfig(meta))
	if err != nil {
		panic(err)
	}

	obsShutdown, err := observability.Init(context.Background(), configloader.ProvideObservabilityConfig(bundle),
		observability.WithLogger(loggr),
		observability.WithServiceName(meta.Name),
		observability.WithServiceVersion(meta.Version),
		observability.WithEnvironment(meta.Environment),
	)
	if err != nil {
		panic(err)
	}
	defer func() {
		if obsShutdown == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obsShutdown(ctx); err != nil {
			log.NewHelper(loggr).Warnf("shutdown observability: %v", err)
		}
	}()

	// Assemble all dependencies (data, repositories, servers, tasks) via Wire and create the Kratos app.
	app, cleanupApp, err := wireApp(context.Background(), bundle, loggr)
	if err != nil {
		panic(err)
	}
	defer cleanupApp()

	// Start the application and block until a stop signal is received.
	if err := app.Run(); err != nil {
		panic(err)
	}
}
