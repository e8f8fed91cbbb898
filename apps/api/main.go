package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	"go.uber.org/dig"

	"github.com/fitsenior/backend/apps/api/di"
	echoapi "github.com/fitsenior/backend/apps/api/echo"
	"github.com/fitsenior/backend/core"
)

func main() {
	conf := core.NewConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := di.NewContainer(ctx, conf)
	err := c.Invoke(func(logger core.Logger, cleanup *di.Cleanup, server echoapi.Server) {
		defer func() {
			if err := cleanup.Run(); err != nil {
				logger.Error(fmt.Sprintf("cleanup failed: %v", err), err)
			}
		}()
		run(conf, logger, server)
	})
	if err != nil {
		log.Fatalf("setting up dependencies: %v", dig.RootCause(err))
	}
}

func run(conf *core.Config, logger core.Logger, server echoapi.Server) {
	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(logger, true /* strict */)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		sdCtx, sdCancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer sdCancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(sdCtx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
