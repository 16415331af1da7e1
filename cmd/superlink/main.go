// Command superlink runs the SuperLink control-plane server: the
// Driver and Fleet gRPC services described by spec.md §4, backed by a
// Postgres-backed internal/store.Store.
//
// Process scaffolding follows the teacher's go/sql-driver and
// go/flow-ingester commands verbatim: a go-flags parser, mbp logging
// and diagnostics setup, a gazette server.Server bound once and
// registered with both services, and a task.Group that waits on
// SIGINT/SIGTERM to drive a graceful stop.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	flags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	mbp "go.gazette.dev/core/mainboilerplate"
	"go.gazette.dev/core/server"
	"go.gazette.dev/core/task"

	"github.com/flwr-dev/superlink/internal/config"
	"github.com/flwr-dev/superlink/internal/driverhandler"
	"github.com/flwr-dev/superlink/internal/fleethandler"
	"github.com/flwr-dev/superlink/internal/service"
	"github.com/flwr-dev/superlink/internal/store"
	"github.com/flwr-dev/superlink/internal/superlinkpb"
)

// metricsAddr is where the standalone Prometheus /metrics endpoint
// listens. Exposed separately from the gRPC listener since
// server.New's narrow (interface, port) constructor doesn't expose a
// hook for mounting extra HTTP handlers onto the same listener.
const metricsAddr = ":9090"

// ambientArgs carries the ambient logging/diagnostics flags in the
// teacher's own shape and the path to an optional YAML config file.
// Domain configuration (bind address, timeouts, size limits,
// database URI, ...) is handled separately by internal/config, which
// layers YAML, FLWR_-prefixed environment variables and flags per
// spec.md §6; once ConfigFile is known, it parses the arguments this
// pre-parse did not recognise.
type ambientArgs struct {
	ConfigFile  string                `long:"config" description:"Path to a YAML configuration file"`
	Log         mbp.LogConfig         `group:"Logging" namespace:"log" env-namespace:"LOG"`
	Diagnostics mbp.DiagnosticsConfig `group:"Debug" namespace:"debug" env-namespace:"DEBUG"`
}

func main() {
	var ambient ambientArgs
	ambientParser := flags.NewParser(&ambient, flags.IgnoreUnknown)
	domainArgs, err := ambientParser.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	defer mbp.InitDiagnosticsAndRecover(ambient.Diagnostics)()
	mbp.InitLog(ambient.Log)

	cfg, err := config.Load(ambient.ConfigFile, domainArgs)
	mbp.Must(err, "loading configuration")

	log.WithField("bindTo", cfg.BindTo).Info("superlink configuration loaded")

	host, portStr, err := net.SplitHostPort(cfg.BindTo)
	mbp.Must(err, "parsing --bind-to")
	port, err := strconv.ParseUint(portStr, 10, 16)
	mbp.Must(err, "parsing --bind-to port")

	srv, err := server.New(host, uint16(port))
	mbp.Must(err, "building server instance")

	ctx := context.Background()
	db, err := store.OpenPostgres(ctx, store.PostgresConfig{URI: cfg.DatabaseURI})
	mbp.Must(err, "opening database connection")
	defer db.Close()

	driverSvc := &service.DriverService{
		Handler:             driverhandler.New(db),
		MessageExpiresAfter: cfg.Driver.MessageExpiresAfter,
	}
	fleetSvc := &service.FleetService{
		Handler:             fleethandler.New(db),
		MessageExpiresAfter: cfg.Fleet.MessageExpiresAfter,
	}

	superlinkpb.RegisterDriverServer(srv.GRPCServer, driverSvc)
	superlinkpb.RegisterFleetServer(srv.GRPCServer, fleetSvc)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv.GRPCServer, healthSrv)
	healthSrv.SetServingStatus("flwr.superlink.Driver", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus("flwr.superlink.Fleet", healthpb.HealthCheckResponse_SERVING)

	grpc_prometheus.Register(srv.GRPCServer)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server failed")
		}
	}()

	tasks := task.NewGroup(ctx)
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGTERM, syscall.SIGINT)

	tasks.Queue("watch signalCh", func() error {
		select {
		case sig := <-signalCh:
			log.WithField("signal", sig).Info("caught signal")

			tasks.Cancel()
			srv.BoundedGracefulStop()
			_ = metricsSrv.Close()
			return nil

		case <-tasks.Context().Done():
			return nil
		}
	})
	srv.QueueTasks(tasks)
	tasks.GoRun()

	mbp.Must(tasks.Wait(), "superlink task failed")
	log.Info("goodbye")
}
