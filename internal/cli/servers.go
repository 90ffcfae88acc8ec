package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/shellhint/internal/lsp"
	"github.com/temirov/shellhint/internal/services/api"
	"github.com/temirov/shellhint/internal/session"
	"github.com/temirov/shellhint/internal/types"
	"github.com/temirov/shellhint/internal/utils"
)

const (
	serveShortDescription = "run the language server on stdio"
	serveLongDescription  = `Runs the language server protocol endpoint on standard input and output.
Editors launch this command and exchange completion and hover requests with it.
Logs go to standard error.`
	httpShortDescription = "serve completion and hover over HTTP"
	httpLongDescription  = `Starts an HTTP API exposing the complete and hover commands as JSON
endpoints, plus Prometheus metrics on /metrics. The bound address is printed
once the listener is ready.`

	httpListeningFormat = "shellhint API listening on http://%s\n"

	logFieldAddress          = "address"
	logMessageLanguageServer = "language server starting"
	logMessageAPIListening   = "HTTP API listening"
)

func createServeCommand(application *applicationState) *cobra.Command {
	return &cobra.Command{
		Use:   types.CommandServe,
		Short: serveShortDescription,
		Long:  serveLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			runtimeServices, openError := application.openServices(nil)
			if openError != nil {
				return openError
			}
			defer runtimeServices.Close()

			documents := session.NewStore(runtimeServices.parser, application.logger)
			server := lsp.NewServer(utils.ApplicationName, command.Root().Version, runtimeServices.analyzer, documents, application.logger)
			application.logger.Info(logMessageLanguageServer)
			return server.RunStdio()
		},
	}
}

func createHTTPCommand(application *applicationState) *cobra.Command {
	var address string
	command := &cobra.Command{
		Use:   types.CommandHTTP,
		Short: httpShortDescription,
		Long:  httpLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if !command.Flags().Changed(addressFlagName) {
				address = application.settings.ServerAddress
			}
			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			runtimeServices, openError := application.openServices(registry)
			if openError != nil {
				return openError
			}
			defer runtimeServices.Close()

			server := api.NewServer(api.Config{
				Address:        address,
				Assistant:      runtimeServices.analyzer,
				MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
			})

			ctx, stop := signal.NotifyContext(commandContext(command), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, func(boundAddress string) {
				application.logger.Info(logMessageAPIListening, zap.String(logFieldAddress, boundAddress))
				fmt.Fprintf(command.OutOrStdout(), httpListeningFormat, boundAddress)
			})
		},
	}
	command.Flags().StringVar(&address, addressFlagName, "", addressDescription)
	return command
}

func commandContext(command *cobra.Command) context.Context {
	if ctx := command.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
