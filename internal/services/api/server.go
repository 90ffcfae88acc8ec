// Package api serves completion and hover for shell documents over JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/shellhint/internal/types"
)

const (
	defaultListenAddress    = "127.0.0.1:0"
	defaultShutdownDuration = 5 * time.Second
	readHeaderTimeout       = 5 * time.Second

	headerContentType = "Content-Type"
	mimeTypeJSON      = "application/json"

	healthPath       = "/"
	capabilitiesPath = "/capabilities"
	completePath     = "/commands/" + types.CommandComplete
	hoverPath        = "/commands/" + types.CommandHover
	metricsPath      = "/metrics"

	errorRouteNotFound        = "not found"
	listenFailedFormat        = "listen on %s: %w"
	serveFailedFormat         = "serve API: %w"
	shutdownFailedFormat      = "shutdown API: %w"
	encodeResponseErrorFormat = "encode response: %v"
)

// Capability names one endpoint under /commands.
type Capability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var capabilities = []Capability{
	{Name: types.CommandComplete, Description: "Complete subcommands, options and command names at a position"},
	{Name: types.CommandHover, Description: "Describe the command, subcommand or option at a position"},
}

// Config defines runtime options for the server. MetricsHandler is mounted on
// /metrics when set.
type Config struct {
	Address         string
	Assistant       Assistant
	MetricsHandler  http.Handler
	ShutdownTimeout time.Duration
}

// Server answers completion and hover requests over HTTP.
type Server struct {
	config Config
}

type resultEnvelope struct {
	Result any `json:"result"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// NewServer creates a Server with defaults applied.
func NewServer(config Config) Server {
	if config.Address == "" {
		config.Address = defaultListenAddress
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaultShutdownDuration
	}
	return Server{config: config}
}

// Handler builds the request router.
func (server Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Get(healthPath, func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	router.Get(capabilitiesPath, func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusOK, struct {
			Capabilities []Capability `json:"capabilities"`
		}{Capabilities: capabilities})
	})
	router.Post(completePath, server.handleComplete)
	router.Post(hoverPath, server.handleHover)
	if server.config.MetricsHandler != nil {
		router.Method(http.MethodGet, metricsPath, server.config.MetricsHandler)
	}
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusNotFound, errorEnvelope{Error: errorRouteNotFound})
	})
	return router
}

// Run listens on the configured address and serves until ctx is canceled.
// notify receives the bound address once the listener is active.
func (server Server) Run(ctx context.Context, notify func(string)) error {
	listener, listenError := net.Listen("tcp", server.config.Address)
	if listenError != nil {
		return fmt.Errorf(listenFailedFormat, server.config.Address, listenError)
	}
	httpServer := &http.Server{Handler: server.Handler(), ReadHeaderTimeout: readHeaderTimeout}

	group, groupContext := errgroup.WithContext(ctx)
	group.Go(func() error {
		if serveError := httpServer.Serve(listener); !errors.Is(serveError, http.ErrServerClosed) {
			return fmt.Errorf(serveFailedFormat, serveError)
		}
		return nil
	})
	group.Go(func() error {
		<-groupContext.Done()
		shutdownContext, cancel := context.WithTimeout(context.WithoutCancel(ctx), server.config.ShutdownTimeout)
		defer cancel()
		if shutdownError := httpServer.Shutdown(shutdownContext); shutdownError != nil {
			return fmt.Errorf(shutdownFailedFormat, shutdownError)
		}
		return nil
	})

	if notify != nil {
		notify(listener.Addr().String())
	}
	return group.Wait()
}

func writeJSON(writer http.ResponseWriter, statusCode int, payload any) {
	encoded, encodeError := json.Marshal(payload)
	if encodeError != nil {
		statusCode = http.StatusInternalServerError
		encoded, _ = json.Marshal(errorEnvelope{Error: fmt.Sprintf(encodeResponseErrorFormat, encodeError)})
	}
	writer.Header().Set(headerContentType, mimeTypeJSON)
	writer.WriteHeader(statusCode)
	_, _ = writer.Write(append(encoded, '\n'))
}

func writeError(writer http.ResponseWriter, statusCode int, err error) {
	writeJSON(writer, statusCode, errorEnvelope{Error: err.Error()})
}
