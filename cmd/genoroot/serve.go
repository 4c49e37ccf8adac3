package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/genoroot/internal/config"
	"github.com/rpggio/genoroot/internal/filestore"
	"github.com/rpggio/genoroot/internal/mcp"
	"github.com/rpggio/genoroot/internal/transport"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		mode string
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store over MCP (stdio or HTTP)",
		Long: `Serve exposes every store operation as an MCP tool.

In stdio mode the server speaks MCP on stdin/stdout. In http mode it serves
streamable MCP at /mcp, JSON-RPC 2.0 at /rpc and a health probe at /health.
With the file driver, writes by other processes are logged as they happen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mode != "" {
				a.cfg.Transport.Mode = mode
			}
			if host != "" {
				a.cfg.Server.Host = host
			}
			if port != 0 {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&mode, "transport", "", "stdio or http")
	cmd.Flags().StringVar(&host, "host", "", "HTTP listen host")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP listen port")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	server := mcp.NewServer(mcp.Config{Handler: a.handler, Logger: a.logger})
	g, gctx := errgroup.WithContext(ctx)

	if a.files != nil {
		g.Go(func() error {
			return a.files.Watch(gctx, func(c filestore.Change) {
				a.logger.Info("store changed by another process", "key", c.Key, "op", c.Op)
			})
		})
	}

	switch a.cfg.Transport.Mode {
	case config.TransportStdio:
		a.logger.Info("starting stdio transport")
		g.Go(func() error {
			// stdin closing ends the session and the watcher with it.
			defer cancel()
			err := server.Run(gctx, &sdkmcp.StdioTransport{})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	default:
		addr := a.cfg.Server.Host + ":" + strconv.Itoa(a.cfg.Server.Port)
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           a.httpHandler(server),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			a.logger.Info("server listening", "addr", addr, "auth", a.cfg.Auth.Token != "")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancelShutdown()
			a.logger.Info("shutting down")
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// httpHandler routes /mcp, /rpc and /health. A configured token guards the
// first two.
func (a *app) httpHandler(server *sdkmcp.Server) http.Handler {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, nil)

	var auth func(http.Handler) http.Handler
	if a.cfg.Auth.Token != "" {
		auth = transport.AuthMiddleware(transport.StaticToken(a.cfg.Auth.Token))
	}

	return transport.NewServer(transport.Options{
		Handler: a.handler,
		MCP:     mcpHandler,
		Auth:    auth,
		Logger:  a.logger,
	})
}
