package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/dhabedank/strategem/internal/web"
)

var servePort string

// ServeCmd runs the HTTP API.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis HTTP API",
	Long: `Serve the analysis HTTP API.

Endpoints:
  POST /api/analyses            analyze JSON text input
  POST /api/analyses/file       analyze an uploaded file
  GET  /api/analyses            list stored analyses
  GET  /api/analyses/:id        fetch one analysis
  GET  /api/analyses/:id/report download the markdown report
  GET  /api/frameworks          list frameworks
  GET  /api/health              health check`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	ServeCmd.Flags().StringVarP(&servePort, "port", "p", "", "Listen address (default from config, :8080)")
	addLLMFlags(ServeCmd)
	addConfigFlags(ServeCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if cmd.Flags().Changed("port") {
		a.cfg.Server.Port = servePort
	}
	if a.cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := web.Setup(web.NewHandler(a.service, a.logger), a.logger)
	fmt.Printf("Serving Strategem API on %s\n", a.cfg.Server.Port)
	return web.Serve(ctx, a.cfg.Server, engine, a.logger)
}
