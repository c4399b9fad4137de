package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/tripseek/tripseek"
	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/config"
)

func main() {
	app := &cli.App{
		Name:  "tripseek",
		Usage: "Corrective retrieval engine for travel POI search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Override logging level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve MCP tools over stdio",
				Action: serveCommand,
			},
			{
				Name:   "check",
				Usage:  "Load and validate the configuration, then exit",
				Action: checkCommand,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config %s failed, err: %w", c.String("config"), err)
	}
	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	client, err := tripseek.NewTripClient(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("initialize engine failed, err: %w", err)
	}
	defer client.Close()

	if cfg.Metrics.Enable {
		go serveMetrics(cfg.Metrics)
	}

	logger.Infof("serving MCP over stdio")
	if err := server.ServeStdio(tripseek.NewServer(client)); err != nil {
		return fmt.Errorf("mcp server stopped, err: %w", err)
	}
	return nil
}

func checkCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "configuration ok: collection=%s mode=%s\n", cfg.VectorDB.Collection, cfg.Search.Mode)
	return nil
}

func serveMetrics(cfg config.MetricsConfig) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())
	logger.Infof("metrics listening on %s%s", cfg.Listen, cfg.Path)
	if err := http.ListenAndServe(cfg.Listen, mux); err != nil {
		logger.Errorf("metrics listener stopped: %v", err)
	}
}
