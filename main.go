package main

import (
	"context"
	"fmt"
	"os"

	"hexpane/internal/config"
	"hexpane/internal/editor"
	"hexpane/internal/fileservice"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "hexpane",
		Usage: "Service-backed hex viewer",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			serveCmd(),
			viewCmd(),
			initConfigCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cli.Command {
	var (
		addr   string
		window int
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the file service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8779",
				Destination: &addr,
			},
			&cli.IntFlag{
				Name:        "window",
				Usage:       "bytes per window read",
				Value:       256,
				Destination: &window,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			server := fileservice.NewServer(fileservice.NewRegistry(), window)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			sc := echo.StartConfig{Address: addr}
			return sc.Start(ctx, e)
		},
	}
}

func viewCmd() *cli.Command {
	var server string

	return &cli.Command{
		Name:      "view",
		Usage:     "View files served by a running file service",
		ArgsUsage: "path...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "server",
				Usage:       "file service base URL",
				Destination: &server,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				cfg = config.DefaultConfig()
			}
			if server != "" {
				cfg.Server = server
			}

			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return fmt.Errorf("no files given")
			}

			client := fileservice.NewClient(cfg.Server)
			model, err := editor.NewModel(client, cfg, paths)
			if err != nil {
				return err
			}

			p := tea.NewProgram(model, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

func initConfigCmd() *cli.Command {
	return &cli.Command{
		Name:  "init-config",
		Usage: "Write the default config file",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := config.DefaultConfig().Save(); err != nil {
				return err
			}
			fmt.Println(config.ConfigPath())
			return nil
		},
	}
}
