package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/andresuchdata/restock-forecast/internal/app"
	"github.com/andresuchdata/restock-forecast/internal/config"
	"github.com/andresuchdata/restock-forecast/internal/predictor"
	"github.com/andresuchdata/restock-forecast/internal/storage"
	"github.com/andresuchdata/restock-forecast/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	cliApp := &cli.App{
		Name:  "forecast",
		Usage: "Run demand forecasts and manage model artifacts",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the forecast pipeline once and publish predictions",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Abort the run after this long",
						Value: 10 * time.Minute,
					},
				},
				Action: func(c *cli.Context) error {
					return runForecast(c, cfg)
				},
			},
			{
				Name:  "restock",
				Usage: "Print restocking recommendations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "latest",
						Usage: "Resolve the stored snapshot instead of running a new forecast",
					},
				},
				Action: func(c *cli.Context) error {
					return runRestock(c, cfg)
				},
			},
			{
				Name:  "model",
				Usage: "Manage model artifacts",
				Subcommands: []*cli.Command{
					{
						Name:  "inspect",
						Usage: "Validate an artifact file and print its version",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "file",
								Usage:   "Artifact file",
								Value:   cfg.Forecast.ModelPath,
								EnvVars: []string{"FORECAST_MODEL_PATH"},
							},
						},
						Action: inspectModel,
					},
					{
						Name:  "list",
						Usage: "List artifacts stored in object storage",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "prefix",
								Usage: "Only list keys with this prefix",
							},
						},
						Action: func(c *cli.Context) error {
							client, err := app.NewStorage(cfg.Storage)
							if err != nil {
								return err
							}
							return listModels(c.Context, client, c.String("prefix"), c.App.Writer)
						},
					},
					{
						Name:  "pull",
						Usage: "Download an artifact from object storage and validate it",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "key",
								Usage:   "Object key",
								Value:   cfg.Forecast.ModelObjectKey,
								EnvVars: []string{"FORECAST_MODEL_OBJECT_KEY"},
							},
							&cli.StringFlag{
								Name:    "file",
								Usage:   "Destination file",
								Value:   cfg.Forecast.ModelPath,
								EnvVars: []string{"FORECAST_MODEL_PATH"},
							},
						},
						Action: func(c *cli.Context) error {
							client, err := app.NewStorage(cfg.Storage)
							if err != nil {
								return err
							}
							m, err := pullModel(c.Context, client, c.String("key"), c.String("file"))
							if err != nil {
								return err
							}
							logger.Log.Info().
								Str("key", c.String("key")).
								Str("file", c.String("file")).
								Str("version", m.Version()).
								Msg("Model artifact downloaded")
							return nil
						},
					},
					{
						Name:  "push",
						Usage: "Validate an artifact file and upload it to object storage",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "file",
								Usage:    "Artifact file",
								Required: true,
							},
							&cli.StringFlag{
								Name:    "key",
								Usage:   "Object key",
								Value:   cfg.Forecast.ModelObjectKey,
								EnvVars: []string{"FORECAST_MODEL_OBJECT_KEY"},
							},
						},
						Action: func(c *cli.Context) error {
							return pushModel(c, cfg)
						},
					},
				},
			},
			{
				Name:  "token",
				Usage: "Issue an API access token for a workspace",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "workspace",
						Usage:    "Workspace the token acts for",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					tokens, err := app.NewTokens(cfg.Auth)
					if err != nil {
						return err
					}
					token, err := tokens.Issue(c.String("workspace"))
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, token)
					return nil
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("forecast command failed")
	}
}

func runForecast(c *cli.Context, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	application, err := app.Build(ctx, cfg, app.Options{RequireModel: true})
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.Forecast.Run(ctx)
	if err != nil {
		return err
	}
	return printJSON(c, result)
}

func runRestock(c *cli.Context, cfg *config.Config) error {
	ctx := c.Context
	application, err := app.Build(ctx, cfg, app.Options{RequireModel: !c.Bool("latest")})
	if err != nil {
		return err
	}
	defer application.Close()

	if c.Bool("latest") {
		report, err := application.Restock.Latest(ctx)
		if err != nil {
			return err
		}
		return printJSON(c, report)
	}

	report, err := application.Restock.RunAndRecommend(ctx)
	if err != nil {
		return err
	}
	return printJSON(c, report)
}

func inspectModel(c *cli.Context) error {
	m, err := predictor.LoadFile(c.String("file"))
	if err != nil {
		return err
	}
	return printJSON(c, map[string]any{
		"version": m.Version(),
		"classes": m.Encoder().Classes(),
	})
}

func pushModel(c *cli.Context, cfg *config.Config) error {
	key := c.String("key")
	if key == "" {
		return fmt.Errorf("an object key is required (--key or FORECAST_MODEL_OBJECT_KEY)")
	}

	path := c.String("file")
	m, err := predictor.LoadFile(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	client, err := app.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}
	if err := client.EnsureBucket(c.Context); err != nil {
		return err
	}
	if err := client.UploadObject(c.Context, key, data); err != nil {
		return err
	}

	logger.Log.Info().
		Str("key", key).
		Str("version", m.Version()).
		Int("bytes", len(data)).
		Msg("Model artifact uploaded")
	return nil
}

func listModels(ctx context.Context, store storage.ObjectStorage, prefix string, w io.Writer) error {
	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return err
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(objects)
}

// pullModel downloads key to dest and keeps the file only when it parses
// as a valid artifact.
func pullModel(ctx context.Context, store storage.ObjectStorage, key, dest string) (*predictor.Model, error) {
	if key == "" {
		return nil, fmt.Errorf("an object key is required (--key or FORECAST_MODEL_OBJECT_KEY)")
	}
	if dest == "" {
		return nil, fmt.Errorf("a destination file is required (--file or FORECAST_MODEL_PATH)")
	}

	if err := store.DownloadObject(ctx, key, dest); err != nil {
		return nil, err
	}
	m, err := predictor.LoadFile(dest)
	if err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			logger.Log.Warn().Err(rmErr).Str("file", dest).Msg("Could not remove invalid artifact")
		}
		return nil, err
	}
	return m, nil
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
