package main

import (
	"bytes"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestServeCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "filmdex",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the bot front end and scheduled channel ingestion",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
						Value:   "movies.db",
						EnvVars: []string{"DATABASE_FILE"},
					},
					&cli.StringFlag{
						Name:     "telegram-token",
						Usage:    "Telegram bot API token",
						Required: true,
						EnvVars:  []string{"TELEGRAM_BOT_TOKEN"},
					},
					&cli.Int64Flag{
						Name:     "channel-id",
						Usage:    "Numeric chat ID of the channel to ingest",
						Required: true,
						EnvVars:  []string{"CHANNEL_CHAT_ID"},
					},
					&cli.StringFlag{
						Name:     "omdb-api-key",
						Usage:    "OMDb API key for metadata lookups",
						Required: true,
						EnvVars:  []string{"OMDB_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "channel-link",
						Usage:   "Public channel link shown by /start",
						EnvVars: []string{"CHANNEL_LINK"},
					},
					&cli.IntFlag{
						Name:    "job-interval",
						Usage:   "Seconds between ingestion cycles",
						Value:   1800,
						EnvVars: []string{"JOB_INTERVAL"},
					},
					&cli.IntFlag{
						Name:  "find-limit",
						Usage: "Maximum matches offered by /find",
						Value: 5,
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name",
						Value:   "embeddinggemma",
						EnvVars: []string{"EMBEDDING_MODEL"},
					},
				},
			},
		},
	}

	t.Run("telegram-token is required", func(t *testing.T) {
		// The required check also reads the environment bindings, so clear
		// them before running.
		for _, v := range []string{"TELEGRAM_BOT_TOKEN", "CHANNEL_CHAT_ID", "OMDB_API_KEY"} {
			os.Unsetenv(v)
		}

		args := []string{"filmdex", "serve"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telegram-token")
	})

	t.Run("db has default value", func(t *testing.T) {
		cmd := app.Commands[0]
		var dbFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "db" {
				dbFlag = f
				break
			}
		}
		require.NotNil(t, dbFlag)
		assert.Equal(t, "movies.db", dbFlag.Value)
	})

	t.Run("db is bound to DATABASE_FILE", func(t *testing.T) {
		cmd := app.Commands[0]
		var dbFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "db" {
				dbFlag = f
				break
			}
		}
		require.NotNil(t, dbFlag)
		assert.Contains(t, dbFlag.EnvVars, "DATABASE_FILE")
	})

	t.Run("telegram-token is bound to TELEGRAM_BOT_TOKEN", func(t *testing.T) {
		cmd := app.Commands[0]
		var tokenFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "telegram-token" {
				tokenFlag = f
				break
			}
		}
		require.NotNil(t, tokenFlag)
		assert.True(t, tokenFlag.Required)
		assert.Contains(t, tokenFlag.EnvVars, "TELEGRAM_BOT_TOKEN")
	})

	t.Run("channel-id is bound to CHANNEL_CHAT_ID", func(t *testing.T) {
		cmd := app.Commands[0]
		var channelFlag *cli.Int64Flag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.Int64Flag); ok && f.Name == "channel-id" {
				channelFlag = f
				break
			}
		}
		require.NotNil(t, channelFlag)
		assert.True(t, channelFlag.Required)
		assert.Contains(t, channelFlag.EnvVars, "CHANNEL_CHAT_ID")
	})

	t.Run("channel-link is optional", func(t *testing.T) {
		cmd := app.Commands[0]
		var linkFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "channel-link" {
				linkFlag = f
				break
			}
		}
		require.NotNil(t, linkFlag)
		assert.False(t, linkFlag.Required)
		assert.Contains(t, linkFlag.EnvVars, "CHANNEL_LINK")
	})

	t.Run("job-interval has default value of 1800", func(t *testing.T) {
		cmd := app.Commands[0]
		var intervalFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "job-interval" {
				intervalFlag = f
				break
			}
		}
		require.NotNil(t, intervalFlag)
		assert.Equal(t, 1800, intervalFlag.Value)
		assert.Contains(t, intervalFlag.EnvVars, "JOB_INTERVAL")
	})

	t.Run("find-limit has default value of 5", func(t *testing.T) {
		cmd := app.Commands[0]
		var limitFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "find-limit" {
				limitFlag = f
				break
			}
		}
		require.NotNil(t, limitFlag)
		assert.Equal(t, 5, limitFlag.Value)
		assert.Empty(t, limitFlag.EnvVars)
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		cmd := app.Commands[0]
		var hostFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "embedding-host" {
				hostFlag = f
				break
			}
		}
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})
}

func TestReembedCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "filmdex",
		Commands: []*cli.Command{
			{
				Name:   "reembed",
				Usage:  "Reembed all catalog entries with new embeddings",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
						Value:   "movies.db",
						EnvVars: []string{"DATABASE_FILE"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name",
						Value:   "embeddinggemma",
						EnvVars: []string{"EMBEDDING_MODEL"},
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entries to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entries",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	t.Run("embedding-host has default value", func(t *testing.T) {
		cmd := app.Commands[0]
		var hostFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "embedding-host" {
				hostFlag = f
				break
			}
		}
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})

	t.Run("embedding-model has default value", func(t *testing.T) {
		cmd := app.Commands[0]
		var modelFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "embedding-model" {
				modelFlag = f
				break
			}
		}
		require.NotNil(t, modelFlag)
		assert.Equal(t, "embeddinggemma", modelFlag.Value)
		assert.Contains(t, modelFlag.EnvVars, "EMBEDDING_MODEL")
	})

	t.Run("batch-size has default value of 100", func(t *testing.T) {
		cmd := app.Commands[0]
		var batchFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "batch-size" {
				batchFlag = f
				break
			}
		}
		require.NotNil(t, batchFlag)
		assert.Equal(t, 100, batchFlag.Value)
	})

	t.Run("report-interval has default value of 100", func(t *testing.T) {
		cmd := app.Commands[0]
		var reportFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "report-interval" {
				reportFlag = f
				break
			}
		}
		require.NotNil(t, reportFlag)
		assert.Equal(t, 100, reportFlag.Value)
	})

	t.Run("max-retries has default value of 3", func(t *testing.T) {
		cmd := app.Commands[0]
		var retriesFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "max-retries" {
				retriesFlag = f
				break
			}
		}
		require.NotNil(t, retriesFlag)
		assert.Equal(t, 3, retriesFlag.Value)
	})

	t.Run("retry-delay has default value of 1s", func(t *testing.T) {
		cmd := app.Commands[0]
		var delayFlag *cli.DurationFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.DurationFlag); ok && f.Name == "retry-delay" {
				delayFlag = f
				break
			}
		}
		require.NotNil(t, delayFlag)
		assert.Equal(t, 1*time.Second, delayFlag.Value)
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		testCases := []string{
			"DEBUG",
			"Info",
			"WaRn",
			"ERROR",
		}

		for _, tc := range testCases {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "invalid")
	})

	t.Run("default log level is info", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				level := c.String("log-level")
				assert.Equal(t, "info", level)
				return nil
			},
		}

		err := app.Run([]string{"test"})
		require.NoError(t, err)
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				level := c.String("log-level")
				assert.Equal(t, "debug", level)
				return nil
			},
		}

		err := app.Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestCronLogger(t *testing.T) {
	t.Run("error includes the wrapped error", func(t *testing.T) {
		var buf bytes.Buffer
		l := cronLogger{slog.New(slog.NewTextHandler(&buf, nil))}

		l.Error(assert.AnError, "cycle failed", "job", "ingest")

		assert.Contains(t, buf.String(), "cycle failed")
		assert.Contains(t, buf.String(), "err=")
		assert.Contains(t, buf.String(), "job=ingest")
	})

	t.Run("info passes through", func(t *testing.T) {
		var buf bytes.Buffer
		l := cronLogger{slog.New(slog.NewTextHandler(&buf, nil))}

		l.Info("skip", "job", "ingest")

		assert.Contains(t, buf.String(), "skip")
	})
}

func TestMain(m *testing.M) {
	// Run tests
	code := m.Run()
	os.Exit(code)
}
