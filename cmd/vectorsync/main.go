// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	vectorsync "github.com/poiesic/vectorsync"
	"github.com/poiesic/vectorsync/ai"
	"github.com/poiesic/vectorsync/source/filesystem"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "vectorsync",
		Usage: "Document ingestion and vector search for external content sources",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest a directory of documents for a user",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User whose namespace receives the chunks",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "dir",
						Usage:    "Directory to ingest",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-ingest every document regardless of stored content hashes",
					},
					&cli.DurationFlag{
						Name:  "request-timeout",
						Usage: "Per-call timeout for embedding requests",
						Value: 30 * time.Second,
					},
				},
			},
			{
				Name:   "jobs",
				Usage:  "List recent ingestion jobs for a user",
				Action: jobsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User to list jobs for",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of jobs to list",
						Value: 20,
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the status of one ingestion job",
				Action:    statusCommand,
				ArgsUsage: "<job-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "log",
						Usage: "Include the job's log messages",
					},
				},
			},
			{
				Name:      "cancel",
				Usage:     "Cancel an in-flight ingestion job",
				Action:    cancelCommand,
				ArgsUsage: "<job-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Search a user's ingested chunks",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User whose namespace to search",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Search query",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results",
						Value: 10,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	source, err := filesystem.NewSource(c.String("dir"))
	if err != nil {
		return err
	}

	job, err := db.RunSync(ctx, c.String("user"), source, filesystem.NewParser(), c.Bool("force"))
	if err != nil {
		return fmt.Errorf("ingestion run failed: %w", err)
	}

	fmt.Printf("job %s finished: %s\n", job.Id, job.Status)
	fmt.Printf("  found=%d processed=%d embedded=%d skipped=%d deleted=%d errors=%d\n",
		job.Counters.Found, job.Counters.Processed, job.Counters.Embedded,
		job.Counters.Skipped, job.Counters.Deleted, job.Counters.Errors)
	if job.ErrorSummary != "" {
		fmt.Printf("  error: %s\n", job.ErrorSummary)
	}
	return nil
}

func jobsCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	jobList, err := db.Jobs(ctx, c.String("user"), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	for _, job := range jobList {
		fmt.Printf("%s  %-9s  created=%s  found=%d processed=%d embedded=%d skipped=%d deleted=%d errors=%d\n",
			job.Id, job.Status, job.CreatedAt.Format(time.RFC3339),
			job.Counters.Found, job.Counters.Processed, job.Counters.Embedded,
			job.Counters.Skipped, job.Counters.Deleted, job.Counters.Errors)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	jobID := c.Args().First()
	if jobID == "" {
		return fmt.Errorf("job ID argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	job, err := db.JobStatus(ctx, jobID)
	if err != nil {
		return err
	}

	fmt.Printf("job %s: %s\n", job.Id, job.Status)
	fmt.Printf("  user: %s\n", job.UserID)
	fmt.Printf("  found=%d processed=%d embedded=%d skipped=%d deleted=%d errors=%d\n",
		job.Counters.Found, job.Counters.Processed, job.Counters.Embedded,
		job.Counters.Skipped, job.Counters.Deleted, job.Counters.Errors)
	if job.ErrorSummary != "" {
		fmt.Printf("  error: %s\n", job.ErrorSummary)
	}
	if c.Bool("log") {
		for _, entry := range job.Log {
			fmt.Printf("  %s  %s\n", entry.At.Format(time.RFC3339), entry.Message)
		}
	}
	return nil
}

func cancelCommand(c *cli.Context) error {
	ctx := context.Background()

	jobID := c.Args().First()
	if jobID == "" {
		return fmt.Errorf("job ID argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.CancelRun(ctx, jobID); err != nil {
		return err
	}
	fmt.Printf("job %s cancelled\n", jobID)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := db.Search(ctx, c.String("user"), c.String("query"), c.Int("max-hits"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for i, result := range results {
		fmt.Printf("%2d. [%.3f] %s #%d (%s)\n", i+1, result.Score,
			result.Chunk.Chunk.SourceID, result.Chunk.Chunk.SequenceIndex,
			result.Chunk.Chunk.Title)
		fmt.Printf("    %s\n", firstLine(result.Chunk.Chunk.Text))
	}
	return nil
}

func openDatabase(c *cli.Context) (*vectorsync.Database, error) {
	opts := []vectorsync.DatabaseOption{}
	if c.IsSet("embedding-model") || c.IsSet("embedding-host") {
		opts = append(opts, vectorsync.WithAIConfig(ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithRequestTimeout(c.Duration("request-timeout")),
		)))
	}

	db, err := vectorsync.NewDatabase(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}
