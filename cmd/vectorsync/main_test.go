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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
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
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestIngestCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "vectorsync",
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Required: true},
					&cli.StringFlag{Name: "user", Required: true},
					&cli.StringFlag{Name: "dir", Required: true},
					&cli.StringFlag{Name: "embedding-model", Required: true},
				},
			},
		},
	}

	t.Run("db is required", func(t *testing.T) {
		err := app.Run([]string{"vectorsync", "ingest", "--user", "alice", "--dir", "/tmp/docs", "--embedding-model", "m"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("user is required", func(t *testing.T) {
		err := app.Run([]string{"vectorsync", "ingest", "--db", "/tmp/db", "--dir", "/tmp/docs", "--embedding-model", "m"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user")
	})

	t.Run("embedding-model is required", func(t *testing.T) {
		err := app.Run([]string{"vectorsync", "ingest", "--db", "/tmp/db", "--user", "alice", "--dir", "/tmp/docs"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding-model")
	})
}

func TestFirstLine(t *testing.T) {
	t.Run("single line passes through", func(t *testing.T) {
		assert.Equal(t, "hello", firstLine("hello"))
	})

	t.Run("keeps only the first line", func(t *testing.T) {
		assert.Equal(t, "first", firstLine("first\nsecond\nthird"))
	})

	t.Run("long lines are truncated", func(t *testing.T) {
		long := strings.Repeat("x", 200)
		got := firstLine(long)
		assert.Len(t, got, 123)
		assert.True(t, strings.HasSuffix(got, "..."))
	})
}
