/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"screenwriter/internal/config"
	"screenwriter/internal/crash"
	applog "screenwriter/internal/log"
)

// app carries what every command needs. kong binds it into the Run methods.
type app struct {
	ctx context.Context
	cfg config.AppConfig
	log *slog.Logger
	out io.Writer
}

// CLI is the command tree.
var CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information"`
	Config  ConfigCmd  `cmd:"" help:"Show or change settings"`

	Classify ClassifyCmd `cmd:"" help:"Print the element type of every line of a script"`
	Format   FormatCmd   `cmd:"" help:"Re-indent a script by element type"`
	Line     LineCmd     `cmd:"" help:"Force one line of a script to an element type"`
	Outline  OutlineCmd  `cmd:"" help:"List the scenes, speeches and characters of a script"`
	PDF      PDFCmd      `cmd:"" name:"pdf" help:"Lay a script out as PDF"`

	Init      InitCmd      `cmd:"" help:"Create a workspace"`
	Import    ImportCmd    `cmd:"" help:"Import a .fountain file into a workspace"`
	Export    ExportCmd    `cmd:"" help:"Export a buffer as a .fountain file"`
	Save      SaveCmd      `cmd:"" help:"Write a buffer to its linked file"`
	Open      OpenCmd      `cmd:"" help:"Open every buffer of a workspace and list them"`
	Scenes    ScenesCmd    `cmd:"" help:"Register the scene headers of a buffer"`
	Search    SearchCmd    `cmd:"" help:"Full-text search over the indexed lines"`
	Snapshots SnapshotsCmd `cmd:"" help:"List the saved versions of a buffer"`
	Restore   RestoreCmd   `cmd:"" help:"List or restore the backups of a script file"`
	Reindex   ReindexCmd   `cmd:"" help:"Rebuild the workspace index"`
	Bundle    BundleCmd    `cmd:"" help:"Zip a workspace for sharing"`
	Unbundle  UnbundleCmd  `cmd:"" help:"Unpack a bundle into a new workspace"`

	Publish PublishCmd `cmd:"" help:"Publish a buffer's elements to the shared Postgres search"`
	Serve   ServeCmd   `cmd:"" help:"Serve the scene registry over HTTP"`
	Token   TokenCmd   `cmd:"" help:"Request a bearer token from a registry server"`
}

func main() {
	_ = godotenv.Load()
	cfg, cfgErr := config.Load()
	applog.Init(cfg.Logging.LogOptions())
	l := applog.WithComponent("cli")
	defer crash.Recover(nil)
	if cfgErr != nil {
		l.Warn("config load failed; using defaults", slog.Any("err", cfgErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&CLI,
		kong.Name("screenwriter"),
		kong.Description("Fountain screenplay formatter and workspace tool"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	l.Debug("start", slog.String("cmd", kctx.Command()))
	err := kctx.Run(&app{ctx: ctx, cfg: cfg, log: l, out: os.Stdout})
	if err != nil {
		l.Error("command failed", slog.String("cmd", kctx.Command()), slog.Any("err", err))
	}
	kctx.FatalIfErrorf(err)
}
