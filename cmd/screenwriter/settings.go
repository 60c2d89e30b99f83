/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package main

import (
	"fmt"
	"log/slog"

	"screenwriter/internal/config"
)

type ConfigCmd struct {
	Show      ConfigShowCmd      `cmd:"" default:"1" help:"Print the effective settings"`
	Set       ConfigSetCmd       `cmd:"" help:"Change one setting in the config file"`
	ForgetDSN ConfigForgetDSNCmd `cmd:"" name:"forget-dsn" help:"Remove the stored Postgres DSN from the keychain"`
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(a *app) error {
	if path, err := config.ConfigPath(); err == nil {
		_, _ = fmt.Fprintln(a.out, "# "+path)
	}
	for _, k := range config.Keys {
		v, err := config.Value(a.cfg, k)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%-26s %s", k, v)
		if env, ok := config.EnvOverrideFor(k); ok {
			line += "  (from " + env + ")"
		}
		if _, err := fmt.Fprintln(a.out, line); err != nil {
			return err
		}
	}
	return nil
}

type ConfigSetCmd struct {
	Key   string `arg:"" help:"Setting name as printed by 'config show'"`
	Value string `arg:"" help:"New value"`
}

func (c *ConfigSetCmd) Run(a *app) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.SetValue(&cfg, c.Key, c.Value); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	if env, ok := config.EnvOverrideFor(c.Key); ok {
		a.log.Warn("setting saved but overridden by environment", slog.String("key", c.Key), slog.String("env", env))
	}
	v, _ := config.Value(cfg, c.Key)
	_, err = fmt.Fprintf(a.out, "%s = %s\n", c.Key, v)
	return err
}

type ConfigForgetDSNCmd struct{}

func (c *ConfigForgetDSNCmd) Run(a *app) error {
	if err := config.ForgetDSN(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.out, "Stored DSN removed")
	return err
}
