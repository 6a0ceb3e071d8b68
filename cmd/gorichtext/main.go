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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gorichtext/internal/cli"
	"gorichtext/internal/crash"
	applog "gorichtext/internal/log"
)

func main() {
	// initialize structured logging using environment defaults; the config
	// file may refine it once loaded
	applog.Init(applog.FromEnv())
	cc := &crash.Context{}
	defer crash.Recover(cc)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.New(cc).Execute(ctx, os.Args[1:], os.Stdout)
	cancel()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		applog.WithComponent("cli").Debug("command failed", slog.Any("err", err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
