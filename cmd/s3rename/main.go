// Copyright 2025 walteh LLC
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
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/walteh/s3rename/cmd/s3rename/opts"
)

const defaultConfigFile = ".s3rename.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := execute(ctx, &opts.RootOpts{
		NewAPI:            opts.S3API,
		DefaultConfigFile: defaultConfigFile,
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
	}, os.Args[1:])

	stop()
	os.Exit(code)
}

// execute runs the command line and returns the process exit code
func execute(ctx context.Context, o *opts.RootOpts, args []string) int {
	cmd := newRootCmd(o)
	cmd.SetArgs(args)
	cmd.SetOut(o.Stdout)
	cmd.SetErr(o.Stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(o.Stderr, "❌ %s\n", color.New(color.FgRed).Sprint(err))
		return 1
	}
	return 0
}
