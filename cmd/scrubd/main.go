/*
 * Minio Cloud Storage, (C) 2016, 2017, 2018 Minio, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"os"

	"github.com/minio/cli"

	"github.com/snaparray/scrubcore/internal/logger"
)

var scrubdFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "quiet",
		Usage: "disable the progress bar and informational console output",
	},
	cli.BoolFlag{
		Name:  "json",
		Usage: "emit block errors and fatal diagnostics as one JSON object per line",
	},
}

func newApp(name string) *cli.App {
	app := cli.NewApp()
	app.Name = name
	app.Usage = "background bitrot scrubber for a parity-protected disk array"
	app.Flags = scrubdFlags
	app.Commands = []cli.Command{scrubCmd}
	app.CommandNotFound = func(ctx *cli.Context, cmd string) {
		logger.Println("scrubd: unknown command", cmd)
		cli.ShowAppHelpAndExit(ctx, 1)
	}
	return app
}

func main() {
	logger.Init(os.Getenv("GOPATH"))

	app := newApp(os.Args[0])
	if err := app.Run(os.Args); err != nil {
		logger.FatalIf(err, "scrubd: fatal error")
	}
}
