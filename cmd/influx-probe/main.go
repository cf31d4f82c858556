// Copyright (c) 2022 Exograd SAS.
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that the above
// copyright notice and this permission notice appear in all copies.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
// WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY
// SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
// WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
// ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR
// IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/exograd/go-influx/check"
	"github.com/exograd/go-influx/djson"
	"github.com/exograd/go-influx/influx"
	"github.com/exograd/go-log"
	"github.com/exograd/go-program"
)

type ProbeCfg struct {
	Logger *log.LoggerCfg   `json:"logger"`
	Influx influx.ClientCfg `json:"influx"`
}

func main() {
	p := program.NewProgram("influx-probe",
		"publish go runtime metrics to an influxdb server")

	p.AddOption("c", "cfg-file", "path", "",
		"the path of the configuration file")
	p.AddOption("u", "uri", "uri", "",
		"the uri of the influxdb server")
	p.AddOption("d", "database", "name", "",
		"the name of the database")
	p.AddOption("q", "query", "query", "",
		"execute a query, print its rows and exit")

	p.ParseCommandLine()

	var cfg ProbeCfg

	if p.IsOptionSet("cfg-file") {
		cfgPath := p.OptionValue("cfg-file")

		if err := LoadCfg(cfgPath, &cfg); err != nil {
			p.Fatal("cannot load configuration: %v", err)
		}
	}

	if p.IsOptionSet("uri") {
		cfg.Influx.URI = p.OptionValue("uri")
	}

	if p.IsOptionSet("database") {
		cfg.Influx.Database = p.OptionValue("database")
	}

	checker := check.NewChecker()
	checker.CheckObject("influx", &cfg.Influx)
	if err := checker.Error(); err != nil {
		p.Fatal("invalid configuration: %v", err)
	}

	logger := log.DefaultLogger("influx-probe")

	if cfg.Logger != nil {
		logger2, err := log.NewLogger("influx-probe", *cfg.Logger)
		if err != nil {
			p.Fatal("invalid logger configuration: %v", err)
		}

		logger = logger2
	}

	hostname, err := os.Hostname()
	if err != nil {
		p.Fatal("cannot obtain hostname: %v", err)
	}

	cfg.Influx.Log = logger.Child("influx", log.Data{})
	cfg.Influx.Hostname = hostname

	if !p.IsOptionSet("query") {
		cfg.Influx.GoProbe = true
	}

	client, err := influx.NewClient(cfg.Influx)
	if err != nil {
		p.Fatal("cannot create influx client: %v", err)
	}
	defer client.Terminate()

	if p.IsOptionSet("query") {
		runQuery(p, client, p.OptionValue("query"))
		return
	}

	client.Start()

	logger.Info("publishing to %s", cfg.Influx.URI)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	signo := <-sigChan
	fmt.Println()
	logger.Info("received signal %d (%v)", signo, signo)

	client.Stop()
}

// runQuery prints each row as a json object, one per line.
func runQuery(p *program.Program, client *influx.Client, query string) {
	parser := func(name string, tags influx.Tags, columns []string, values []djson.Value) (interface{}, error) {
		row := map[string]interface{}{
			"name":   name,
			"values": values,
		}

		if len(tags) > 0 {
			row["tags"] = tags
		}
		if len(columns) > 0 {
			row["columns"] = columns
		}

		return row, nil
	}

	printer := influx.AccumulatorFunc(func(batch []interface{}) error {
		for _, row := range batch {
			data, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("cannot encode row: %w", err)
			}

			fmt.Println(string(data))
		}

		return nil
	})

	if err := client.QueryChunked(query, parser, printer); err != nil {
		p.Fatal("cannot execute query: %v", err)
	}
}
