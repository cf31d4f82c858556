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

package influx

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/exograd/go-influx/check"
	"github.com/exograd/go-influx/dhttp"
	"github.com/exograd/go-log"
)

type ClientCfg struct {
	Log        *log.Logger   `json:"-"`
	HTTPClient *dhttp.Client `json:"-"`
	Hostname   string        `json:"-"`

	URI       string    `json:"uri"`
	Database  string    `json:"database"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Precision Precision `json:"precision"`

	BatchSize     int  `json:"batch_size"`
	FlushInterval int  `json:"flush_interval"` // seconds
	GoProbe       bool `json:"go_probe"`

	Tags map[string]string `json:"tags"`
}

func (cfg *ClientCfg) Check(c *check.Checker) {
	if cfg.URI != "" {
		c.CheckStringURI("uri", cfg.URI)
	}

	c.CheckStringNotEmpty("database", cfg.Database)

	if cfg.Precision != "" {
		c.CheckStringValue("precision", string(cfg.Precision), PrecisionValues)
	}

	if cfg.BatchSize != 0 {
		c.CheckIntMin("batch_size", cfg.BatchSize, 1)
	}

	if cfg.FlushInterval != 0 {
		c.CheckIntMin("flush_interval", cfg.FlushInterval, 1)
	}
}

// Client gives access to the write and query endpoints of an InfluxDB 1.x
// server. Write and Query methods are synchronous and safe for concurrent
// use; the optional Start/Stop background loop batches points enqueued with
// EnqueuePoints.
type Client struct {
	Cfg ClientCfg
	Log *log.Logger

	httpClient      *dhttp.Client
	ownedHTTPClient bool

	baseURI   *url.URL
	precision Precision
	tags      map[string]string

	pointsChan chan Points
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

func NewClient(cfg ClientCfg) (*Client, error) {
	if cfg.Log == nil {
		cfg.Log = log.DefaultLogger("influx")
	}

	if cfg.URI == "" {
		cfg.URI = "http://localhost:8086"
	}

	if cfg.Database == "" {
		return nil, fmt.Errorf("missing or empty database")
	}

	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10_000
	}

	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 1
	}

	baseURI, err := url.Parse(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("invalid uri: %w", err)
	}

	precision := cfg.Precision
	if precision == "" {
		precision = PrecisionNanosecond
	}
	if !precision.IsValid() {
		return nil, fmt.Errorf("invalid precision %q", string(precision))
	}

	httpClient := cfg.HTTPClient
	ownedHTTPClient := false
	if httpClient == nil {
		httpClient, err = dhttp.NewClient(dhttp.ClientCfg{
			Log: cfg.Log.Child("http", log.Data{}),
		})
		if err != nil {
			return nil, fmt.Errorf("cannot create http client: %w", err)
		}

		ownedHTTPClient = true
	}

	tags := make(map[string]string)
	if cfg.Hostname != "" {
		tags["host"] = cfg.Hostname
	}
	for name, value := range cfg.Tags {
		tags[name] = value
	}

	c := &Client{
		Cfg: cfg,
		Log: cfg.Log,

		httpClient:      httpClient,
		ownedHTTPClient: ownedHTTPClient,

		baseURI:   baseURI,
		precision: precision,
		tags:      tags,

		pointsChan: make(chan Points, 16),
		stopChan:   make(chan struct{}),
	}

	return c, nil
}

func (c *Client) Start() {
	c.wg.Add(1)
	go c.main()

	if c.Cfg.GoProbe {
		c.wg.Add(1)
		go c.goProbeMain()
	}
}

func (c *Client) Stop() {
	close(c.stopChan)
	c.wg.Wait()
}

func (c *Client) Terminate() {
	if c.ownedHTTPClient {
		c.httpClient.Terminate()
	}
}

// EnqueuePoints schedules points to be written by the background flush
// goroutine. It never blocks: points are dropped if the queue is full.
func (c *Client) EnqueuePoints(points Points) {
	select {
	case c.pointsChan <- points:
	default:
		c.Log.Error("point queue full, dropping %d points", len(points))
	}
}

func (c *Client) EnqueuePoint(point *Point) {
	c.EnqueuePoints(Points{point})
}

func (c *Client) main() {
	defer c.wg.Done()

	timer := time.NewTicker(time.Duration(c.Cfg.FlushInterval) * time.Second)
	defer timer.Stop()

	var batch Points

	flush := func() {
		if len(batch) == 0 {
			return
		}

		if err := c.Write(batch); err != nil {
			c.Log.Error("cannot write %d points: %v", len(batch), err)
		}

		batch = nil
	}

	for {
		select {
		case <-c.stopChan:
			flush()
			return

		case points := <-c.pointsChan:
			batch = append(batch, c.finalizePoints(points)...)

			if len(batch) >= c.Cfg.BatchSize {
				flush()
			}

		case <-timer.C:
			flush()
		}
	}
}

// finalizePoints merges the default client tags into enqueued points.
// Explicit point tags win.
func (c *Client) finalizePoints(points Points) Points {
	for _, p := range points {
		for name, value := range c.tags {
			if p.Tags == nil {
				p.Tags = Tags{}
			}

			if _, found := p.Tags[name]; !found {
				p.Tags[name] = value
			}
		}
	}

	return points
}

func (c *Client) credentials() (string, string, bool) {
	if c.Cfg.Username == "" {
		return "", "", false
	}

	return c.Cfg.Username, c.Cfg.Password, true
}
