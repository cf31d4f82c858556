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

package dhttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/exograd/go-influx/check"
	"github.com/exograd/go-log"
)

type ClientCfg struct {
	Log *log.Logger `json:"-"`

	LogRequests bool `json:"log_requests"`

	Timeout int `json:"timeout"` // seconds

	TLS *TLSClientCfg `json:"tls"`

	Header http.Header `json:"-"`
}

type Client struct {
	Cfg ClientCfg
	Log *log.Logger

	Client *http.Client

	tlsCfg *tls.Config
}

func (cfg *ClientCfg) Check(c *check.Checker) {
	if cfg.Timeout != 0 {
		c.CheckIntMin("timeout", cfg.Timeout, 1)
	}

	c.CheckOptionalObject("tls", cfg.TLS)
}

func NewClient(cfg ClientCfg) (*Client, error) {
	if cfg.Log == nil {
		cfg.Log = log.DefaultLogger("http-client")
	}

	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		MaxIdleConns: 100,

		IdleConnTimeout:       60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	tlsCfg := &tls.Config{}

	if cfg.TLS != nil {
		caCertificatePool, err := LoadCertificates(cfg.TLS.CACertificates)
		if err != nil {
			return nil, err
		}

		tlsCfg.RootCAs = caCertificatePool
	}

	client := &http.Client{
		Timeout:   timeout,
		Transport: NewRoundTripper(transport, &cfg),
	}

	c := &Client{
		Cfg: cfg,
		Log: cfg.Log,

		Client: client,

		tlsCfg: tlsCfg,
	}

	transport.DialTLSContext = c.dialTLSContext

	return c, nil
}

func (c *Client) Terminate() {
	c.Client.CloseIdleConnections()
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.Client.Do(req)
}

func (c *Client) SendRequest(method string, uri *url.URL, header map[string]string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, uri.String(), body)
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}

	for name, value := range header {
		req.Header.Set(name, value)
	}

	return c.Do(req)
}

func (c *Client) dialTLSContext(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		},
		Config: c.tlsCfg,
	}

	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}

	if err := c.checkTLSPublicKey(conn.(*tls.Conn)); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}
