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
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/exograd/go-influx/check"
)

type TLSClientCfg struct {
	CACertificates []string            `json:"ca_certificates"`
	PublicKeyPins  map[string][]string `json:"public_key_pins"`
}

func (cfg *TLSClientCfg) Check(c *check.Checker) {
	c.WithChild("ca_certificates", func() {
		for i, cert := range cfg.CACertificates {
			c.CheckStringNotEmpty(strconv.Itoa(i), cert)
		}
	})

	c.WithChild("public_key_pins", func() {
		for serverName, pins := range cfg.PublicKeyPins {
			c.WithChild(serverName, func() {
				for i, pin := range pins {
					c.CheckStringNotEmpty(strconv.Itoa(i), pin)
				}
			})
		}
	})
}

func LoadCertificates(certificates []string) (*x509.CertPool, error) {
	pool := x509.NewCertPool()

	for _, certificate := range certificates {
		data, err := os.ReadFile(certificate)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", certificate, err)
		}

		if pool.AppendCertsFromPEM(data) == false {
			return nil, fmt.Errorf("cannot load certificates from %s",
				certificate)
		}
	}

	return pool, nil
}

func (c *Client) checkTLSPublicKey(conn *tls.Conn) error {
	if c.Cfg.TLS == nil {
		return nil
	}

	state := conn.ConnectionState()

	pins, found := c.Cfg.TLS.PublicKeyPins[state.ServerName]
	if !found || len(pins) == 0 {
		return nil
	}

	if len(state.PeerCertificates) == 0 {
		return fmt.Errorf("no peer certificate available")
	}

	cert := state.PeerCertificates[0]
	pubKeyData, err := x509.MarshalPKIXPublicKey(cert.PublicKey)
	if err != nil {
		return fmt.Errorf("cannot marshal public key: %w", err)
	}

	hash := sha256.Sum256(pubKeyData)
	hexHash := hex.EncodeToString(hash[:])

	found = false
	for _, pin := range pins {
		if hexHash == pin {
			found = true
			break
		}
	}

	if !found {
		return fmt.Errorf("invalid server certificate: unknown public key")
	}

	return nil
}
