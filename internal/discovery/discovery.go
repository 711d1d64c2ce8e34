// Package discovery annonce et retrouve le service de transcription sur le
// réseau local (mDNS / DNS-SD).
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	Service = "_reelscribe._tcp"
	Domain  = "local."

	DefaultTimeout = 3 * time.Second
)

// ErrNotFound : aucun service annoncé avant l'expiration du délai.
var ErrNotFound = errors.New("aucun service de transcription trouvé sur le réseau local")

// Advertise annonce le service sur port. La fonction retournée retire l'annonce.
func Advertise(name string, port int, txt []string) (func(), error) {
	server, err := zeroconf.Register(name, Service, Domain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("mdns register: %w", err)
	}
	return server.Shutdown, nil
}

// Lookup retourne l'URL de base du premier service trouvé.
// timeout <= 0 => DefaultTimeout.
func Lookup(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("mdns resolver: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, Service, Domain, entries); err != nil {
		return "", fmt.Errorf("mdns browse: %w", err)
	}

	for {
		select {
		case e, ok := <-entries:
			if !ok {
				return "", ErrNotFound
			}
			if base, err := BaseURL(e); err == nil {
				return base, nil
			}
		case <-ctx.Done():
			return "", ErrNotFound
		}
	}
}

// BaseURL construit "http://hôte:port" pour une entrée : IPv4, sinon IPv6,
// sinon nom d'hôte.
func BaseURL(e *zeroconf.ServiceEntry) (string, error) {
	if e == nil || e.Port <= 0 {
		return "", fmt.Errorf("entrée mdns incomplète")
	}
	var host string
	switch {
	case len(e.AddrIPv4) > 0:
		host = e.AddrIPv4[0].String()
	case len(e.AddrIPv6) > 0:
		host = e.AddrIPv6[0].String()
	default:
		host = strings.TrimSuffix(e.HostName, ".")
	}
	if host == "" {
		return "", fmt.Errorf("entrée mdns sans adresse")
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(e.Port)), nil
}
