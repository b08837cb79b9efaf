// Package rpc holds what the transports have in common.
package rpc

import (
	"fmt"
	"io"
	"net"
)

// Transport is a running RPC listener.
type Transport interface {
	Addr() net.Addr
	Serve()
	Close()
}

// AnnouncePort writes the bound port on its own line so the process that
// spawned the server can connect to it.
func AnnouncePort(w io.Writer, addr net.Addr) error {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return fmt.Errorf("cannot announce port of %s address", addr.Network())
	}
	_, err := fmt.Fprintf(w, "%d\n", tcp.Port)
	return err
}
