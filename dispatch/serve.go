package dispatch

import (
	"net"
	"net/http"

	"golang.org/x/net/netutil"
)

// ListenAndServe listens on addr and serves handler. When maxConns is
// positive the listener accepts at most that many simultaneous
// connections; further connections block in the kernel accept queue
// rather than being refused.
func ListenAndServe(addr string, maxConns int, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	if maxConns > 0 {
		ln = netutil.LimitListener(ln, maxConns)
	}

	return http.Serve(ln, handler)
}
