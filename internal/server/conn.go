package server

import (
	"errors"
	"io"
	"net"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"mpacklog/internal/logging"
	"mpacklog/internal/mpack"
)

// serveConn answers snapshot requests on one client connection until the
// client disconnects, the service stops, or the connection breaks. A broken
// connection terminates only this loop, never the server.
func (s *Service) serveConn(conn net.Conn) {
	defer conn.Close()

	logger := logging.NewComponentLogger(s.logger, "server").With(
		logging.String("conn_id", uuid.NewString()[:8]),
		logging.String("peer", conn.RemoteAddr().String()))
	logger.Info("new connection")

	limiter := rate.NewLimiter(rate.Limit(s.frequency), 1)
	buf := make([]byte, 4096)

	for s.ctx.Err() == nil {
		n, err := conn.Read(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Debug("connection read ended", logging.Error(err))
			}
			break
		}
		if n == 0 {
			break
		}

		request := strings.TrimSpace(string(buf[:n]))
		if !utf8.ValidString(request) {
			logger.Warn("ignoring undecodable request")
			continue
		}

		switch request {
		case "get":
			reply, err := mpack.Encode(s.cell.Snapshot())
			if err != nil {
				logger.Warn("encode snapshot failed", logging.Error(err))
				continue
			}
			if _, err := conn.Write(reply); err != nil {
				logger.Debug("write reply failed", logging.Error(err))
				logger.Info("closing connection")
				return
			}
		case "stop":
			logger.Info("stop requested by client")
			// Stop blocks on the accept loop, so it must not run on this
			// goroutine.
			go s.Stop()
			logger.Info("closing connection")
			return
		default:
			logger.Debug("ignoring unknown request", logging.String("request", request))
		}

		if err := limiter.Wait(s.ctx); err != nil {
			break
		}
	}
	logger.Info("closing connection")
}
