package quic

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/corequic/quic/transport"
)

type logLevel int

// Log levels
const (
	levelOff logLevel = iota
	levelError
	levelInfo
	levelDebug
	levelTrace
)

// logger renders structured transport.LogEvent values through zerolog,
// mirroring the per-connection qlog-style tracing spec.md §4 asks the
// "ambient stack" to carry.
type logger struct {
	level logLevel
	zl    zerolog.Logger
}

func (s *logger) setWriter(w io.Writer) {
	s.zl = zerolog.New(w).With().Timestamp().Logger()
}

func (s *logger) log(level logLevel, format string, values ...interface{}) {
	if s.level < level {
		return
	}
	var ev *zerolog.Event
	switch level {
	case levelError:
		ev = s.zl.Error()
	case levelInfo:
		ev = s.zl.Info()
	case levelDebug:
		ev = s.zl.Debug()
	default:
		ev = s.zl.Trace()
	}
	ev.Msg(fmt.Sprintf(format, values...))
}

// attachLogger wires a connection's qlog-shaped event stream into this
// logger, active only at debug level and above so routine traffic does not
// drown out connection-lifecycle logging.
func (s *logger) attachLogger(c *remoteConn) {
	if s.level < levelDebug {
		return
	}
	tl := transactionLogger{logger: s, addr: fmt.Sprint(c.addr), scid: fmt.Sprintf("%x", c.scid)}
	c.conn.OnLogEvent(tl.logEvent)
}

func (s *logger) detachLogger(c *remoteConn) {
	c.conn.OnLogEvent(nil)
}

type transactionLogger struct {
	logger *logger
	addr   string
	scid   string
}

func (t *transactionLogger) logEvent(e transport.LogEvent) {
	ev := t.logger.zl.Debug().Str("addr", t.addr).Str("scid", t.scid).Str("event", e.Type)
	for _, f := range e.Fields {
		if f.Str != "" {
			ev = ev.Str(f.Key, f.Str)
		} else {
			ev = ev.Uint64(f.Key, f.Num)
		}
	}
	ev.Send()
}
