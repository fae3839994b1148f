package transport

import "github.com/rs/zerolog/log"

// debug logs low-level protocol tracing: header parses, frame dispatch,
// state transitions. It is always enabled; production deployments filter
// it out at the zerolog level rather than a build tag, so a trace can be
// turned on in the field without a redeploy.
func debug(format string, args ...interface{}) {
	log.Debug().Msgf(format, args...)
}
