package engine

import (
	"github.com/bmatcuk/doublestar/v2"

	"github.com/testbridge/instrumentation-bridge/internal/lifecycle"
	"github.com/testbridge/instrumentation-bridge/internal/logging"
)

// Quarantine decides which tests are reported as ignored instead of
// being executed. Patterns are doublestar globs matched against the
// display name "<package>#<test>".
type Quarantine struct {
	patterns []string
	log      logging.Logger
}

// NewQuarantine returns a Quarantine for patterns.
func NewQuarantine(patterns []string, log logging.Logger) Quarantine {
	return Quarantine{
		patterns: patterns,
		log:      log,
	}
}

// Match reports whether d is quarantined. Invalid patterns never match.
func (q Quarantine) Match(d lifecycle.Description) bool {
	for _, pattern := range q.patterns {
		ok, err := doublestar.Match(pattern, d.DisplayName)
		if err != nil {
			q.log.Warningf("invalid ignore pattern %q: %v", pattern, err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
