package flightrecorder

import (
	"crypto/sha256"
	"encoding/hex"
)

// severityRank orders Level for MinSeverity comparisons; higher is more
// severe.
var severityRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// MeetsMinSeverity reports whether lvl is at least as severe as min.
func MeetsMinSeverity(lvl Level, min MinSeverity) bool {
	return severityRank[lvl] >= severityRank[Level(min)]
}

// Fingerprint computes the content-derived, stable hash over
// {code, source, surface, message_template} that groups diagnostics in
// ListProblems (§4.4). Two diagnostics with identical code/source/surface/
// template always fingerprint identically regardless of the specific
// message or timestamp.
func Fingerprint(code, source, surface, messageTemplate string) string {
	h := sha256.New()
	h.Write([]byte(code))
	h.Write([]byte{0})
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(surface))
	h.Write([]byte{0})
	h.Write([]byte(messageTemplate))
	return hex.EncodeToString(h.Sum(nil))
}
