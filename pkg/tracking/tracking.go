package tracking

import (
	"net/http"

	"github.com/zhafed/richie/pkg/types"
)

// SessionInfo carries the request attributes events need, extracted up
// front so nothing holds the request after the handler returns.
type SessionInfo struct {
	Ip        string
	UserAgent string
	Language  string
}

func SessionInfoFromRequest(r *http.Request) SessionInfo {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return SessionInfo{
		Ip:        ip,
		UserAgent: r.UserAgent(),
		Language:  r.Header.Get("Accept-Language"),
	}
}

type Tracking interface {
	TrackSession(sessionId string, info SessionInfo)
	TrackSearch(sessionId string, filters types.Filters, resultLen int, referer string)
	Close() error
}
