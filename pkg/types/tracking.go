package types

import (
	"net/http"
)

type Tracking interface {
	TrackSession(sessionId string, r *http.Request)
	TrackFilter(sessionId string, criteria FilterCriteria, sort SortKey, resultLen int)
	TrackProductView(sessionId string, id ProductId)
	Close() error
}
