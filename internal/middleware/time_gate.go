package middleware

import (
	"net/http"

	"github.com/InternLink/portal-service/internal/util"
)

// Mobile traffic is admitted only between 10:00 and 12:59 local time.
const (
	accessWindowStartHour = 10
	accessWindowEndHour   = 13 // exclusive
)

// TimeGate denies mobile-class requests outside the access window. It is
// the first element of the chain: a denial short-circuits before the audit
// recorder or any route logic runs.
type TimeGate struct {
	clock util.Clock
}

func NewTimeGate(clock util.Clock) *TimeGate {
	return &TimeGate{clock: clock}
}

func (g *TimeGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		osFamily := util.OSFamily(r.UserAgent())
		if util.IsMobileOS(osFamily) {
			hour := g.clock.Now().Hour()
			if hour < accessWindowStartHour || hour >= accessWindowEndHour {
				http.Error(w, "Access denied outside 10 AM to 1 PM", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
