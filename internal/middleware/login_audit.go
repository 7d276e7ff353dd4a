package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/InternLink/portal-service/internal/models"
	"github.com/InternLink/portal-service/internal/repository"
	"github.com/InternLink/portal-service/internal/telemetry"
	"github.com/InternLink/portal-service/internal/util"
	"github.com/InternLink/portal-service/internal/util/logger"
)

// Publisher is the minimal export interface the recorder needs.
type Publisher interface {
	Publish(telemetry.LoginAuditEvent)
}

// LoginAuditRecorder appends one audit entry per admitted request. The
// append is fire-and-forget: the entry goes onto a buffered channel and
// the response never waits on persistence. Storage failures are logged
// and swallowed.
type LoginAuditRecorder struct {
	store   repository.LoginHistoryStore
	shipper Publisher
	clock   util.Clock
	ch      chan auditItem
	stop    chan struct{}
	done    chan struct{}
}

type auditItem struct {
	rec    models.LoginRecord
	method string
	path   string
}

func NewLoginAuditRecorder(store repository.LoginHistoryStore, shipper Publisher, clock util.Clock, queueCapacity int) *LoginAuditRecorder {
	if queueCapacity <= 0 {
		queueCapacity = 1024
	}
	return &LoginAuditRecorder{
		store:   store,
		shipper: shipper,
		clock:   clock,
		ch:      make(chan auditItem, queueCapacity),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (rec *LoginAuditRecorder) Start() {
	go rec.loop()
}

// Stop drains the queue so entries enqueued before shutdown still land.
func (rec *LoginAuditRecorder) Stop(ctx context.Context) {
	close(rec.stop)
	select {
	case <-rec.done:
	case <-ctx.Done():
	}
}

func (rec *LoginAuditRecorder) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.UserAgent()
		item := auditItem{
			rec: models.LoginRecord{
				ID:        uuid.New(),
				Browser:   util.BrowserFamily(ua),
				OS:        util.OSFamily(ua),
				IP:        sourceAddress(r),
				LoginTime: rec.clock.Now(),
			},
			method: r.Method,
			path:   r.URL.Path,
		}
		select {
		case rec.ch <- item:
		default:
			logger.Warnf("login audit queue full, dropping entry ip=%s", item.rec.IP)
		}
		next.ServeHTTP(w, r)
	})
}

func (rec *LoginAuditRecorder) loop() {
	defer close(rec.done)
	for {
		select {
		case item := <-rec.ch:
			rec.persist(item)
		case <-rec.stop:
			for {
				select {
				case item := <-rec.ch:
					rec.persist(item)
				default:
					return
				}
			}
		}
	}
}

func (rec *LoginAuditRecorder) persist(item auditItem) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rec.store.Append(ctx, item.rec); err != nil {
		logger.Errorf("login audit append failed: %v", err)
	}
	if rec.shipper != nil {
		rec.shipper.Publish(telemetry.LoginAuditEvent{
			Timestamp: item.rec.LoginTime.UTC(),
			Browser:   item.rec.Browser,
			OS:        item.rec.OS,
			IP:        item.rec.IP,
			Method:    item.method,
			Path:      item.path,
		})
	}
}

func sourceAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
