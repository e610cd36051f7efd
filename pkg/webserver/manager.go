package webserver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"f1lapcompare/pkg/chart"
	"f1lapcompare/pkg/compare"
	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/session"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{} // use default options

type Sessions interface {
	Load(ctx context.Context, key model.SessionKey) (session.LoadResult, error)
	Key() (model.SessionKey, bool)
	Drivers() []string
	SlotDriver(slot session.Slot) (string, bool)
	LapsForDriver(driver string, slot session.Slot) ([]string, error)
	Weather() model.Weather
	DriverInfo(driver string) model.DriverInfo
	ClearCache() (string, error)
}

type Comparer interface {
	Compare(ctx context.Context, req compare.Request) (*compare.Result, error)
}

// Manager serves the comparison API. The last comparison and its chart view
// are kept so image, zoom and hover requests can refer to it.
type Manager struct {
	r          *mux.Router
	addr       string
	exportsDir string
	sessions   Sessions
	comparer   Comparer

	mu   sync.Mutex
	last *compare.Result
	view chart.View
}

func NewManager(addr, exportsDir string, sessions Sessions, comparer Comparer) *Manager {
	m := &Manager{
		r:          mux.NewRouter(),
		addr:       addr,
		exportsDir: exportsDir,
		sessions:   sessions,
		comparer:   comparer,
	}

	m.rootHandlers()
	m.apiHandlers(m.r.PathPrefix("/api").Subrouter())
	return m
}

func (m *Manager) Handler() http.Handler {
	return m.r
}

func (m *Manager) rootHandlers() {
	m.r.HandleFunc("/", m.viewerHandler()).Methods(http.MethodGet)
}

func (m *Manager) current() (*compare.Result, chart.View) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.view
}

func (m *Manager) setCurrent(r *compare.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = r
	m.view = chart.FitView(r)
}

func (m *Manager) Debug() {
	_ = m.r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err == nil {
			fmt.Println("ROUTE:", pathTemplate)
		}
		methods, err := route.GetMethods()
		if err == nil {
			fmt.Println("Methods:", strings.Join(methods, ","))
		}
		fmt.Println()
		return nil
	})
}

// Serve blocks until ctx is done and then shuts the server down.
func (m *Manager) Serve(ctx context.Context) {
	srv := &http.Server{
		Addr: m.addr,
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      m.r,
	}

	go func() {
		log.Printf("webserver listening on %s\n", m.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Println(err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	log.Println("webserver shutting down")
}
