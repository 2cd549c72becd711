// Package metrics counts API requests and championship calculations and
// renders them in the Prometheus text exposition format.
package metrics

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const (
	requestsName     = "cc6_http_requests_total"
	calculationsName = "cc6_championship_calculation_seconds"
)

type requestKey struct {
	method string
	route  string
	status int
}

type summary struct {
	count uint64
	sum   float64
}

// Registry holds the counters. A nil *Registry discards observations.
type Registry struct {
	mu       sync.Mutex
	requests map[requestKey]uint64
	calcs    map[string]*summary
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		requests: map[requestKey]uint64{},
		calcs:    map[string]*summary{},
	}
}

// ObserveRequest counts one handled request. route is the route template,
// not the raw path.
func (r *Registry) ObserveRequest(method, route string, status int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.requests[requestKey{method, route, status}]++
	r.mu.Unlock()
}

// ObserveCalculation records how long one championship calculation of kind took.
func (r *Registry) ObserveCalculation(kind string, d time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.calcs[kind]
	if !ok {
		s = &summary{}
		r.calcs[kind] = s
	}
	s.count++
	s.sum += d.Seconds()
}

// Families snapshots the registry as metric families.
func (r *Registry) Families() []*dto.MetricFamily {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]requestKey, 0, len(r.requests))
	for k := range r.requests {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.route != b.route {
			return a.route < b.route
		}
		if a.method != b.method {
			return a.method < b.method
		}
		return a.status < b.status
	})
	requests := &dto.MetricFamily{
		Name: ptr(requestsName),
		Help: ptr("HTTP requests handled, by method, route and status."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, k := range keys {
		requests.Metric = append(requests.Metric, &dto.Metric{
			Label: []*dto.LabelPair{
				label("method", k.method),
				label("route", k.route),
				label("status", strconv.Itoa(k.status)),
			},
			Counter: &dto.Counter{Value: ptr(float64(r.requests[k]))},
		})
	}

	kinds := make([]string, 0, len(r.calcs))
	for k := range r.calcs {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	calcs := &dto.MetricFamily{
		Name: ptr(calculationsName),
		Help: ptr("Time spent computing championship standings."),
		Type: dto.MetricType_SUMMARY.Enum(),
	}
	for _, k := range kinds {
		s := r.calcs[k]
		calcs.Metric = append(calcs.Metric, &dto.Metric{
			Label:   []*dto.LabelPair{label("kind", k)},
			Summary: &dto.Summary{SampleCount: ptr(s.count), SampleSum: ptr(s.sum)},
		})
	}

	var out []*dto.MetricFamily
	for _, mf := range []*dto.MetricFamily{requests, calcs} {
		if len(mf.Metric) > 0 {
			out = append(out, mf)
		}
	}
	return out
}

// WriteText writes every family in the Prometheus text format.
func (r *Registry) WriteText(w io.Writer) error {
	for _, mf := range r.Families() {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Middleware counts every request passing through e.
func (r *Registry) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			} else if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			r.ObserveRequest(c.Request().Method, route, status)
			return err
		}
	}
}

// Handler serves the registry for Prometheus to scrape.
func (r *Registry) Handler(c echo.Context) error {
	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, string(expfmt.NewFormat(expfmt.TypeTextPlain)), buf.Bytes())
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: ptr(name), Value: ptr(value)}
}

func ptr[T any](v T) *T {
	return &v
}
