// Command filterstorm fires overlapping doctor filter requests on shared
// portal sessions and reports how many were delivered and how many were
// superseded by a newer request.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-portal/internal/logging"
)

type StormConfig struct {
	PortalURL string
	Duration  time.Duration
	Sessions  int
	Burst     int
	Pause     time.Duration
}

type OperationMetrics struct {
	Total      int64
	Delivered  int64
	Superseded int64
	Error      int64
	Latencies  []time.Duration
	mu         sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch status {
	case http.StatusOK:
		atomic.AddInt64(&om.Delivered, 1)
	case http.StatusNoContent:
		atomic.AddInt64(&om.Superseded, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Storm struct {
	config  StormConfig
	log     logrus.FieldLogger
	metrics OperationMetrics
	// bursts in which more than one response was delivered
	multiDelivered int64
	bursts         int64
}

var specialties = []string{"", "Cardiology", "Dermatology", "Neurology", "Pediatrics", "General"}
var periods = []string{"", "AM", "PM"}

func main() {
	_ = godotenv.Load()
	log := logging.New(getEnv("APP_ENV", "dev"))

	cfg := loadConfig()
	if cfg.Sessions <= 0 || cfg.Burst <= 0 || cfg.Duration <= 0 {
		log.Fatal("FS_SESSIONS, FS_BURST and FS_DURATION must be > 0")
	}

	log.WithFields(logrus.Fields{
		"portal":   cfg.PortalURL,
		"duration": cfg.Duration.String(),
		"sessions": cfg.Sessions,
		"burst":    cfg.Burst,
	}).Info("filterstorm starting")

	gofakeit.Seed(time.Now().UnixNano())

	s := &Storm{config: cfg, log: log}
	s.Run()
	s.PrintReport()
}

func loadConfig() StormConfig {
	return StormConfig{
		PortalURL: strings.TrimRight(getEnv("FS_PORTAL_URL", "http://localhost:8081"), "/"),
		Duration:  getDuration("FS_DURATION", 20*time.Second),
		Sessions:  getInt("FS_SESSIONS", 5),
		Burst:     getInt("FS_BURST", 4),
		Pause:     getDuration("FS_PAUSE", 200*time.Millisecond),
	}
}

func (s *Storm) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.config.Sessions; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := s.session(ctx, id); err != nil {
				s.log.WithError(err).WithField("session", id).Error("session aborted")
			}
		}(i)
	}
	wg.Wait()
	s.log.Info("storm complete")
}

// session opens one portal session, then keeps firing bursts of concurrent
// filter requests that share its cookie.
func (s *Storm) session(ctx context.Context, id int) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	client := &http.Client{Jar: jar, Timeout: 30 * time.Second}

	resp, err := client.Get(s.config.PortalURL + "/patient")
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		s.burst(ctx, client, rng)
		time.Sleep(s.config.Pause)
	}
}

func (s *Storm) burst(ctx context.Context, client *http.Client, rng *rand.Rand) {
	var wg sync.WaitGroup
	var delivered int64

	for i := 0; i < s.config.Burst; i++ {
		q := url.Values{
			"name":      {randomPrefix(rng)},
			"time":      {periods[rng.Intn(len(periods))]},
			"specialty": {specialties[rng.Intn(len(specialties))]},
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.filter(ctx, client, q) == http.StatusOK {
				atomic.AddInt64(&delivered, 1)
			}
		}()
		// Stagger starts by up to 20ms.
		time.Sleep(time.Duration(rng.Intn(20)) * time.Millisecond)
	}
	wg.Wait()

	atomic.AddInt64(&s.bursts, 1)
	if delivered > 1 {
		atomic.AddInt64(&s.multiDelivered, 1)
	}
}

func randomPrefix(rng *rand.Rand) string {
	if rng.Intn(3) == 0 {
		return ""
	}
	name := gofakeit.LastName()
	return name[:1+rng.Intn(len(name))]
}

func (s *Storm) filter(ctx context.Context, client *http.Client, q url.Values) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.config.PortalURL+"/patient/doctors/fragment?"+q.Encode(), nil)
	if err != nil {
		return 0
	}
	req.Header.Set("X-Requested-With", "portal")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if ctx.Err() == nil {
			s.metrics.Record(latency, 0)
		}
		return 0
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	s.metrics.Record(latency, resp.StatusCode)
	return resp.StatusCode
}

func (s *Storm) PrintReport() {
	om := &s.metrics
	total := atomic.LoadInt64(&om.Total)

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("FILTER STORM REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Sessions: %d  Burst: %d\n", s.config.Sessions, s.config.Burst)
	fmt.Println()

	if total == 0 {
		fmt.Println("no requests completed")
		return
	}

	pct := func(n int64) float64 { return float64(n) / float64(total) * 100 }
	delivered := atomic.LoadInt64(&om.Delivered)
	superseded := atomic.LoadInt64(&om.Superseded)
	errs := atomic.LoadInt64(&om.Error)
	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("Requests: %d\n", total)
	fmt.Printf("  Delivered (200): %d (%.1f%%)\n", delivered, pct(delivered))
	fmt.Printf("  Superseded (204): %d (%.1f%%)\n", superseded, pct(superseded))
	if errs > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", errs, pct(errs))
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Printf("Bursts: %d, with more than one delivered response: %d\n",
		atomic.LoadInt64(&s.bursts), atomic.LoadInt64(&s.multiDelivered))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
