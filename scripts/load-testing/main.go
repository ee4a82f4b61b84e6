package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

type LoadTestConfig struct {
	BaseURL             string
	ConcurrentUsers     int
	TestDurationSeconds int
	RampUpSeconds       int
	OutputFile          string
}

type TestResult struct {
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	SalesCreated       int64
	SalesSettled       int64
	DoubleSettlements  int64
	ResponseTimes      []time.Duration
	Errors             map[string]int64
	mutex              sync.Mutex
}

type PerformanceMetrics struct {
	StartTime         time.Time
	EndTime           time.Time
	TotalDuration     time.Duration
	ThroughputRPS     float64
	ErrorRate         float64
	P50ResponseTime   time.Duration
	P95ResponseTime   time.Duration
	P99ResponseTime   time.Duration
	SalesCreated      int64
	SalesSettled      int64
	DoubleSettlements int64
}

type LoadTester struct {
	config  *LoadTestConfig
	result  *TestResult
	client  *http.Client
	eventID string
}

type saleResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func NewLoadTester(config *LoadTestConfig) *LoadTester {
	return &LoadTester{
		config: config,
		result: &TestResult{
			Errors: make(map[string]int64),
		},
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        1000,
				MaxIdleConnsPerHost: 100,
				MaxConnsPerHost:     200,
			},
		},
	}
}

func (lt *LoadTester) recordResponse(duration time.Duration, success bool, operation string, err error) {
	lt.result.mutex.Lock()
	defer lt.result.mutex.Unlock()

	atomic.AddInt64(&lt.result.TotalRequests, 1)
	lt.result.ResponseTimes = append(lt.result.ResponseTimes, duration)

	if success {
		atomic.AddInt64(&lt.result.SuccessfulRequests, 1)
		return
	}
	atomic.AddInt64(&lt.result.FailedRequests, 1)
	if err != nil {
		lt.result.Errors[fmt.Sprintf("%s: %s", operation, err.Error())]++
	}
}

func (lt *LoadTester) send(method, path string, body interface{}) (int, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}

	req, err := http.NewRequest(method, lt.config.BaseURL+path, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := lt.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, err
}

// setupEvent creates an event whose sales window is open for the whole run.
func (lt *LoadTester) setupEvent() error {
	now := time.Now().UTC()
	status, body, err := lt.send(http.MethodPost, "/events", map[string]interface{}{
		"description":   "Load test event",
		"type":          "SHOW",
		"location":      "Load test arena",
		"dateTime":      now.Add(48 * time.Hour).Format(time.RFC3339),
		"startingSales": now.Add(-time.Hour).Format(time.RFC3339),
		"endingSales":   now.Add(24 * time.Hour).Format(time.RFC3339),
		"price":         50.0,
	})
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("create event: status %d: %s", status, body)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return err
	}
	lt.eventID = created.ID
	return nil
}

func (lt *LoadTester) simulateUser(ctx context.Context, userID int, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			saleID, ok := lt.createSale(userID)
			if ok && lt.transition(saleID, "PAGO") {
				lt.raceSettlement(saleID)
			}

			time.Sleep(time.Duration(rand.Intn(500)) * time.Millisecond)
		}
	}
}

func (lt *LoadTester) createSale(userID int) (string, bool) {
	start := time.Now()
	status, body, err := lt.send(http.MethodPost, "/sales", map[string]string{
		"userId":  fmt.Sprintf("user_%d", userID),
		"eventId": lt.eventID,
	})
	duration := time.Since(start)

	if err != nil || status != http.StatusCreated {
		if err == nil {
			err = fmt.Errorf("status %d", status)
		}
		lt.recordResponse(duration, false, "create_sale", err)
		return "", false
	}
	lt.recordResponse(duration, true, "create_sale", nil)
	atomic.AddInt64(&lt.result.SalesCreated, 1)

	var s saleResponse
	if err := json.Unmarshal(body, &s); err != nil {
		return "", false
	}
	return s.ID, true
}

func (lt *LoadTester) transition(saleID, status string) bool {
	start := time.Now()
	code, _, err := lt.send(http.MethodPut, "/sales/"+saleID, map[string]string{"status": status})
	duration := time.Since(start)

	// 409 is the expected answer for the losing side of a race.
	success := err == nil && (code == http.StatusOK || code == http.StatusConflict)
	if err == nil && !success {
		err = fmt.Errorf("status %d", code)
	}
	lt.recordResponse(duration, success, "transition_"+status, err)
	return err == nil && code == http.StatusOK
}

// raceSettlement fires UTILIZADO and CANCELADO at a paid sale at once.
// Exactly one of them may win.
func (lt *LoadTester) raceSettlement(saleID string) {
	var wins int32
	var wg sync.WaitGroup
	for _, status := range []string{"UTILIZADO", "CANCELADO"} {
		wg.Add(1)
		go func(status string) {
			defer wg.Done()
			if lt.transition(saleID, status) {
				atomic.AddInt32(&wins, 1)
			}
		}(status)
	}
	wg.Wait()

	switch wins {
	case 1:
		atomic.AddInt64(&lt.result.SalesSettled, 1)
	case 2:
		atomic.AddInt64(&lt.result.DoubleSettlements, 1)
	}
}

func (lt *LoadTester) Run() (*PerformanceMetrics, error) {
	if err := lt.setupEvent(); err != nil {
		return nil, err
	}

	fmt.Printf("Starting load test with %d concurrent users for %d seconds (event %s)\n",
		lt.config.ConcurrentUsers, lt.config.TestDurationSeconds, lt.eventID)

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(lt.config.TestDurationSeconds)*time.Second)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, stopping test...")
		cancel()
	}()

	startTime := time.Now()
	var wg sync.WaitGroup

	userInterval := time.Duration(lt.config.RampUpSeconds) * time.Second / time.Duration(lt.config.ConcurrentUsers)

	for i := 0; i < lt.config.ConcurrentUsers; i++ {
		wg.Add(1)
		go lt.simulateUser(ctx, i, &wg)

		if i < lt.config.ConcurrentUsers-1 {
			time.Sleep(userInterval)
		}
	}

	go lt.monitorProgress(ctx, startTime)

	wg.Wait()

	return lt.calculateMetrics(startTime, time.Now()), nil
}

func (lt *LoadTester) monitorProgress(ctx context.Context, startTime time.Time) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed := time.Since(startTime)
			totalReqs := atomic.LoadInt64(&lt.result.TotalRequests)
			created := atomic.LoadInt64(&lt.result.SalesCreated)

			fmt.Printf("[%s] Requests: %d, RPS: %.1f, Sales created: %d\n",
				elapsed.Round(time.Second), totalReqs, float64(totalReqs)/elapsed.Seconds(), created)
		}
	}
}

func (lt *LoadTester) calculateMetrics(startTime, endTime time.Time) *PerformanceMetrics {
	lt.result.mutex.Lock()
	defer lt.result.mutex.Unlock()

	totalDuration := endTime.Sub(startTime)
	totalRequests := atomic.LoadInt64(&lt.result.TotalRequests)

	metrics := &PerformanceMetrics{
		StartTime:         startTime,
		EndTime:           endTime,
		TotalDuration:     totalDuration,
		SalesCreated:      atomic.LoadInt64(&lt.result.SalesCreated),
		SalesSettled:      atomic.LoadInt64(&lt.result.SalesSettled),
		DoubleSettlements: atomic.LoadInt64(&lt.result.DoubleSettlements),
	}

	if totalDuration.Seconds() > 0 {
		metrics.ThroughputRPS = float64(totalRequests) / totalDuration.Seconds()
	}
	if totalRequests > 0 {
		metrics.ErrorRate = float64(atomic.LoadInt64(&lt.result.FailedRequests)) / float64(totalRequests) * 100
	}

	metrics.P50ResponseTime = calculatePercentile(lt.result.ResponseTimes, 50)
	metrics.P95ResponseTime = calculatePercentile(lt.result.ResponseTimes, 95)
	metrics.P99ResponseTime = calculatePercentile(lt.result.ResponseTimes, 99)

	return metrics
}

func calculatePercentile(durations []time.Duration, percentile int) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	index := int(float64(len(sorted)) * float64(percentile) / 100.0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func (pm *PerformanceMetrics) PrintReport() {
	fmt.Printf("LOAD TEST RESULTS\n")
	fmt.Printf("Test Duration: %v\n", pm.TotalDuration.Round(time.Second))
	fmt.Printf("- Total RPS: %.2f requests/second\n", pm.ThroughputRPS)
	fmt.Printf("- Error Rate: %.2f%%\n", pm.ErrorRate)
	fmt.Printf("- P50 Response Time: %v\n", pm.P50ResponseTime.Round(time.Millisecond))
	fmt.Printf("- P95 Response Time: %v\n", pm.P95ResponseTime.Round(time.Millisecond))
	fmt.Printf("- P99 Response Time: %v\n", pm.P99ResponseTime.Round(time.Millisecond))
	fmt.Printf("- Sales created: %d\n", pm.SalesCreated)
	fmt.Printf("- Sales settled: %d\n", pm.SalesSettled)
	fmt.Printf("- Double settlements: %d\n", pm.DoubleSettlements)
}

func (pm *PerformanceMetrics) SaveToFile(filename string) error {
	data, err := json.MarshalIndent(pm, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

func main() {
	config := &LoadTestConfig{}
	flag.StringVar(&config.BaseURL, "url", "http://localhost:8080", "Service base URL")
	flag.IntVar(&config.ConcurrentUsers, "users", 50, "Concurrent simulated users")
	flag.IntVar(&config.TestDurationSeconds, "duration", 60, "Test duration in seconds")
	flag.IntVar(&config.RampUpSeconds, "ramp-up", 5, "Ramp-up period in seconds")
	flag.StringVar(&config.OutputFile, "out", "", "Optional JSON report path")
	flag.Parse()

	if config.ConcurrentUsers <= 0 {
		fmt.Fprintln(os.Stderr, "users must be positive")
		os.Exit(2)
	}

	metrics, err := NewLoadTester(config).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load test failed: %v\n", err)
		os.Exit(1)
	}

	metrics.PrintReport()

	if config.OutputFile != "" {
		if err := metrics.SaveToFile(config.OutputFile); err != nil {
			fmt.Fprintf(os.Stderr, "save report: %v\n", err)
			os.Exit(1)
		}
	}

	if metrics.DoubleSettlements > 0 {
		os.Exit(1)
	}
}
