package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"
)

// LockerPayload creates the locker under test
type LockerPayload struct {
	Name     string `json:"name"`
	Size     string `json:"size"`
	Capacity int    `json:"capacity"`
}

// UserPayload creates the booking user
type UserPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// BookingPayload books one unit
type BookingPayload struct {
	LockerID string `json:"lockerId"`
	UserID   string `json:"userId"`
}

// ErrorPayload is the API error envelope
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ConsistencyPayload is the subset of the consistency report checked after the run
type ConsistencyPayload struct {
	Available       int  `json:"available"`
	CounterHolds    int  `json:"counterHolds"`
	UnreleasedHolds int  `json:"unreleasedHolds"`
	Consistent      bool `json:"consistent"`
}

// TestResult contains metrics for a single booking
type TestResult struct {
	StatusCode   int
	Code         int
	ResponseTime time.Duration
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	Booked        int
	Unavailable   int
	Conflicted    int
	Failed        int
	TotalTime     time.Duration
	ResponseTimes []time.Duration
	ErrorCounts   map[string]int
	Lock          sync.Mutex
}

func main() {
	concurrency := flag.Int("c", 20, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 200, "Total number of booking attempts")
	capacity := flag.Int("capacity", 10, "Capacity of the locker under test")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}
	api := *baseURL + "/api/v1"
	suffix := time.Now().UnixNano()

	var locker struct {
		ID string `json:"id"`
	}
	if err := post(client, api+"/lockers", LockerPayload{
		Name:     fmt.Sprintf("load-%d", suffix),
		Size:     "medium",
		Capacity: *capacity,
	}, &locker); err != nil {
		fmt.Printf("Failed to create locker: %v\n", err)
		os.Exit(1)
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := post(client, api+"/users", UserPayload{
		Name:     "load tester",
		Email:    fmt.Sprintf("load-%d@locker.local", suffix),
		Phone:    fmt.Sprintf("+1%010d", suffix%10000000000),
		Password: "load-test",
	}, &user); err != nil {
		fmt.Printf("Failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Booking locker %s (capacity %d)\n", locker.ID, *capacity)
	fmt.Printf("Concurrency: %d goroutines\n", *concurrency)
	fmt.Printf("Total attempts: %d\n", *totalRequests)

	stats := &TestStats{
		ErrorCounts:   make(map[string]int),
		ResponseTimes: make([]time.Duration, 0, *totalRequests),
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)
	for i := 0; i < *totalRequests; i++ {
		jobs <- i
	}
	close(jobs)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				results <- book(client, api, BookingPayload{LockerID: locker.ID, UserID: user.ID})
			}
		}()
	}
	wg.Wait()
	close(results)
	stats.TotalTime = time.Since(start)

	for result := range results {
		stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
		switch {
		case result.Error != nil:
			stats.Failed++
			stats.ErrorCounts[result.Error.Error()]++
		case result.StatusCode == http.StatusCreated:
			stats.Booked++
		case result.Code == 4091:
			stats.Unavailable++
		case result.Code == 4093:
			stats.Conflicted++
		default:
			stats.Failed++
			stats.ErrorCounts[fmt.Sprintf("HTTP %d code %d", result.StatusCode, result.Code)]++
		}
	}

	var report ConsistencyPayload
	reportErr := get(client, fmt.Sprintf("%s/lockers/%s/consistency", api, locker.ID), &report)

	printResults(stats, *capacity, report, reportErr)
}

func book(client *http.Client, api string, payload BookingPayload) TestResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return TestResult{Error: err}
	}

	startTime := time.Now()
	resp, err := client.Post(api+"/transactions", "application/json", bytes.NewReader(body))
	result := TestResult{ResponseTime: time.Since(startTime)}
	if err != nil {
		result.Error = err
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode >= 300 {
		var apiErr ErrorPayload
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
			result.Code = apiErr.Code
		}
	}
	return result
}

func post(client *http.Client, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("POST %s: HTTP status code %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func get(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP status code %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func printResults(stats *TestStats, capacity int, report ConsistencyPayload, reportErr error) {
	total := stats.Booked + stats.Unavailable + stats.Conflicted + stats.Failed

	var p50, p95, p99 time.Duration
	if len(stats.ResponseTimes) > 0 {
		sorted := slices.Clone(stats.ResponseTimes)
		slices.Sort(sorted)
		p50 = sorted[len(sorted)*50/100]
		p95 = sorted[len(sorted)*95/100]
		p99 = sorted[len(sorted)*99/100]
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Attempts:            %d\n", total)
	fmt.Printf("Booked:              %d\n", stats.Booked)
	fmt.Printf("Unavailable (4091):  %d\n", stats.Unavailable)
	fmt.Printf("Conflict (4093):     %d\n", stats.Conflicted)
	fmt.Printf("Failed:              %d\n", stats.Failed)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	if stats.TotalTime > 0 {
		fmt.Printf("Throughput:          %.2f req/s\n", float64(total)/stats.TotalTime.Seconds())
	}

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P95 Response:        %v\n", p95)
	fmt.Printf("P99 Response:        %v\n", p99)

	if len(stats.ErrorCounts) > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d\n", errMsg, count)
		}
	}

	fmt.Println("\n================= CONCLUSION =================")
	ok := true
	if stats.Booked > capacity {
		fmt.Printf("❌ OVERBOOKED: %d bookings for capacity %d\n", stats.Booked, capacity)
		ok = false
	}
	if reportErr != nil {
		fmt.Printf("⚠️ Could not fetch consistency report: %v\n", reportErr)
	} else {
		fmt.Printf("Counter holds %d, unreleased holds %d, available %d\n",
			report.CounterHolds, report.UnreleasedHolds, report.Available)
		if !report.Consistent || report.CounterHolds != stats.Booked {
			fmt.Println("❌ COUNTER DOES NOT MATCH recorded bookings")
			ok = false
		}
	}
	if ok {
		fmt.Println("✅ No overbooking and the counter matches the holds")
	}
	fmt.Println("================================================")
	if !ok {
		os.Exit(1)
	}
}
