package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	baseURL         = "http://localhost:8080"
	wsURL           = "ws://localhost:8080"
	concurrentUsers = 1000
	testDuration    = 30 * time.Second
	apiRampUpTime   = 5 * time.Second
	fillRampUpTime  = 10 * time.Second
)

type Stats struct {
	apiRequests     int64
	apiSuccess      int64
	apiFailed       int64
	apiTotalLatency int64
	apiMaxLatency   int64
	wsConnections   int64
	wsSuccess       int64
	wsFailed        int64
	wsMessages      int64
	wsTotalLatency  int64
	wsMaxLatency    int64
}

var stats Stats

func main() {
	fmt.Printf("Starting load test with %d concurrent users for %v\n", concurrentUsers, testDuration)
	fmt.Println("===========================================")

	var wg sync.WaitGroup
	startTime := time.Now()
	stopChan := make(chan struct{})

	// Phase 1: REST API load test (ramp up over 5 seconds)
	fmt.Println("\nPhase 1: API Load Testing...")
	for i := 0; i < concurrentUsers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			time.Sleep(time.Duration(id) * apiRampUpTime / concurrentUsers)
			runAPILoadTest(id, stopChan)
		}(i)
	}

	// Phase 2: async fill-job submission + progress websocket (ramp up over 10 seconds)
	time.Sleep(5 * time.Second)
	fmt.Println("\nPhase 2: Fill Job WebSocket Load Testing...")
	for i := 0; i < concurrentUsers/10; i++ { // 100 fill-progress subscribers
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			time.Sleep(time.Duration(id) * fillRampUpTime / (concurrentUsers / 10))
			runFillProgressTest(id, stopChan)
		}(i)
	}

	time.Sleep(testDuration)
	close(stopChan)

	wg.Wait()
	elapsed := time.Since(startTime)

	fmt.Println("\n===========================================")
	fmt.Println("Load Test Results")
	fmt.Println("===========================================")
	fmt.Printf("Total Duration: %v\n\n", elapsed)

	apiReqs := atomic.LoadInt64(&stats.apiRequests)
	apiSucc := atomic.LoadInt64(&stats.apiSuccess)
	apiFail := atomic.LoadInt64(&stats.apiFailed)
	apiLatency := atomic.LoadInt64(&stats.apiTotalLatency)
	apiMaxLat := atomic.LoadInt64(&stats.apiMaxLatency)

	fmt.Println("API Endpoints:")
	fmt.Printf("  Total Requests: %d\n", apiReqs)
	fmt.Printf("  Successful: %d (%.2f%%)\n", apiSucc, float64(apiSucc)/float64(apiReqs)*100)
	fmt.Printf("  Failed: %d (%.2f%%)\n", apiFail, float64(apiFail)/float64(apiReqs)*100)
	if apiSucc > 0 {
		avgLatency := time.Duration(apiLatency/apiSucc) * time.Millisecond
		fmt.Printf("  Avg Latency: %v\n", avgLatency)
		fmt.Printf("  Max Latency: %v\n", time.Duration(apiMaxLat)*time.Millisecond)
		fmt.Printf("  Requests/sec: %.2f\n", float64(apiReqs)/elapsed.Seconds())

		if avgLatency > 200*time.Millisecond {
			fmt.Printf("  WARNING: avg latency (%v) exceeds 200ms target\n", avgLatency)
		} else {
			fmt.Printf("  OK: avg latency (%v) meets <200ms target\n", avgLatency)
		}
	}

	wsConns := atomic.LoadInt64(&stats.wsConnections)
	wsSucc := atomic.LoadInt64(&stats.wsSuccess)
	wsFail := atomic.LoadInt64(&stats.wsFailed)
	wsMsgs := atomic.LoadInt64(&stats.wsMessages)
	wsLatency := atomic.LoadInt64(&stats.wsTotalLatency)
	wsMaxLat := atomic.LoadInt64(&stats.wsMaxLatency)

	fmt.Println("\nFill Progress WebSocket:")
	fmt.Printf("  Total Connections: %d\n", wsConns)
	fmt.Printf("  Successful: %d (%.2f%%)\n", wsSucc, float64(wsSucc)/float64(wsConns)*100)
	fmt.Printf("  Failed: %d (%.2f%%)\n", wsFail, float64(wsFail)/float64(wsConns)*100)
	fmt.Printf("  Total Events Received: %d\n", wsMsgs)
	if wsMsgs > 0 {
		avgWSLatency := time.Duration(wsLatency/wsMsgs) * time.Millisecond
		fmt.Printf("  Avg Event Latency: %v\n", avgWSLatency)
		fmt.Printf("  Max Event Latency: %v\n", time.Duration(wsMaxLat)*time.Millisecond)
		fmt.Printf("  Events/sec: %.2f\n", float64(wsMsgs)/elapsed.Seconds())

		if avgWSLatency > 100*time.Millisecond {
			fmt.Printf("  WARNING: avg event latency (%v) exceeds 100ms target\n", avgWSLatency)
		} else {
			fmt.Printf("  OK: avg event latency (%v) meets <100ms target\n", avgWSLatency)
		}
	}

	fmt.Println("\n===========================================")
	fmt.Println("Load test completed!")
}

func runAPILoadTest(userID int, stopChan <-chan struct{}) {
	client := &http.Client{Timeout: 5 * time.Second}

	token, err := registerLoadTestUser(client, userID)
	if err != nil {
		log.Printf("User %d: failed to register: %v", userID, err)
		return
	}

	endpoints := []string{
		"/api/puzzles/archive",
		"/api/users/me",
		"/api/users/me/stats",
		"/health",
		"/metrics",
	}

	for {
		select {
		case <-stopChan:
			return
		default:
			for _, endpoint := range endpoints {
				start := time.Now()

				req, _ := http.NewRequest("GET", baseURL+endpoint, nil)
				if endpoint != "/health" && endpoint != "/metrics" {
					req.Header.Set("Authorization", "Bearer "+token)
				}

				atomic.AddInt64(&stats.apiRequests, 1)

				resp, err := client.Do(req)
				latency := time.Since(start).Milliseconds()

				if err != nil {
					atomic.AddInt64(&stats.apiFailed, 1)
					continue
				}

				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()

				if resp.StatusCode == 200 {
					atomic.AddInt64(&stats.apiSuccess, 1)
					atomic.AddInt64(&stats.apiTotalLatency, latency)

					for {
						oldMax := atomic.LoadInt64(&stats.apiMaxLatency)
						if latency <= oldMax || atomic.CompareAndSwapInt64(&stats.apiMaxLatency, oldMax, latency) {
							break
						}
					}
				} else {
					atomic.AddInt64(&stats.apiFailed, 1)
				}

				time.Sleep(100 * time.Millisecond)
			}
		}
	}
}

func runFillProgressTest(userID int, stopChan <-chan struct{}) {
	httpClient := &http.Client{Timeout: 5 * time.Second}

	token, err := registerLoadTestUser(httpClient, userID+10000)
	if err != nil {
		log.Printf("Fill user %d: failed to register: %v", userID, err)
		return
	}

	jobID, err := submitAsyncFillJob(httpClient, token)
	if err != nil {
		log.Printf("Fill user %d: failed to submit fill job: %v", userID, err)
		return
	}

	atomic.AddInt64(&stats.wsConnections, 1)

	wsConn, _, err := websocket.DefaultDialer.Dial(
		fmt.Sprintf("%s/api/fill/%s/ws?token=%s", wsURL, jobID, token),
		nil,
	)
	if err != nil {
		atomic.AddInt64(&stats.wsFailed, 1)
		log.Printf("Fill user %d: failed to connect: %v", userID, err)
		return
	}
	defer wsConn.Close()

	atomic.AddInt64(&stats.wsSuccess, 1)

	for {
		select {
		case <-stopChan:
			return
		default:
			start := time.Now()
			_, _, err := wsConn.ReadMessage()
			if err != nil {
				return
			}

			latency := time.Since(start).Milliseconds()
			atomic.AddInt64(&stats.wsMessages, 1)
			atomic.AddInt64(&stats.wsTotalLatency, latency)

			for {
				oldMax := atomic.LoadInt64(&stats.wsMaxLatency)
				if latency <= oldMax || atomic.CompareAndSwapInt64(&stats.wsMaxLatency, oldMax, latency) {
					break
				}
			}
		}
	}
}

func registerLoadTestUser(client *http.Client, id int) (string, error) {
	payload := map[string]string{
		"email":       fmt.Sprintf("loadtest%d@example.com", id),
		"password":    "loadtest-password",
		"displayName": fmt.Sprintf("LoadTestUser%d", id),
	}

	body, _ := json.Marshal(payload)
	resp, err := client.Post(baseURL+"/api/auth/register", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.Token, nil
}

func submitAsyncFillJob(client *http.Client, token string) (string, error) {
	payload := map[string]interface{}{
		"layout": "_________________________________________________",
		"rows":   7,
		"cols":   7,
		"bankId": "default",
		"async":  true,
	}

	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", baseURL+"/api/fill", bytes.NewBuffer(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.JobID, nil
}
