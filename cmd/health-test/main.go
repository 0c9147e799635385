package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Services  struct {
		Store struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		} `json:"store"`
	} `json:"services"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type incidentsResponse struct {
	Showing int `json:"showing"`
	Total   int `json:"total"`
}

var client = &http.Client{Timeout: 10 * time.Second}

func fail(format string, args ...interface{}) {
	fmt.Printf("❌ "+format+"\n", args...)
	os.Exit(1)
}

func fetch(req *http.Request, out interface{}) int {
	resp, err := client.Do(req)
	if err != nil {
		fail("Error calling %s: %v", req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fail("Error reading response: %v", err)
	}
	fmt.Printf("📊 %s %s -> %s\n", req.Method, req.URL.Path, resp.Status)
	if err := json.Unmarshal(body, out); err != nil {
		fail("Error parsing JSON response %q: %v", string(body), err)
	}
	return resp.StatusCode
}

// Checks /health and, when credentials are given, logs in and lists
// incidents.
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	email := flag.String("email", os.Getenv("HEALTH_TEST_EMAIL"), "login email for the API smoke test")
	password := flag.String("password", os.Getenv("HEALTH_TEST_PASSWORD"), "login password for the API smoke test")
	flag.Parse()

	fmt.Printf("🔍 Testing health endpoint: %s/health\n", *baseURL)
	req, _ := http.NewRequest(http.MethodGet, *baseURL+"/health", nil)
	var health HealthResponse
	if code := fetch(req, &health); code != http.StatusOK {
		fail("Health check failed with status: %d (store: %s)", code, health.Services.Store.Error)
	}
	if health.Status != "ok" || health.Services.Store.Status != "ok" {
		fail("Health status is not 'ok': %s, store %s", health.Status, health.Services.Store.Status)
	}
	fmt.Printf("✅ Health check passed (version %s, %s)\n", health.Version, health.Timestamp)

	if *email == "" {
		return
	}

	payload, _ := json.Marshal(map[string]string{"email": *email, "password": *password})
	req, _ = http.NewRequest(http.MethodPost, *baseURL+"/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	var login loginResponse
	if code := fetch(req, &login); code != http.StatusOK || login.Token == "" {
		fail("Login failed: %s", login.Message)
	}

	req, _ = http.NewRequest(http.MethodGet, *baseURL+"/api/v1/incidents", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	var incidents incidentsResponse
	if code := fetch(req, &incidents); code != http.StatusOK {
		fail("Listing incidents failed with status: %d", code)
	}
	fmt.Printf("✅ API smoke test passed: %d of %d incidents visible\n", incidents.Showing, incidents.Total)
}
