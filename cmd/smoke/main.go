// Command smoke checks a running persona server end to end over HTTP.
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

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	user := flag.String("user", "", "user id of an analyzed and indexed persona")
	question := flag.String("q", "What communities is this user most active in?", "question to ask")
	flag.Parse()
	if *user == "" {
		fmt.Println("usage: smoke -user name [-url http://localhost:8080] [-q question]")
		os.Exit(2)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	fmt.Println("Starting smoke test...")

	fmt.Println("1. Health check...")
	if !check(client, http.MethodGet, *baseURL+"/healthz", nil) {
		fmt.Println("FAILED: healthz")
		os.Exit(1)
	}
	fmt.Println("PASSED: healthz")

	fmt.Println("2. Fetching persona...")
	if !check(client, http.MethodGet, *baseURL+"/personas/"+*user, nil) {
		fmt.Println("FAILED: get persona")
		os.Exit(1)
	}
	fmt.Println("PASSED: get persona")

	fmt.Println("3. Asking...")
	payload := map[string]interface{}{"question": *question}
	if !check(client, http.MethodPost, *baseURL+"/personas/"+*user+"/ask", payload) {
		fmt.Println("FAILED: ask")
		os.Exit(1)
	}
	fmt.Println("PASSED: ask")

	fmt.Println("Smoke test completed successfully!")
}

func check(client *http.Client, method, url string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Error marshaling payload: %v\n", err)
			return false
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	fmt.Printf("Response: %s\n", truncate(string(respBody), 400))
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
