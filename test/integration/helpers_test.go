// Package integration runs end-to-end tests against a running
// "scriptx serve". Tests are skipped when no server is reachable.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// testServer holds the base URL of a running scriptx instance for tests.
var testServer string

func init() {
	testServer = os.Getenv("SCRIPTX_URL")
	if testServer == "" {
		testServer = "http://localhost:8787"
	}
	// Ensure the URL has a scheme.
	if !strings.HasPrefix(testServer, "http://") && !strings.HasPrefix(testServer, "https://") {
		testServer = "http://" + testServer
	}
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// requireServer skips the test when the REST API is not reachable.
func requireServer(t *testing.T) {
	t.Helper()
	c := &http.Client{Timeout: time.Second}
	resp, err := c.Get(apiURL("programs"))
	if err != nil {
		t.Skipf("scriptx server not reachable at %s: %v", testServer, err)
	}
	resp.Body.Close()
}

// apiURL builds a full URL for the given API path.
func apiURL(path string) string {
	return strings.TrimRight(testServer, "/") + "/v1/" + path
}

// uniqueID returns a program ID that does not collide across runs.
func uniqueID(t *testing.T) string {
	id := strings.ToLower(t.Name())
	id = strings.NewReplacer("/", "-", "_", "-", " ", "-").Replace(id)
	return fmt.Sprintf("%s-%d", id, time.Now().UnixNano())
}

// doJSON sends body as JSON and decodes the JSON response.
func doJSON(t *testing.T, method, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("%s %s: invalid JSON %q: %v", method, url, raw, err)
	}
	return resp.StatusCode, out
}

// createProgram deploys a program and returns its resource name
// (e.g., "programs/my-program").
func createProgram(t *testing.T, programID, source string) string {
	t.Helper()

	code, body := doJSON(t, "POST", apiURL("programs")+"?programId="+programID, map[string]interface{}{
		"sourceContents": source,
	})
	if code != http.StatusOK {
		t.Fatalf("createProgram failed with status %d: %v", code, body)
	}
	name, _ := body["name"].(string)
	if name == "" {
		t.Fatalf("createProgram: no name in response: %v", body)
	}
	t.Cleanup(func() {
		req, _ := http.NewRequest("DELETE", apiURL(name), nil)
		if resp, err := httpClient.Do(req); err == nil {
			resp.Body.Close()
		}
	})
	return name
}

// executionResult represents the outcome of a program execution.
type executionResult struct {
	Name     string
	State    string // SUCCEEDED or FAILED
	Results  []interface{}
	Bindings map[string]interface{}
	Error    map[string]interface{}
	Raw      map[string]interface{}
}

// executeProgram runs a stored program with the given bindings.
func executeProgram(t *testing.T, programName string, bindings map[string]interface{}) executionResult {
	t.Helper()

	body := map[string]interface{}{}
	if bindings != nil {
		body["bindings"] = bindings
	}
	code, exec := doJSON(t, "POST", apiURL(programName+"/executions"), body)
	if code != http.StatusOK {
		t.Fatalf("executeProgram failed with status %d: %v", code, exec)
	}

	er := executionResult{Raw: exec}
	er.Name, _ = exec["name"].(string)
	er.State, _ = exec["state"].(string)
	er.Results, _ = exec["results"].([]interface{})
	er.Bindings, _ = exec["bindings"].(map[string]interface{})
	er.Error, _ = exec["error"].(map[string]interface{})
	return er
}

// deployAndRun is a convenience that creates a program from inline source,
// executes it, and returns the result.
func deployAndRun(t *testing.T, source string, bindings map[string]interface{}) executionResult {
	t.Helper()
	name := createProgram(t, uniqueID(t), source)
	return executeProgram(t, name, bindings)
}

// assertSucceeded checks that the execution succeeded.
func assertSucceeded(t *testing.T, er executionResult) {
	t.Helper()
	if er.State != "SUCCEEDED" {
		t.Fatalf("expected SUCCEEDED, got %s: %v", er.State, er.Raw)
	}
}

// assertFailedWith checks that the execution failed with the given kind.
func assertFailedWith(t *testing.T, er executionResult, kind string) {
	t.Helper()
	if er.State != "FAILED" {
		t.Fatalf("expected FAILED, got %s: %v", er.State, er.Raw)
	}
	if got, _ := er.Error["kind"].(string); got != kind {
		t.Errorf("expected error kind %s, got %s: %v", kind, got, er.Error)
	}
}
