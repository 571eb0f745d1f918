package main

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	serverBinaryName   = "vscraper-server"
	serverStartTimeout = 10 * time.Second
	serverPollInterval = 200 * time.Millisecond
)

// serverHealthy reports whether the target server answers its health check
func serverHealthy() bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// locateServerBinary searches next to the CLI executable, then PATH,
// then the usual install locations.
func locateServerBinary() (string, error) {
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), serverBinaryName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(serverBinaryName); err == nil {
		return path, nil
	}

	home := os.Getenv("HOME")
	for _, candidate := range []string{
		filepath.Join("/usr/local/bin", serverBinaryName),
		filepath.Join("/usr/bin", serverBinaryName),
		filepath.Join(home, "go/bin", serverBinaryName),
		filepath.Join(home, ".local/bin", serverBinaryName),
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s not found next to the CLI, on PATH, or in the usual install locations", serverBinaryName)
}

// launchServer starts the server detached from the CLI's terminal so it
// keeps running after this command exits.
func launchServer() error {
	path, err := locateServerBinary()
	if err != nil {
		return err
	}

	cmd := exec.Command(path)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	setSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	// Reap the bootstrap process when it daemonizes or dies.
	go cmd.Wait()

	return nil
}

// ensureServerRunning starts the server when the health check fails and
// waits for it to come up.
func ensureServerRunning() error {
	if serverHealthy() {
		return nil
	}

	fmt.Println("Server not running, starting...")
	if err := launchServer(); err != nil {
		return err
	}

	deadline := time.Now().Add(serverStartTimeout)
	for time.Now().Before(deadline) {
		if serverHealthy() {
			fmt.Println("Server started")
			return nil
		}
		time.Sleep(serverPollInterval)
	}

	return fmt.Errorf("server did not come up within %v", serverStartTimeout)
}
