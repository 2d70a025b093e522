package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/config"
)

// Engine manages the headless server process backing the shell. If a
// server is already running at the configured address it is reused;
// otherwise the segitelep binary next to the shell is launched.
type Engine struct {
	addr      string
	serverCmd *exec.Cmd
	spawned   bool
}

// NewEngine reads the server address from config, falling back to the
// default when no config file exists yet.
func NewEngine() *Engine {
	addr := config.DefaultConfig().Server.Address
	if cfg, err := config.Load("configs/segitelep.yaml"); err == nil {
		addr = cfg.Server.Address
	}
	return &Engine{addr: addr}
}

// Address returns the host:port the engine serves on, normalized for
// dialing.
func (e *Engine) Address() string {
	// Use 127.0.0.1 to avoid resolution issues
	if strings.HasPrefix(e.addr, ":") {
		return "127.0.0.1" + e.addr
	}
	return strings.Replace(e.addr, "localhost", "127.0.0.1", 1)
}

// Start ensures a server is available, spawning one when needed.
func (e *Engine) Start() error {
	if e.isRunning() {
		fmt.Println("> Engine already running, reusing it.")
		return nil
	}

	bin := "./segitelep"
	if _, err := os.Stat(bin); err != nil {
		bin = "segitelep"
	}
	cmd := exec.Command(bin)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	e.serverCmd = cmd
	e.spawned = true

	go func() {
		// Reap the child so a crashed engine does not linger as a
		// zombie.
		_ = cmd.Wait()
	}()
	return nil
}

// Stop asks a spawned server to shut down gracefully. A reused external
// server is left alone.
func (e *Engine) Stop() {
	if !e.spawned || e.serverCmd == nil || e.serverCmd.Process == nil {
		return
	}
	fmt.Println("> SegiTelep shell closing: sending shutdown signal to engine...")

	url := fmt.Sprintf("http://%s/api/shutdown", e.Address())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 2 * time.Second}
	req, _ := http.NewRequestWithContext(ctx, "POST", url, http.NoBody)
	resp, err := client.Do(req)
	if err == nil {
		fmt.Println("> Shutdown command sent successfully.")
		resp.Body.Close()
		time.Sleep(500 * time.Millisecond)
		return
	}
	fmt.Printf("> API shutdown failed: %v\n", err)
	_ = e.serverCmd.Process.Kill()
}

func (e *Engine) isRunning() bool {
	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get("http://" + e.Address() + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
