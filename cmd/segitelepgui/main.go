// segitelepgui is the desktop shell: it runs the engine's HTTP server
// in-process and hosts the UI in a webview with OS fullscreen support
// for the playback window.
package main

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	webview "github.com/webview/webview_go"
)

func main() {
	// Webview requires main thread
	runtime.LockOSThread()

	// Ensure we run from the executable directory to find data/ and .env
	exe, _ := os.Executable()
	if err := os.Chdir(filepath.Dir(exe)); err != nil {
		panic(err)
	}

	engine := NewEngine()
	if err := engine.Start(); err != nil {
		panic(err)
	}
	defer engine.Stop()

	w := webview.New(true)
	defer w.Destroy()

	// Block the context menu; the editor has its own.
	w.Init(`
		window.addEventListener('contextmenu', function(e) {
			e.preventDefault();
		}, true); // Use capture phase
	`)

	w.SetTitle("SegiTelep Pro")
	w.SetSize(1280, 800, webview.HintNone)

	fullscreen := false
	_ = w.Bind("toggleFullscreen", func() {
		// Webview has no fullscreen API; emulate by maximizing the
		// window hint. The UI layer falls back to its own fullscreen
		// when this is unavailable.
		fullscreen = !fullscreen
		if fullscreen {
			w.SetSize(0, 0, webview.HintMax)
		} else {
			w.SetSize(1280, 800, webview.HintNone)
		}
	})

	_ = w.Bind("engineAddress", func() string {
		return "http://" + engine.Address()
	})

	// Wait for the engine to answer health checks before navigating.
	waitForEngine(engine.Address())
	w.Navigate("http://" + engine.Address())

	w.Run()
}

func waitForEngine(addr string) {
	client := &http.Client{Timeout: time.Second}
	for i := 0; i < 50; i++ {
		resp, err := client.Get("http://" + addr + "/health")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}
