package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"fnrelay/gateway/internal/signkey"
)

func unsetEnvForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s failed: %v", key, err)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestSignAndVerifyCommands(t *testing.T) {
	t.Setenv("FNRELAY_SECRET", "cli-secret")
	unsetEnvForTest(t, "FNRELAY_CONFIG")

	sig, err := runCLI(t, "sign", "acct-1")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if sig != signkey.Sign("acct-1", "cli-secret") {
		t.Fatalf("signature=%q", sig)
	}
	if out, err := runCLI(t, "verify", "acct-1", sig); err != nil || out != "ok" {
		t.Fatalf("verify out=%q err=%v", out, err)
	}
	if _, err := runCLI(t, "verify", "acct-2", sig); !errors.Is(err, errSignatureMismatch) {
		t.Fatalf("verify err=%v want=%v", err, errSignatureMismatch)
	}
}

func TestSignRequiresSecret(t *testing.T) {
	unsetEnvForTest(t, "FNRELAY_SECRET")
	unsetEnvForTest(t, "FNRELAY_CONFIG")
	if _, err := runCLI(t, "sign", "acct-1"); !errors.Is(err, signkey.ErrEmptySecret) {
		t.Fatalf("err=%v want=%v", err, signkey.ErrEmptySecret)
	}
}

func TestRoutesAndFunctionsCommands(t *testing.T) {
	unsetEnvForTest(t, "FNRELAY_SECRET")
	unsetEnvForTest(t, "FNRELAY_CONFIG")
	t.Setenv("FNRELAY_DATA_DIR", t.TempDir())

	routes, err := runCLI(t, "routes")
	if err != nil {
		t.Fatalf("routes failed: %v", err)
	}
	if !strings.Contains(routes, "/api/functions/{name}") {
		t.Fatalf("routes output missing invoke route:\n%s", routes)
	}

	functions, err := runCLI(t, "functions")
	if err != nil {
		t.Fatalf("functions failed: %v", err)
	}
	if !strings.Contains(functions, "sum_numbers") || strings.Contains(functions, "add_numbers") {
		t.Fatalf("unexpected functions output:\n%s", functions)
	}
}

func TestConfigFlagReadsYAML(t *testing.T) {
	unsetEnvForTest(t, "FNRELAY_SECRET")
	path := t.TempDir() + "/gateway.yaml"
	if err := os.WriteFile(path, []byte("secret: from-file\n"), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	sig, err := runCLI(t, "--config", path, "sign", "acct-1")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if sig != signkey.Sign("acct-1", "from-file") {
		t.Fatalf("signature=%q", sig)
	}
}

func TestLoadHTTPRuntimeConfigDefaults(t *testing.T) {
	unsetEnvForTest(t, envHTTPReadHeaderTimeoutSeconds)
	unsetEnvForTest(t, envHTTPReadTimeoutSeconds)
	unsetEnvForTest(t, envHTTPWriteTimeoutSeconds)
	unsetEnvForTest(t, envHTTPIdleTimeoutSeconds)
	unsetEnvForTest(t, envHTTPShutdownTimeoutSeconds)

	cfg := loadHTTPRuntimeConfig(context.Background())
	if cfg.readHeaderTimeout != defaultHTTPReadHeaderTimeout {
		t.Fatalf("readHeaderTimeout=%s want=%s", cfg.readHeaderTimeout, defaultHTTPReadHeaderTimeout)
	}
	if cfg.readTimeout != defaultHTTPReadTimeout {
		t.Fatalf("readTimeout=%s want=%s", cfg.readTimeout, defaultHTTPReadTimeout)
	}
	if cfg.writeTimeout != defaultHTTPWriteTimeout {
		t.Fatalf("writeTimeout=%s want=%s", cfg.writeTimeout, defaultHTTPWriteTimeout)
	}
	if cfg.idleTimeout != defaultHTTPIdleTimeout {
		t.Fatalf("idleTimeout=%s want=%s", cfg.idleTimeout, defaultHTTPIdleTimeout)
	}
	if cfg.shutdownTimeout != defaultHTTPShutdownTimeout {
		t.Fatalf("shutdownTimeout=%s want=%s", cfg.shutdownTimeout, defaultHTTPShutdownTimeout)
	}
}

func TestLoadHTTPRuntimeConfigFromEnv(t *testing.T) {
	t.Setenv(envHTTPReadHeaderTimeoutSeconds, "5")
	t.Setenv(envHTTPReadTimeoutSeconds, "45")
	t.Setenv(envHTTPWriteTimeoutSeconds, "300")
	t.Setenv(envHTTPIdleTimeoutSeconds, "90")
	t.Setenv(envHTTPShutdownTimeoutSeconds, "15")

	cfg := loadHTTPRuntimeConfig(context.Background())
	if cfg.readHeaderTimeout != 5*time.Second {
		t.Fatalf("readHeaderTimeout=%s want=%s", cfg.readHeaderTimeout, 5*time.Second)
	}
	if cfg.readTimeout != 45*time.Second {
		t.Fatalf("readTimeout=%s want=%s", cfg.readTimeout, 45*time.Second)
	}
	if cfg.writeTimeout != 300*time.Second {
		t.Fatalf("writeTimeout=%s want=%s", cfg.writeTimeout, 300*time.Second)
	}
	if cfg.idleTimeout != 90*time.Second {
		t.Fatalf("idleTimeout=%s want=%s", cfg.idleTimeout, 90*time.Second)
	}
	if cfg.shutdownTimeout != 15*time.Second {
		t.Fatalf("shutdownTimeout=%s want=%s", cfg.shutdownTimeout, 15*time.Second)
	}
}

func TestLoadHTTPRuntimeConfigFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv(envHTTPReadHeaderTimeoutSeconds, "abc")
	t.Setenv(envHTTPReadTimeoutSeconds, "-3")
	t.Setenv(envHTTPWriteTimeoutSeconds, "0")
	t.Setenv(envHTTPIdleTimeoutSeconds, "0")
	unsetEnvForTest(t, envHTTPShutdownTimeoutSeconds)

	cfg := loadHTTPRuntimeConfig(context.Background())
	if cfg.readHeaderTimeout != defaultHTTPReadHeaderTimeout {
		t.Fatalf("readHeaderTimeout=%s want=%s", cfg.readHeaderTimeout, defaultHTTPReadHeaderTimeout)
	}
	if cfg.readTimeout != defaultHTTPReadTimeout {
		t.Fatalf("readTimeout=%s want=%s", cfg.readTimeout, defaultHTTPReadTimeout)
	}
	if cfg.writeTimeout != 0 {
		t.Fatalf("writeTimeout=%s want=0", cfg.writeTimeout)
	}
	if cfg.idleTimeout != defaultHTTPIdleTimeout {
		t.Fatalf("idleTimeout=%s want=%s", cfg.idleTimeout, defaultHTTPIdleTimeout)
	}
}

func TestShutdownHTTPServerDrainsInflightRequest(t *testing.T) {
	started := make(chan struct{}, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case started <- struct{}{}:
		default:
		}
		time.Sleep(120 * time.Millisecond)
		_, _ = w.Write([]byte("ok"))
	})

	httpServer, baseURL, serveDone := startTestHTTPServer(t, handler)

	clientDone := make(chan error, 1)
	go func() {
		resp, err := http.Get(baseURL)
		if err != nil {
			clientDone <- err
			return
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			clientDone <- err
			return
		}
		if resp.StatusCode != http.StatusOK {
			clientDone <- fmt.Errorf("status=%d", resp.StatusCode)
			return
		}
		if strings.TrimSpace(string(body)) != "ok" {
			clientDone <- fmt.Errorf("body=%q", string(body))
			return
		}
		clientDone <- nil
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("request did not start in time")
	}

	timedOut, err := shutdownHTTPServer(httpServer, 2*time.Second)
	if err != nil {
		t.Fatalf("shutdownHTTPServer returned error: %v", err)
	}
	if timedOut {
		t.Fatalf("expected graceful shutdown without timeout")
	}

	if clientErr := <-clientDone; clientErr != nil {
		t.Fatalf("in-flight request failed: %v", clientErr)
	}

	serveErr := <-serveDone
	if !errors.Is(serveErr, http.ErrServerClosed) {
		t.Fatalf("Serve returned err=%v want=%v", serveErr, http.ErrServerClosed)
	}
}

func TestShutdownHTTPServerTimeoutFallsBackToForceClose(t *testing.T) {
	started := make(chan struct{}, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case started <- struct{}{}:
		default:
		}
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte("slow"))
	})

	httpServer, baseURL, serveDone := startTestHTTPServer(t, handler)
	go func() {
		_, _ = http.Get(baseURL)
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("request did not start in time")
	}

	timedOut, err := shutdownHTTPServer(httpServer, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("shutdownHTTPServer returned error: %v", err)
	}
	if !timedOut {
		t.Fatalf("expected timeout fallback to force close")
	}

	serveErr := <-serveDone
	if !errors.Is(serveErr, http.ErrServerClosed) {
		t.Fatalf("Serve returned err=%v want=%v", serveErr, http.ErrServerClosed)
	}
}

func startTestHTTPServer(t *testing.T, handler http.Handler) (*http.Server, string, <-chan error) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	httpServer := &http.Server{Handler: handler}
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- httpServer.Serve(listener)
	}()

	return httpServer, "http://" + listener.Addr().String(), serveDone
}
