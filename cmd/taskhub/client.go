package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"time"

	"taskhub/internal/api"
	"taskhub/internal/config"
	"taskhub/internal/credential"
	"taskhub/internal/storage"
)

const (
	serverStartTimeout = 3 * time.Second
	serverPollInterval = 100 * time.Millisecond
)

var tokenStore = credential.NewStore()

// withClient runs fn with a client for cfg.APIURL carrying the stored
// session token, starting a local server first when none answers.
func withClient(cfg *config.Config, fn func(*api.Client) error) error {
	cleanup, err := ensureServer(cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	client := api.NewClient(cfg.APIURL)
	token, err := tokenStore.Token(cfg.APIURL)
	switch {
	case err == nil:
		client = client.WithToken(token)
	case errors.Is(err, credential.ErrNotFound):
	default:
		slog.Default().Debug("session token unavailable", "error", err)
	}
	return fn(client)
}

func ensureServer(cfg *config.Config) (func(), error) {
	client := api.NewClient(cfg.APIURL)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if _, err := client.Health(ctx); err == nil {
		return nil, nil
	}
	if cfg.Storage.Backend == storage.BackendMemory {
		return nil, errors.New("no server is running and the memory backend cannot be shared; start one with: taskhub srv")
	}

	cmd, err := startServerProcess(cfg)
	if err != nil {
		return nil, err
	}

	if err := waitForServer(client, serverStartTimeout); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	cleanup := func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}

	return cleanup, nil
}

func startServerProcess(cfg *config.Config) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(exe, "srv")
	cmd.Env = append(os.Environ(),
		"TASKHUB_API_URL="+cfg.APIURL,
		"TASKHUB_STORAGE_BACKEND="+cfg.Storage.Backend,
		"TASKHUB_STORAGE_PATH="+cfg.Storage.Path,
		"TASKHUB_STORAGE_DSN="+cfg.Storage.DSN,
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func waitForServer(client *api.Client, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		_, err := client.Health(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if !isConnRefused(err) {
			// Port in use by something that is not a taskhub server.
			return err
		}
		time.Sleep(serverPollInterval)
	}
	return errors.New("server did not start in time")
}

func isConnRefused(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
