package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/localplanner/logging"
)

func writeConfig(t *testing.T, path, contents string) {
	t.Helper()
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
}

func nextConfig(t *testing.T, changes <-chan *Config) *Config {
	t.Helper()
	select {
	case cfg := <-changes:
		return cfg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config change")
	}
	return nil
}

func TestWatcher(t *testing.T) {
	logger := logging.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "planner.json")
	writeConfig(t, path, `{"max_vel_x": 0.7}`)

	changes := make(chan *Config, 10)
	w, err := NewWatcher(path, func(cfg *Config) { changes <- cfg }, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, w.Close(), test.ShouldBeNil)
	}()
	test.That(t, w.Current().MaxVelX, test.ShouldEqual, 0.7)

	writeConfig(t, path, `{"max_vel_x": 0.9, "vx_samples": 4}`)
	cfg := nextConfig(t, changes)
	test.That(t, cfg.MaxVelX, test.ShouldEqual, 0.9)
	test.That(t, cfg.VxSamples, test.ShouldEqual, 4)
	test.That(t, w.Current(), test.ShouldEqual, cfg)

	// invalid files are ignored
	writeConfig(t, path, `{"sim_time": -1}`)
	time.Sleep(3 * settleTime)
	writeConfig(t, path, `{"max_vel_x": 0.4}`)
	cfg = nextConfig(t, changes)
	test.That(t, cfg.MaxVelX, test.ShouldEqual, 0.4)

	writeConfig(t, path, `{"max_vel_x": 2.0, "restore_defaults": true}`)
	cfg = nextConfig(t, changes)
	test.That(t, cfg.MaxVelX, test.ShouldEqual, 0.7)
	test.That(t, cfg.RestoreDefaults, test.ShouldBeFalse)
}

func TestWatcherMissingFile(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing.json"), func(*Config) {}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}
