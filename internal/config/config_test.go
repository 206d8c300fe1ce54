package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Minimal(t *testing.T) {
	p := writeFile(t, "launchr.toml", `
[[launchers]]
name = "game"
path = "/opt/game/bin/game"
`)
	fc, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(fc.Launchers) != 1 || fc.Launchers[0].Name != "game" || fc.Launchers[0].Path != "/opt/game/bin/game" {
		t.Fatalf("unexpected launchers: %+v", fc.Launchers)
	}
	if fc.Log.Level != "info" || fc.Log.Format != "text" || fc.Server.BasePath != "/api" {
		t.Fatalf("defaults not applied: %+v", fc)
	}
	if err := fc.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoad_Full(t *testing.T) {
	p := writeFile(t, "full.toml", `
[log]
level = "debug"
format = "json"
dir = "/var/log/launchr"
max_size_mb = 50
max_backups = 5

[server]
listen = "127.0.0.1:8080"
base_path = "/launchr"

[metrics]
enabled = true
listen = ":9100"

[history]
dsns = ["sqlite:///tmp/h.db", "opensearch://localhost:9200/launches"]

[[launchers]]
name = "game"
path = "/opt/game/bin/game"
verbose = true
autolaunch = true
poll_interval = "25ms"
  [[launchers.args]]
  key = "level"
  value = "5"
  [[launchers.args]]
  key = "playerName"
  value = "Hero"
  [launchers.output]
  stdout = "/tmp/game.out"
  max_size_mb = 2
`)
	fc, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.Server.Listen != "127.0.0.1:8080" || fc.Server.BasePath != "/launchr" {
		t.Fatalf("unexpected server: %+v", fc.Server)
	}
	if !fc.Metrics.Enabled || fc.Metrics.Listen != ":9100" {
		t.Fatalf("unexpected metrics: %+v", fc.Metrics)
	}
	if len(fc.History.DSNs) != 2 {
		t.Fatalf("unexpected history: %+v", fc.History)
	}

	lc, ok := fc.Launcher("game")
	if !ok {
		t.Fatalf("launcher game missing")
	}
	if !lc.Verbose || !lc.AutoLaunch || lc.PollInterval != 25*time.Millisecond {
		t.Fatalf("unexpected launcher flags: %+v", lc)
	}

	cfgs := fc.SupervisorConfigs()
	if len(cfgs) != 1 {
		t.Fatalf("expected 1 config, got %d", len(cfgs))
	}
	sc := cfgs[0]
	if strings.Join(sc.ArgumentKeys, ",") != "level,playerName" || strings.Join(sc.ArgumentValues, ",") != "5,Hero" {
		t.Fatalf("args not in file order: %v %v", sc.ArgumentKeys, sc.ArgumentValues)
	}
	// output inherits [log] rotation and dir, overrides size
	if sc.Output.Dir != "/var/log/launchr" || sc.Output.StdoutPath != "/tmp/game.out" || sc.Output.MaxSizeMB != 2 || sc.Output.MaxBackups != 5 {
		t.Fatalf("unexpected output: %+v", sc.Output)
	}

	lg := fc.LoggerConfig()
	if lg.Level != "debug" || lg.Format != "json" || lg.File.MaxSizeMB != 50 {
		t.Fatalf("unexpected logger config: %+v", lg)
	}
}

func TestLoad_YAMLAndJSON(t *testing.T) {
	yml := writeFile(t, "c.yaml", `
launchers:
  - name: a
    path: /bin/a
    args:
      - key: k
        value: v
`)
	js := writeFile(t, "c.json", `{"launchers":[{"name":"a","path":"/bin/a","args":[{"key":"k","value":"v"}]}]}`)
	for _, p := range []string{yml, js} {
		fc, err := Load(p)
		if err != nil {
			t.Fatalf("load %s: %v", p, err)
		}
		cfg := fc.Launchers[0].ToSupervisorConfig()
		if cfg.Name != "a" || cfg.ArgumentKeys[0] != "k" || cfg.ArgumentValues[0] != "v" {
			t.Fatalf("%s: unexpected config %+v", p, cfg)
		}
		if cfg.Output.Enabled() {
			t.Fatalf("%s: output should be disabled without [output]", p)
		}
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	p := writeFile(t, "env.toml", `
[server]
listen = ":1"
`)
	t.Setenv("LAUNCHR_SERVER_LISTEN", ":7777")
	t.Setenv("LAUNCHR_LOG_LEVEL", "warn")
	fc, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.Server.Listen != ":7777" {
		t.Fatalf("env override not applied: %q", fc.Server.Listen)
	}
	if fc.Log.Level != "warn" {
		t.Fatalf("env override not applied to log level: %q", fc.Log.Level)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	fc, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(fc.Launchers) != 0 || fc.Server.BasePath != "/api" {
		t.Fatalf("unexpected defaults: %+v", fc)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := writeFile(t, "bad.toml", "[[launchers]\nname = ")
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected error for malformed toml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		fc   File
		want string
	}{
		{"ok", File{Log: LogConfig{Level: "info"}, Launchers: []LauncherConfig{{Name: "a", Path: "/a"}}}, ""},
		{"missing name", File{Launchers: []LauncherConfig{{Path: "/a"}}}, "requires name"},
		{"missing path", File{Launchers: []LauncherConfig{{Name: "a"}}}, "requires path"},
		{"duplicate", File{Launchers: []LauncherConfig{{Name: "a", Path: "/a"}, {Name: "a", Path: "/b"}}}, "duplicate"},
		{"negative poll", File{Launchers: []LauncherConfig{{Name: "a", Path: "/a", PollInterval: -1}}}, "negative"},
		{"bad level", File{Log: LogConfig{Level: "loud"}}, "level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fc.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
