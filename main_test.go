/*
Copyright © 2026 The rws-manager Authors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	// Build the binary before running tests
	wd := mustGetwd()
	cmd := exec.Command("go", "build", "-o", "rws-manager_test", ".")
	cmd.Dir = wd
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("failed to build test binary: " + err.Error() + "\n" + string(out))
	}
	code := m.Run()
	_ = os.Remove(filepath.Join(wd, "rws-manager_test"))
	os.Exit(code)
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return wd
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	return runCLIEnv(t, nil, args...)
}

func runCLIEnv(t *testing.T, env []string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	binary := filepath.Join(mustGetwd(), "rws-manager_test")
	cmd := exec.Command(binary, args...)
	cmd.Env = append(os.Environ(), env...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("Failed to run CLI: %v", err)
		}
	}

	return stdout, stderr, exitCode
}

var appFixture = filepath.Join("testdata", "cli", "app")

func TestVersionJSON(t *testing.T) {
	stdout, stderr, code := runCLI(t, "version", "--format", "json")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	var info map[string]any
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nstdout: %s", err, stdout)
	}
	if info["version"] == nil || info["version"] == "" {
		t.Error("Expected version field")
	}
}

func TestConfig(t *testing.T) {
	stdout, stderr, code := runCLI(t, "config", "--app-root", appFixture, "--format", "json")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	var summary struct {
		File       string `json:"file"`
		Workspaces []struct {
			BuildType   string              `json:"buildType"`
			Runnable    bool                `json:"runnable"`
			Environment string              `json:"environment"`
			Output      string              `json:"output"`
			Paths       map[string][]string `json:"paths"`
		} `json:"workspaces"`
	}
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nstdout: %s", err, stdout)
	}

	if !strings.HasSuffix(summary.File, "rws.config.yaml") {
		t.Errorf("Expected rws.config.yaml, got %q", summary.File)
	}
	if len(summary.Workspaces) != 2 {
		t.Fatalf("Expected 2 workspaces, got %d", len(summary.Workspaces))
	}

	front, back := summary.Workspaces[0], summary.Workspaces[1]
	if front.BuildType != "front" || front.Runnable {
		t.Errorf("Unexpected front workspace: %+v", front)
	}
	if !strings.HasSuffix(filepath.ToSlash(front.Output), "front/public/js/front.rws.js") {
		t.Errorf("Unexpected front output %q", front.Output)
	}
	if back.BuildType != "back" || !back.Runnable || back.Environment != "node" {
		t.Errorf("Unexpected back workspace: %+v", back)
	}
	// Alias keys keep their case through the YAML config
	if _, ok := back.Paths["@V/*"]; !ok {
		t.Errorf("Expected @V/* alias, got %v", back.Paths)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	abs, err := filepath.Abs(appFixture)
	if err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCLIEnv(t, []string{"APP_ROOT=" + abs, "CLI_EXEC=" + abs}, "config")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "appRoot: "+abs) {
		t.Errorf("Expected app root from APP_ROOT in output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "cliExec: "+abs) {
		t.Errorf("Expected CLI_EXEC in output:\n%s", stdout)
	}
}

func TestConfigMissing(t *testing.T) {
	_, stderr, code := runCLI(t, "config", "--app-root", filepath.Join("testdata", "cli"))
	if code == 0 {
		t.Fatal("Expected non-zero exit code without rws.config")
	}
	if !strings.Contains(stderr, "rws.config") {
		t.Errorf("Expected error to mention rws.config, got: %s", stderr)
	}
}

func TestGenerateTSConfigDryRun(t *testing.T) {
	stdout, stderr, code := runCLI(t, "generate", "tsconfig", "--app-root", appFixture, "--dry-run")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	var cfg struct {
		CompilerOptions map[string]any `json:"compilerOptions"`
		Include         []string       `json:"include"`
		Exclude         []string       `json:"exclude"`
	}
	if err := json.Unmarshal([]byte(stdout), &cfg); err != nil {
		t.Fatalf("Failed to parse tsconfig output: %v\nstdout: %s", err, stdout)
	}

	for _, want := range []string{
		"front/src",
		"back/src",
		"node_modules/@rws-framework/client/src",
		"node_modules/@rws-framework/server/src",
	} {
		if !slices.Contains(cfg.Include, want) {
			t.Errorf("Expected include %q in %v", want, cfg.Include)
		}
	}
	if !slices.Contains(cfg.Exclude, "node_modules/@rws-framework/client/builder") {
		t.Errorf("Expected client builder excluded, got %v", cfg.Exclude)
	}

	if _, err := os.Stat(filepath.Join(appFixture, "tsconfig.json")); !os.IsNotExist(err) {
		t.Error("Dry run should not write tsconfig.json")
	}
}

func TestDeps(t *testing.T) {
	stdout, stderr, code := runCLI(t, "deps", "back", "--app-root", appFixture, "--format", "json", "--cache-size", "8", "--no-color")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	var report struct {
		Packages []struct {
			Name       string   `json:"name"`
			Linked     bool     `json:"linked"`
			Dependents []string `json:"dependents"`
		} `json:"packages"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nstdout: %s", err, stdout)
	}
	if len(report.Packages) != 1 || report.Packages[0].Name != "@rws-framework/server" {
		t.Fatalf("Expected only @rws-framework/server, got %+v", report.Packages)
	}
	if !slices.Contains(report.Packages[0].Dependents, "back") {
		t.Errorf("Expected back to depend on server, got %v", report.Packages[0].Dependents)
	}
}

func TestCheckClean(t *testing.T) {
	stdout, stderr, code := runCLI(t, "check", "all", "--app-root", appFixture)
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstdout: %s\nstderr: %s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "front: 1 modules, 0 issues") {
		t.Errorf("Unexpected output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "back: 1 modules, 0 issues") {
		t.Errorf("Unexpected output:\n%s", stdout)
	}
}

func TestCheckReportsIssues(t *testing.T) {
	fixtureDir := filepath.Join("testdata", "trace", "check")

	stdout, _, code := runCLI(t, "check", "front", "--app-root", fixtureDir)
	if code != 1 {
		t.Fatalf("Expected exit code 1, got %d\nstdout: %s", code, stdout)
	}
	for _, want := range []string{
		"@rws-framework/db (static): not declared",
		"@rws-framework/legacy (static): not an internal package",
		"@rws-framework/ghost (re-export): not installed",
		"@rws-framework/ghost/util (require): not installed",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestBuildRunsBundler(t *testing.T) {
	abs, err := filepath.Abs(appFixture)
	if err != nil {
		t.Fatal(err)
	}

	// env prints the environment the bundler process receives
	stdout, stderr, code := runCLI(t, "build", "back", "--app-root", appFixture, "--command", "env")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	transient := filepath.Join(abs, "back", ".rws.tsconfig.json")
	for _, want := range []string{
		"RWS_BUILD_TYPE=back",
		"RWS_ENVIRONMENT=node",
		"RWS_TSCONFIG=" + transient,
		"RWS_OUTPUT_FILE=back.rws.js",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected %q in bundler environment", want)
		}
	}
	if _, err := os.Stat(transient); !os.IsNotExist(err) {
		t.Error("Expected transient tsconfig to be removed after the build")
	}
}

func TestBuildKeepTransient(t *testing.T) {
	transient := filepath.Join(appFixture, "front", ".rws.tsconfig.json")
	t.Cleanup(func() { _ = os.Remove(transient) })

	_, stderr, code := runCLI(t, "build", "front", "--app-root", appFixture, "--command", "true", "--keep")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	data, err := os.ReadFile(transient)
	if err != nil {
		t.Fatalf("Expected transient tsconfig to be kept: %v", err)
	}
	var cfg struct {
		CompilerOptions map[string]any `json:"compilerOptions"`
		Include         []string       `json:"include"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Failed to parse transient tsconfig: %v", err)
	}
	if cfg.CompilerOptions["lib"] == nil {
		t.Errorf("Expected base compiler options to be kept, got %v", cfg.CompilerOptions)
	}
	if cfg.CompilerOptions["target"] != "ES2018" {
		t.Errorf("Expected framework target to override the base, got %v", cfg.CompilerOptions["target"])
	}
	if !slices.Contains(cfg.Include, "src") {
		t.Errorf("Expected workspace sources included, got %v", cfg.Include)
	}
}

func TestBuildBundlerFailure(t *testing.T) {
	_, stderr, code := runCLI(t, "build", "back", "--app-root", appFixture, "--command", "false")
	if code == 0 {
		t.Fatal("Expected non-zero exit code when the bundler fails")
	}
	if !strings.Contains(stderr, "false failed") {
		t.Errorf("Expected bundler failure in stderr, got: %s", stderr)
	}
}

func TestBuildUnknownType(t *testing.T) {
	_, stderr, code := runCLI(t, "build", "desktop", "--app-root", appFixture)
	if code == 0 {
		t.Fatal("Expected non-zero exit code for unknown build type")
	}
	if !strings.Contains(stderr, "unknown build type") {
		t.Errorf("Expected unknown build type error, got: %s", stderr)
	}
}
