//go:build ignore

// build.go - WorkPulse Build System
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, api, cli, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	version        = "1.2.0"
	contractsPkg   = "workpulse/pkg/contracts"
	defaultDistDir = "dist"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	DistDir string
	GOOS    string
	GOARCH  string
}

var (
	// Executables (key = directory under cmd/, value = output name without extension)
	executables = map[string]string{
		"workpulse-api": "workpulse-api",
		"workpulse":     "workpulse",
	}

	// Platforms built by the release target
	releasePlatforms = [][2]string{
		{"linux", "amd64"},
		{"linux", "arm64"},
		{"darwin", "arm64"},
		{"windows", "amd64"},
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	distDir := flag.String("dist", defaultDistDir, "Output directory")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{
		Verbose: *verbose,
		DistDir: *distDir,
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
	}

	var err error
	switch *target {
	case "all":
		err = buildAll(ctx)
	case "api":
		err = buildExecutable("workpulse-api", ctx)
	case "cli":
		err = buildExecutable("workpulse", ctx)
	case "test":
		err = runTests(ctx.Verbose)
	case "clean":
		err = clean(ctx)
	case "release":
		err = buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "         WorkPulse - Build System          " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

// buildAll builds every executable for the host platform
func buildAll(ctx *BuildContext) error {
	printInfo("Building all components...")

	if err := checkPrerequisites(); err != nil {
		return fmt.Errorf("prerequisites check failed: %w", err)
	}
	if err := os.MkdirAll(ctx.DistDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", ctx.DistDir, err)
	}

	for name := range executables {
		if err := buildExecutable(name, ctx); err != nil {
			return err
		}
	}

	if err := copyConfigFiles(ctx); err != nil {
		printWarning(fmt.Sprintf("Config files not copied: %v", err))
	}
	return nil
}

// ldflags stamps version information into pkg/contracts
func ldflags() string {
	flags := []string{
		"-s", "-w",
		"-X", contractsPkg + ".Version=" + version,
		"-X", contractsPkg + ".BuildTime=" + time.Now().UTC().Format(time.RFC3339),
	}
	if commit := gitOutput("rev-parse", "--short", "HEAD"); commit != "" {
		flags = append(flags, "-X", contractsPkg+".GitCommit="+commit)
	}
	if branch := gitOutput("rev-parse", "--abbrev-ref", "HEAD"); branch != "" {
		flags = append(flags, "-X", contractsPkg+".GitBranch="+branch)
	}
	return strings.Join(flags, " ")
}

func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func buildExecutable(name string, ctx *BuildContext) error {
	base, ok := executables[name]
	if !ok {
		return fmt.Errorf("unknown executable: %s", name)
	}

	exeName := base
	if ctx.GOOS == "windows" {
		exeName += ".exe"
	}
	outputPath := filepath.Join(ctx.DistDir, ctx.GOOS+"_"+ctx.GOARCH, exeName)

	printInfo(fmt.Sprintf("Building %s for %s/%s...", name, ctx.GOOS, ctx.GOARCH))

	args := []string{"build", "-trimpath", "-ldflags", ldflags(), "-o", outputPath, "./cmd/" + name}
	if ctx.Verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH)
	cmd.Stderr = os.Stderr
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to build %s: %w", name, err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", outputPath, sizeMB))
	}
	return nil
}

func clean(ctx *BuildContext) error {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(ctx.DistDir); err != nil {
		return fmt.Errorf("failed to clean %s: %w", ctx.DistDir, err)
	}
	printSuccess("Build artifacts cleaned")
	return nil
}

func runTests(verbose bool) error {
	printInfo("Running Go tests...")

	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go tests failed: %w", err)
	}

	printSuccess("All tests passed")
	return nil
}

// buildRelease cross-compiles every executable and writes a VERSION file
func buildRelease(ctx *BuildContext) error {
	printInfo("Building release version...")

	if err := clean(ctx); err != nil {
		return err
	}
	if err := checkPrerequisites(); err != nil {
		return fmt.Errorf("prerequisites check failed: %w", err)
	}

	for _, p := range releasePlatforms {
		platformCtx := *ctx
		platformCtx.GOOS, platformCtx.GOARCH = p[0], p[1]
		for name := range executables {
			if err := buildExecutable(name, &platformCtx); err != nil {
				return err
			}
		}
	}

	if err := copyConfigFiles(ctx); err != nil {
		printWarning(fmt.Sprintf("Config files not copied: %v", err))
	}

	content := fmt.Sprintf("WorkPulse v%s\nBuilt: %s\n", version, time.Now().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(filepath.Join(ctx.DistDir, "VERSION.txt"), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write VERSION.txt: %w", err)
	}

	printSuccess("Release build completed")
	return nil
}

func checkPrerequisites() error {
	if _, err := exec.LookPath("go"); err != nil {
		return fmt.Errorf("go toolchain not found in PATH")
	}
	if _, err := os.Stat("go.mod"); err != nil {
		return fmt.Errorf("run build.go from the repository root: %w", err)
	}
	return nil
}

// copyConfigFiles ships example configuration next to the binaries
func copyConfigFiles(ctx *BuildContext) error {
	for _, name := range []string{"workpulse.example.yaml", ".env.example"} {
		data, err := os.ReadFile(name)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(ctx.DistDir, name), data, 0644); err != nil {
			return err
		}
	}
	return nil
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-dist=DIR]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all       Build the API server and CLI (default)")
	fmt.Println("  api       Build workpulse-api only")
	fmt.Println("  cli       Build workpulse only")
	fmt.Println("  test      Run all tests with the race detector")
	fmt.Println("  clean     Remove build artifacts")
	fmt.Println("  release   Cross-compile for every release platform")
}
