//go:build mage

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var binaries = map[string]string{
	"bin/intake-server": "./cmd/server",
	"bin/coversheet":    "./cmd/coversheet",
}

// Dbup runs dbmate to apply db migrations
func Dbup() error {
	if _, err := exec.LookPath("dbmate"); err != nil {
		fmt.Println(">> dbmate not found; install with:")
		fmt.Println("   go install github.com/amacneil/dbmate/v2@latest")
		return err
	}
	fmt.Println(">> dbmate up")
	return sh.Run("dbmate", "up")
}

// Build tidies deps, then compiles the server and the coversheet CLI into ./bin.
func Build() error {
	mg.Deps(Tidy)
	for out, pkg := range binaries {
		fmt.Println(">> Building", out, "...")
		if err := sh.Run("go", "build", "-o", out, pkg); err != nil {
			return err
		}
	}
	return nil
}

// Run builds, migrates, then executes the server.
func Run() error {
	mg.Deps(Build, Dbup)
	fmt.Println(">> Starting server on :8080 ...")
	return sh.Run("./bin/intake-server")
}

// Dev starts the server via go run.
func Dev() error {
	mg.Deps(Dbup)
	fmt.Println(">> Dev mode: go run ./cmd/server ...")
	cmd := exec.Command("go", "run", "./cmd/server")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "PORT=8080")
	return cmd.Run()
}

// Tables validates every embedded mapping and placement table.
func Tables() error {
	return sh.RunV("go", "run", "./cmd/coversheet", "tables", "validate")
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test runs all unit tests.
func Test() error {
	fmt.Println(">> Running tests...")
	return sh.Run("go", "test", "./...")
}

// Lint runs golangci-lint if available.
func Lint() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping.")
		return nil
	}
	return sh.Run("golangci-lint", "run", "./...")
}

// Clean removes build artifacts and the local SQLite DB.
func Clean() error {
	fmt.Println(">> Cleaning...")
	if err := os.RemoveAll("bin"); err != nil {
		return err
	}
	db := os.Getenv("DB_PATH")
	if db == "" {
		db = "intake.db"
	}
	if err := os.Remove(db); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Install installs both binaries to $GOPATH/bin.
func Install() error {
	mg.Deps(Tables)
	for _, pkg := range binaries {
		if err := sh.Run("go", "install", pkg); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
}
