// Command stubapi runs the fault-injecting stub admin backend for local
// development. Configuration is environment-based:
//
//	STUB_ADDR        listen address (default :8080)
//	STUB_DB          sqlite file path (default data/stub.db)
//	STUB_MIGRATIONS  migrations source (default file://migrations/sqlite)
//	STUB_FAIL_COUNT  fail the first N requests per route (default 0)
//	STUB_FAIL_STATUS status code for injected failures (default 503)
package main

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"incuhub/internal/platform/logger"
	"incuhub/internal/platform/sqlite"
	"incuhub/internal/stub"
)

func main() {
	_ = godotenv.Load()

	log, closeLog := logger.New(logger.Options{
		Env:          getenv("ENV", "dev"),
		ConsoleLevel: getenv("LOG_CONSOLE_LEVEL", "info"),
		App:          "stubapi",
	})
	defer func() { _ = closeLog() }()

	dbPath := getenv("STUB_DB", "data/stub.db")
	db, err := sqlite.Open(context.Background(), dbPath)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := sqlite.Migrate(dbPath, getenv("STUB_MIGRATIONS", "file://migrations/sqlite")); err != nil {
		log.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	failCount := getint("STUB_FAIL_COUNT", 0)
	failStatus := getint("STUB_FAIL_STATUS", http.StatusServiceUnavailable)
	var faults *stub.FaultInjector
	if failCount > 0 {
		faults = stub.NewFaultInjector(failCount, failStatus)
		log.Info("fault injection enabled", "count", failCount, "status", failStatus)
	}

	addr := getenv("STUB_ADDR", ":8080")
	srv := stub.NewServer(stub.NewStore(db), log)
	log.Info("stub backend listening", "addr", addr, "db", dbPath)
	if err := http.ListenAndServe(addr, srv.Router(faults)); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
