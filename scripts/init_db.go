//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const schema = `
CREATE TABLE IF NOT EXISTS decision_history (
    id UUID PRIMARY KEY,
    session_id UUID NOT NULL,
    profile JSONB NOT NULL,
    outcome TEXT NOT NULL,
    reasons TEXT[] NOT NULL DEFAULT '{}',
    policy TEXT NOT NULL,
    mode TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_decision_history_created_at ON decision_history (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_decision_history_session_id ON decision_history (session_id);
`

func main() {
	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	// Get database URL
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("❌ DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// First connect to default 'postgres' database to create our database
	postgresURL := strings.Replace(databaseURL, "/credit_decisions", "/postgres", 1)
	fmt.Println("📡 Connecting to PostgreSQL server...")

	adminConn, err := pgx.Connect(ctx, postgresURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to PostgreSQL: %v\n", err)
		os.Exit(1)
	}

	// Check if database exists
	var exists bool
	err = adminConn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = 'credit_decisions')").Scan(&exists)
	if err != nil {
		fmt.Printf("❌ Failed to check database existence: %v\n", err)
		adminConn.Close(ctx)
		os.Exit(1)
	}

	if !exists {
		fmt.Println("📦 Creating 'credit_decisions' database...")
		_, err = adminConn.Exec(ctx, "CREATE DATABASE credit_decisions")
		if err != nil {
			fmt.Printf("❌ Failed to create database: %v\n", err)
			adminConn.Close(ctx)
			os.Exit(1)
		}
		fmt.Println("✅ Database 'credit_decisions' created!")
	} else {
		fmt.Println("✅ Database 'credit_decisions' already exists")
	}
	adminConn.Close(ctx)

	// Now connect to the credit_decisions database
	fmt.Println("📡 Connecting to credit_decisions database...")
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	fmt.Println("✅ Connected to database successfully!")
	fmt.Println()

	// Execute schema
	fmt.Println("🚀 Executing database schema...")
	_, err = conn.Exec(ctx, schema)
	if err != nil {
		fmt.Printf("❌ Failed to execute SQL: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Database schema executed successfully!")
	fmt.Println()

	// Verify by counting history rows
	fmt.Println("🔍 Verifying database setup...")

	var recordCount int
	err = conn.QueryRow(ctx, "SELECT COUNT(*) FROM decision_history").Scan(&recordCount)
	if err != nil {
		fmt.Printf("⚠️  Warning: Could not count decision records: %v\n", err)
	} else {
		fmt.Printf("   📊 Decision records in history: %d\n", recordCount)
	}

	fmt.Println()
	fmt.Println("🎉 Database initialization completed successfully!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Test the connection: go run scripts/test_connection.go")
	fmt.Println("  2. Start the API server: go run ./cmd/server")
}
