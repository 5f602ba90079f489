package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/khoahotran/screenvault/internal/domain/user"
	"github.com/khoahotran/screenvault/pkg/auth"
)

func main() {
	fmt.Println("migrating database and adding owner...")

	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	dsn := os.Getenv("DB_DSN")
	ownerName := os.Getenv("OWNER_NAME")
	ownerEmail := os.Getenv("OWNER_EMAIL")
	ownerPassword := os.Getenv("OWNER_PASSWORD")
	if dsn == "" || ownerEmail == "" || ownerPassword == "" {
		log.Fatal("DB_DSN, OWNER_EMAIL and OWNER_PASSWORD are required")
	}
	if ownerName == "" {
		ownerName = ownerEmail
	}

	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		log.Fatalf("cannot create migrate instance: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("cannot run migrations: %v", err)
	}

	hash, err := auth.HashPassword(ownerPassword)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, email_verified)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
		RETURNING id
	`, uuid.NewString(), ownerName, ownerEmail).Scan(&userID)
	if err != nil {
		log.Fatalf("cannot add user: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO accounts (id, account_id, provider_id, user_id, password)
		VALUES ($1, $2, $3, $2, $4)
		ON CONFLICT (provider_id, account_id) DO UPDATE SET password = EXCLUDED.password, updated_at = NOW()
	`, uuid.NewString(), userID, user.CredentialProvider, hash)
	if err != nil {
		log.Fatalf("cannot add credential account: %v", err)
	}

	fmt.Printf("added or updated owner '%s' successfully!\n", ownerEmail)
}
