package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/izposoja/internal/config"
	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// runInit creates a new database with the schema, notification defaults and
// an admin account with a random password.
func runInit(cfg config.Config) error {
	if _, err := os.Stat(cfg.Database); err == nil {
		return fmt.Errorf("database %s already exists", cfg.Database)
	}

	password, err := initDatabase(cfg.Database, cfg.AdminUser)
	if err != nil {
		os.Remove(cfg.Database)
		return fmt.Errorf("initializing database: %w", err)
	}

	printInitResult(cfg.Database, cfg.AdminUser, password)
	return nil
}

func initDatabase(path, adminUsername string) (string, error) {
	database, err := db.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return "", err
	}

	ctx := context.Background()
	if err := store.EnsureNotificationSettings(ctx, database); err != nil {
		return "", err
	}
	if err := store.EnsureDefaultTemplates(ctx, database); err != nil {
		return "", err
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	_, err = store.CreateUser(ctx, database, store.UserFields{
		Username: adminUsername,
		Role:     model.RoleAdmin,
	}, string(hash))
	if err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}

	return password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized, default e-mail templates installed.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("Configure SMTP via PUT /api/settings/notifications before reminders can be sent.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
