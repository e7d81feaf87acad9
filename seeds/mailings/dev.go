package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	devAdminID   = "usr_admin_dev_000000000001"
	devManagerID = "usr_manager_dev_00000000001"
	devMemberID  = "usr_member_dev_000000000001"
	devMessageID = "msg_welcome_dev_00000000001"
	devMailingID = "mail_welcome_dev_0000000001"

	// Well-known dev token, never for production use.
	devAdminToken = "mlt_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
)

type recipientsFile struct {
	Recipients []recipientEntry `yaml:"recipients"`
}

type recipientEntry struct {
	ID       string `yaml:"id"`
	Email    string `yaml:"email"`
	FullName string `yaml:"full_name"`
	Comment  string `yaml:"comment"`
}

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fmt.Println("Seeding mailings database...")

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	memberPerms := []string{
		"recipient:view", "recipient:add", "recipient:change", "recipient:delete",
		"message:view", "message:add", "message:change", "message:delete",
		"mailing:view", "mailing:add", "mailing:change", "mailing:delete",
		"attempt:view",
	}
	managerPerms := append(append([]string{}, memberPerms...), "mailing:send")

	fmt.Println("  Inserting staff user...")
	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, is_staff, groups, permissions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`,
		devAdminID, "admin@mailings.test", string(passwordHash), "Admin", true, []string{}, []string{"*:*"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("  Inserting manager user...")
	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, is_staff, groups, permissions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`,
		devManagerID, "manager@mailings.test", string(passwordHash), "Manager", false, []string{"managers"}, managerPerms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert manager: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("  Inserting member user...")
	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, is_staff, groups, permissions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`,
		devMemberID, "member@mailings.test", string(passwordHash), "Member", false, []string{}, memberPerms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert member: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("  Inserting admin API token...")
	tokenHash := sha256.Sum256([]byte(devAdminToken))
	_, err = pool.Exec(ctx,
		`INSERT INTO api_tokens (id, user_id, name, token_hash, token_prefix)
		 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (token_hash) DO NOTHING`,
		"tok_admin_dev_0000000000001", devAdminID, "dev", hex.EncodeToString(tokenHash[:]), devAdminToken[:12])
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("  Seeding recipients from YAML...")
	recipientIDs, err := seedRecipients(ctx, pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed recipients: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("  Inserting welcome message...")
	_, err = pool.Exec(ctx,
		`INSERT INTO messages (id, subject, body, owner_id)
		 VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
		devMessageID, "Welcome to the list",
		"Hello,\n\nThanks for subscribing. You will hear from us soon.\n", devManagerID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert message: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("  Inserting welcome mailing...")
	_, err = pool.Exec(ctx,
		`INSERT INTO mailings (id, start_at, end_at, status, message_id, owner_id)
		 VALUES ($1, now(), now() + interval '7 days', 'CREATED', $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		devMailingID, devMessageID, devManagerID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert mailing: %v\n", err)
		os.Exit(1)
	}

	for _, rid := range recipientIDs {
		_, err = pool.Exec(ctx,
			`INSERT INTO mailing_recipients (mailing_id, recipient_id)
			 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			devMailingID, rid)
		if err != nil {
			fmt.Fprintf(os.Stderr, "link recipient %s: %v\n", rid, err)
			os.Exit(1)
		}
	}

	fmt.Println()
	fmt.Println("Seed complete!")
	fmt.Println()
	fmt.Println("  Logins (password for all: password)")
	fmt.Println("    admin@mailings.test   (staff)")
	fmt.Println("    manager@mailings.test (managers group)")
	fmt.Println("    member@mailings.test")
	fmt.Println()
	fmt.Printf("  Admin API token: %s\n", devAdminToken)
}

// seedRecipients reads seeds/mailings/recipients.yaml and upserts rows owned
// by the dev manager.
func seedRecipients(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	// Resolve path relative to this source file so it works regardless of cwd.
	_, thisFile, _, _ := runtime.Caller(0)
	yamlPath := filepath.Join(filepath.Dir(thisFile), "recipients.yaml")

	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("read recipients.yaml: %w", err)
	}

	var rf recipientsFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse recipients.yaml: %w", err)
	}

	ids := make([]string, 0, len(rf.Recipients))
	for _, r := range rf.Recipients {
		fmt.Printf("    Upserting recipient %s (%s)\n", r.ID, r.Email)
		_, err := pool.Exec(ctx,
			`INSERT INTO recipients (id, email, full_name, comment, owner_id)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET
			   email = EXCLUDED.email,
			   full_name = EXCLUDED.full_name,
			   comment = EXCLUDED.comment,
			   updated_at = now()`,
			r.ID, r.Email, r.FullName, r.Comment, devManagerID)
		if err != nil {
			return nil, fmt.Errorf("upsert recipient %s: %w", r.ID, err)
		}
		ids = append(ids, r.ID)
	}

	return ids, nil
}
