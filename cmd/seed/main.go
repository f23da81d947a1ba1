// Package main provides a CLI tool for bootstrapping the database schema and
// seeding it with initial data.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"pulsecrm/internal/core/id"
	"pulsecrm/internal/domain/campaign"
	"pulsecrm/internal/domain/contact"
	"pulsecrm/internal/domain/segment"
	"pulsecrm/internal/infrastructure/storage/postgres"
	"pulsecrm/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := ensureSchema(ctx, pool); err != nil {
		log.Fatalw("failed to create schema", "error", err)
	}
	log.Info("schema ensured")

	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// ensureSchema creates all tables if they do not exist yet.
func ensureSchema(ctx context.Context, pool *postgres.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			lifecycle_stage TEXT NOT NULL DEFAULT 'subscriber',
			tags TEXT[] NOT NULL DEFAULT '{}',
			lifetime_value NUMERIC(14,2) NOT NULL DEFAULT 0,
			total_orders INT NOT NULL DEFAULT 0,
			last_activity_at TIMESTAMPTZ,
			subscribed BOOLEAN NOT NULL DEFAULT TRUE,
			version INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_by TEXT NOT NULL DEFAULT '',
			updated_by TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS segments (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			rules JSONB NOT NULL,
			version INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_by TEXT NOT NULL DEFAULT '',
			updated_by TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS campaigns (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			from_name TEXT NOT NULL DEFAULT '',
			from_email TEXT NOT NULL DEFAULT '',
			body_html TEXT NOT NULL DEFAULT '',
			segment_id UUID NOT NULL REFERENCES segments(id),
			status TEXT NOT NULL DEFAULT 'draft',
			recipients INT NOT NULL DEFAULT 0,
			sent_count INT NOT NULL DEFAULT 0,
			failed_count INT NOT NULL DEFAULT 0,
			sent_at TIMESTAMPTZ,
			version INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_by TEXT NOT NULL DEFAULT '',
			updated_by TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			last_login_at TIMESTAMPTZ,
			failed_login_attempts INT NOT NULL DEFAULT 0,
			locked_until TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			version INT NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			token_hash TEXT NOT NULL UNIQUE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			revoked_at TIMESTAMPTZ,
			revoked_reason TEXT,
			user_agent TEXT NOT NULL DEFAULT '',
			ip_address INET
		)`,
		`CREATE TABLE IF NOT EXISTS sys_audit (
			id UUID PRIMARY KEY,
			entity_type TEXT NOT NULL,
			entity_id UUID NOT NULL,
			action TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			user_email TEXT NOT NULL DEFAULT '',
			changes JSONB,
			changes_compressed BYTEA,
			compression_algo TEXT NOT NULL DEFAULT 'none',
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sys_audit_entity ON sys_audit (entity_type, entity_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS sys_outbox (
			id UUID PRIMARY KEY,
			aggregate_type TEXT NOT NULL,
			aggregate_id UUID NOT NULL,
			event_type TEXT NOT NULL,
			payload JSONB NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			retry_count INT NOT NULL DEFAULT 0,
			last_error TEXT,
			next_retry_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			published_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sys_outbox_pending ON sys_outbox (created_at) WHERE status = 'pending'`,
		`CREATE TABLE IF NOT EXISTS sys_outbox_dlq (
			id UUID PRIMARY KEY,
			aggregate_type TEXT NOT NULL,
			aggregate_id UUID NOT NULL,
			event_type TEXT NOT NULL,
			payload JSONB NOT NULL,
			status TEXT NOT NULL,
			retry_count INT NOT NULL,
			last_error TEXT,
			next_retry_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			published_at TIMESTAMPTZ,
			failed_at TIMESTAMPTZ NOT NULL,
			failure_reason TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@pulsecrm.io"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, is_active, is_admin, version)
		VALUES ($1, $2, $3, 'System', 'Admin', true, true, 1)
	`, userID, adminEmail, string(passwordHash))
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	var contactCount int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&contactCount); err != nil {
		return fmt.Errorf("count contacts: %w", err)
	}
	if contactCount > 0 {
		log.Infow("contacts already present, skipping demo data", "count", contactCount)
		return nil
	}

	txManager := postgres.NewTxManager(pool)

	// 1. Contacts through the COPY protocol: one round-trip for the whole list.
	contacts := demoContacts()
	err := txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inserter := postgres.NewBatchInserter(txManager)

		columns := []string{
			"id", "email", "first_name", "last_name", "company", "country",
			"lifecycle_stage", "tags", "lifetime_value", "total_orders",
			"last_activity_at", "subscribed",
			"version", "created_at", "updated_at", "created_by", "updated_by",
		}
		rows := make([][]any, len(contacts))
		for i, c := range contacts {
			rows[i] = []any{
				c.ID, c.Email, c.FirstName, c.LastName, c.Company, c.Country,
				c.LifecycleStage, c.Tags, c.LifetimeValue, c.TotalOrders,
				c.LastActivityAt, c.Subscribed,
				c.Version, c.CreatedAt, c.UpdatedAt, c.CreatedBy, c.UpdatedBy,
			}
		}

		inserted, err := inserter.CopyFromSlice(ctx, "contacts", columns, rows)
		if err != nil {
			return fmt.Errorf("copy contacts: %w", err)
		}
		log.Infow("contacts seeded", "count", inserted)
		return nil
	})
	if err != nil {
		return err
	}

	// 2. A demo segment: customers, or anyone with more than three orders.
	cat := segment.DefaultCatalog()
	seg := segment.NewSegment(cat, "Active customers")
	seg.Description = "Customers plus anyone with more than three orders"
	seg.Rules = segment.RuleGroup{
		ID:       id.NewString(),
		Operator: segment.GroupOr,
		Conditions: []segment.Condition{
			{
				ID:       id.NewString(),
				Field:    "lifecycle_stage",
				Operator: segment.OpEquals,
				Value:    segment.StringValue(contact.StageCustomer),
			},
			{
				ID:       id.NewString(),
				Field:    "total_orders",
				Operator: segment.OpGreaterThan,
				Value:    segment.NumberValue(3),
			},
		},
		Groups: []segment.RuleGroup{},
	}

	rulesJSON, err := json.Marshal(seg.Rules)
	if err != nil {
		return fmt.Errorf("marshal segment rules: %w", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO segments (id, name, description, rules, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO NOTHING
	`, seg.ID, seg.Name, seg.Description, rulesJSON, seg.Version, seg.CreatedAt, seg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert segment: %w", err)
	}

	// 3. A draft campaign targeting the demo segment.
	camp := campaign.NewCampaign("Welcome back", seg.ID)
	camp.Subject = "We have something for you"
	camp.FromName = "PulseCRM Team"
	camp.FromEmail = "hello@pulsecrm.io"
	camp.BodyHTML = "<h1>Welcome back!</h1><p>Check out what is new.</p>"

	_, err = pool.Exec(ctx, `
		INSERT INTO campaigns (id, name, subject, from_name, from_email, body_html,
			segment_id, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, camp.ID, camp.Name, camp.Subject, camp.FromName, camp.FromEmail, camp.BodyHTML,
		camp.SegmentID, camp.Status, camp.Version, camp.CreatedAt, camp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}

	log.Info("demo data seeded successfully")
	return nil
}

func demoContacts() []*contact.Contact {
	now := time.Now().UTC()
	daysAgo := func(d int) *time.Time {
		t := now.AddDate(0, 0, -d)
		return &t
	}

	type seed struct {
		email, first, last, company, country, stage string
		tags                                        []string
		ltv                                         string
		orders                                      int
		lastActivity                                *time.Time
		subscribed                                  bool
	}

	seeds := []seed{
		{"alice@acme.io", "Alice", "Turner", "Acme", "us", contact.StageCustomer, []string{"vip", "newsletter"}, "2450.00", 12, daysAgo(2), true},
		{"bob@globex.de", "Bob", "Keller", "Globex", "de", contact.StageLead, []string{"newsletter"}, "0", 0, daysAgo(14), true},
		{"carol@initech.co.uk", "Carol", "Nwosu", "Initech", "gb", contact.StageOpportunity, []string{"trial"}, "120.50", 1, daysAgo(5), true},
		{"dmytro@umbrella.ua", "Dmytro", "Shevchenko", "Umbrella", "ua", contact.StageCustomer, []string{"vip"}, "5310.75", 24, daysAgo(1), true},
		{"erika@soylent.fr", "Erika", "Moreau", "Soylent", "fr", contact.StageSubscriber, []string{}, "0", 0, nil, true},
		{"frank@hooli.us", "Frank", "Ramos", "Hooli", "us", contact.StageEvangelist, []string{"vip", "beta"}, "8900.00", 41, daysAgo(3), true},
		{"grace@acme.io", "Grace", "Lin", "Acme", "us", contact.StageCustomer, []string{"newsletter"}, "640.20", 5, daysAgo(30), false},
		{"henrik@nord.de", "Henrik", "Olsen", "Nordwind", "de", contact.StageLead, []string{"trial", "newsletter"}, "0", 0, daysAgo(60), true},
	}

	out := make([]*contact.Contact, len(seeds))
	for i, s := range seeds {
		c := contact.NewContact(s.email)
		c.FirstName = s.first
		c.LastName = s.last
		c.Company = s.company
		c.Country = s.country
		c.LifecycleStage = s.stage
		c.Tags = s.tags
		c.LifetimeValue = decimal.RequireFromString(s.ltv)
		c.TotalOrders = s.orders
		c.LastActivityAt = s.lastActivity
		c.Subscribed = s.subscribed
		out[i] = c
	}
	return out
}
