package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'invoice_status') THEN
			CREATE TYPE invoice_status AS ENUM ('issued', 'paid', 'overdue');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS consumers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		type VARCHAR(20) NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		address TEXT,
		phone VARCHAR(20),
		personal_account VARCHAR(50) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_consumers_personal_account ON consumers (personal_account);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_consumers_email ON consumers (email);`,
	`CREATE TABLE IF NOT EXISTS tariffs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(256) NOT NULL,
		description TEXT,
		rate NUMERIC(10,4) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		consumer_id UUID NOT NULL REFERENCES consumers(id) ON DELETE CASCADE,
		tariff_id UUID NOT NULL REFERENCES tariffs(id) ON DELETE RESTRICT,
		contract_number VARCHAR(50) NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		meter_number VARCHAR(50) NOT NULL,
		meter_installation_date DATE NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_number ON contracts (contract_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_consumer_id ON contracts (consumer_id);`,
	`CREATE TABLE IF NOT EXISTS meter_readings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		reading_date DATE NOT NULL,
		value NUMERIC(12,4) NOT NULL,
		is_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_reading_contract_date ON meter_readings (contract_id, reading_date);`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		period DATE NOT NULL,
		meter_reading_id UUID REFERENCES meter_readings(id) ON DELETE RESTRICT,
		consumption NUMERIC(12,4) NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		status invoice_status NOT NULL DEFAULT 'issued',
		issue_date DATE NOT NULL,
		due_date DATE NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_meter_reading ON invoices (meter_reading_id) WHERE meter_reading_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_contract_id ON invoices (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices (status);`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE RESTRICT,
		amount NUMERIC(12,2) NOT NULL,
		payment_date DATE NOT NULL,
		external_id VARCHAR(100),
		method VARCHAR(50) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_invoice_id ON payments (invoice_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
