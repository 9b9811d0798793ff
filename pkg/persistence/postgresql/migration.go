package postgresql

import "github.com/dukex/pathway/pkg/persistence/sqlbase"

func migrations() []sqlbase.Migration {
	return []sqlbase.Migration{
		{Version: 1, Name: "workflows_templates_accounts", SQL: `
			-- Workflow aggregates are stored as documents; filter and sort columns are projected.
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				type VARCHAR(50) NOT NULL CHECK (type IN ('onboarding', 'offboarding')),
				status VARCHAR(50) NOT NULL CHECK (status IN ('in_progress', 'completed', 'cancelled')),
				client_id VARCHAR(255) NOT NULL DEFAULT '',
				template_id VARCHAR(255),
				employee_name VARCHAR(255) NOT NULL DEFAULT '',
				employee_email VARCHAR(255) NOT NULL DEFAULT '',
				revision BIGINT NOT NULL DEFAULT 0,
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_type ON workflows(type);
			CREATE INDEX idx_workflows_client_id ON workflows(client_id);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);

			CREATE TABLE workflow_templates (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				type VARCHAR(50) NOT NULL,
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE employee_accounts (
				id VARCHAR(255) PRIMARY KEY,
				email VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL,
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE UNIQUE INDEX idx_employee_accounts_email ON employee_accounts(email);
		`},
		{Version: 2, Name: "notifications_users", SQL: `
			CREATE TABLE notifications (
				id VARCHAR(255) PRIMARY KEY,
				kind VARCHAR(50) NOT NULL,
				workflow_id VARCHAR(255) NOT NULL,
				task_id VARCHAR(255) NOT NULL DEFAULT '',
				recipient_id VARCHAR(255) NOT NULL DEFAULT '',
				dedupe_key VARCHAR(255) NOT NULL DEFAULT '',
				read BOOLEAN NOT NULL DEFAULT FALSE,
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_notifications_workflow_id ON notifications(workflow_id);
			CREATE INDEX idx_notifications_recipient_id ON notifications(recipient_id);
			CREATE INDEX idx_notifications_dedupe_key ON notifications(dedupe_key);

			CREATE TABLE users (
				id VARCHAR(255) PRIMARY KEY,
				email VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE UNIQUE INDEX idx_users_email ON users(email);
		`},
	}
}
