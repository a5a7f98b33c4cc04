package migrations

import (
	"context"
	"fmt"

	"github.com/quarrydb/quarry/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260815000000, down_20260815000000)
}

// up_20260815000000 creates the authentication catalog: users, roles and
// role grants.
func up_20260815000000(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating users table...")
	_, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_name ON users(name)`)
	if err != nil {
		return fmt.Errorf("failed to create users name index: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating roles table...")
	_, err = db.NewCreateTable().
		Model((*models.Role)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create roles table: %w", err)
	}
	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_roles_name ON roles(name)`)
	if err != nil {
		return fmt.Errorf("failed to create roles name index: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating role_grants table...")
	_, err = db.NewCreateTable().
		Model((*models.RoleGrant)(nil)).
		IfNotExists().
		ForeignKey(`(user_id) REFERENCES users (id) ON DELETE CASCADE`).
		ForeignKey(`(role_id) REFERENCES roles (id) ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create role_grants table: %w", err)
	}
	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_role_grants_edge ON role_grants(user_id, role_id)`)
	if err != nil {
		return fmt.Errorf("failed to create role_grants edge index: %w", err)
	}
	// Startup purge and per-user revocation both scan temporary grants only.
	var temporaryIndexSQL string
	if IsPostgreSQL(db) {
		// PostgreSQL: partial index keeps persistent grants out entirely
		temporaryIndexSQL = `CREATE INDEX IF NOT EXISTS idx_role_grants_temporary ON role_grants(user_id) WHERE temporary`
	} else {
		temporaryIndexSQL = `CREATE INDEX IF NOT EXISTS idx_role_grants_temporary ON role_grants(user_id, temporary)`
	}
	_, err = db.Exec(temporaryIndexSQL)
	if err != nil {
		return fmt.Errorf("failed to create role_grants temporary index: %w", err)
	}
	fmt.Println(" OK")

	return nil
}

// down_20260815000000 drops the authentication catalog tables.
func down_20260815000000(ctx context.Context, db *bun.DB) error {
	for _, table := range []string{"role_grants", "roles", "users"} {
		if _, err := db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)); err != nil {
			return fmt.Errorf("failed to drop %s table: %w", table, err)
		}
	}
	return nil
}
