package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/garmentz-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestQuotesMigrationGuardsAssignmentInvariant(t *testing.T) {
	content := readMigration(t, "create_quotes")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS quotes",
		"supplier_id UUID,",
		"CHECK (quantity > 0)",
		"(supplier_id IS NULL AND status = 'pending')",
		"WHERE supplier_id IS NULL",
		"DROP TABLE IF EXISTS quotes",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSupplierStatsMigrationBackfillsFromOrders(t *testing.T) {
	content := readMigration(t, "create_supplier_order_stats")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS supplier_order_stats",
		"COUNT(*) FILTER (WHERE status = 'delivered')",
		"GROUP BY supplier_id",
		"CHECK (delivered_orders >= 0 AND delivered_orders <= total_orders)",
		"DROP TABLE IF EXISTS supplier_order_stats",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Supplier Notes!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_supplier_notes.sql") {
		t.Fatalf("unexpected migration path %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}
