package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/indica-app/indica/internal/migrate"
	"github.com/indica-app/indica/internal/storage/sqlite"
)

const legacyGroups = `[
  {
    "id": 1,
    "name": "Movies",
    "description": "Film talk",
    "categories": ["Film"],
    "created_by": "alice",
    "created_at": "2023-05-01T10:00:00Z",
    "members": ["alice", "bob"],
    "is_public": true
  },
  {
    "id": 2,
    "name": "Books",
    "description": "",
    "categories": ["Fiction"],
    "created_by": "bob",
    "created_at": "2023-06-01T10:00:00Z",
    "members": ["bob"]
  }
]`

const legacyUsers = `{
  "alice": "plaintext-password",
  "bob": {
    "password": "pw",
    "created_at": "2023-06-01T10:00:00Z",
    "preferred_group": 1,
    "last_group": 1
  }
}`

func TestImportLegacy(t *testing.T) {
	dir := t.TempDir()
	writeLegacy(t, dir, "groups.json", legacyGroups)
	writeLegacy(t, dir, "users.json", legacyUsers)
	// Unparseable container: must be skipped and left exactly as-is.
	writeLegacy(t, dir, "recommendations.json", "{broken")

	store, err := sqlite.New(filepath.Join(dir, "indica.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	report, err := migrate.ImportLegacy(ctx, dir, store)
	if err != nil {
		t.Fatalf("ImportLegacy failed: %v", err)
	}

	t.Run("groups land in the relational store", func(t *testing.T) {
		groups, err := store.LoadGroups(ctx)
		if err != nil {
			t.Fatalf("LoadGroups failed: %v", err)
		}
		if len(groups) != 2 {
			t.Fatalf("got %d groups, want 2", len(groups))
		}
		if groups[0].Name != "Movies" || groups[1].Name != "Books" {
			t.Errorf("group names = %q, %q", groups[0].Name, groups[1].Name)
		}
		if len(groups[0].Members) != 2 {
			t.Errorf("Movies members = %v, want alice and bob", groups[0].Members)
		}
		// The second group predates the visibility flag; the import
		// normalizes it.
		if !groups[1].IsPublic {
			t.Error("expected Books to be migrated to public")
		}
	})

	t.Run("bare-credential user is migrated", func(t *testing.T) {
		users, err := store.LoadUsers(ctx)
		if err != nil {
			t.Fatalf("LoadUsers failed: %v", err)
		}
		alice, ok := users["alice"]
		if !ok {
			t.Fatal("alice missing after import")
		}
		if alice.Password != "plaintext-password" {
			t.Errorf("alice password = %q, want original value", alice.Password)
		}
		if alice.CreatedAt == "" {
			t.Error("expected alice created_at to be filled")
		}
		bob := users["bob"]
		if bob.PreferredGroup == nil || *bob.PreferredGroup != 1 {
			t.Errorf("bob preferred_group = %v, want 1", bob.PreferredGroup)
		}
	})

	t.Run("imported files are renamed with backup suffix", func(t *testing.T) {
		for _, name := range []string{"groups.json", "users.json"} {
			if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
				t.Errorf("%s still present after import", name)
			}
			if _, err := os.Stat(filepath.Join(dir, name+migrate.BackupSuffix)); err != nil {
				t.Errorf("%s backup missing: %v", name, err)
			}
		}
	})

	t.Run("unparseable file is skipped untouched", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "recommendations.json"))
		if err != nil {
			t.Fatalf("recommendations.json should still exist: %v", err)
		}
		if string(data) != "{broken" {
			t.Errorf("recommendations.json content changed: %q", data)
		}
		if len(report.Skipped) != 1 || report.Skipped[0] != "recommendations" {
			t.Errorf("Skipped = %v, want [recommendations]", report.Skipped)
		}
	})

	t.Run("report counts imported records", func(t *testing.T) {
		if report.Imported["groups"] != 2 {
			t.Errorf("imported groups = %d, want 2", report.Imported["groups"])
		}
		if report.Imported["users"] != 2 {
			t.Errorf("imported users = %d, want 2", report.Imported["users"])
		}
	})
}

func TestImportLegacyNothingToDo(t *testing.T) {
	dir := t.TempDir()

	if migrate.HasLegacyFiles(dir) {
		t.Error("HasLegacyFiles = true for empty directory")
	}

	store, err := sqlite.New(filepath.Join(dir, "indica.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	report, err := migrate.ImportLegacy(context.Background(), dir, store)
	if err != nil {
		t.Fatalf("ImportLegacy failed: %v", err)
	}
	if len(report.Imported) != 0 || len(report.Skipped) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func writeLegacy(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}
