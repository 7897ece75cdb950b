package services

import (
	"carbon-market/internal/database"
	"carbon-market/internal/models"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// newTestDB opens a file-backed SQLite database for one test. The immediate
// transaction lock mode serializes writers the way a Postgres row lock would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Email:        name + "@example.com",
		PasswordHash: "x",
		Name:         name,
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProject(t *testing.T, db *gorm.DB, ownerID uint, status models.ProjectStatus, price float64) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:           "Reforestation " + string(status),
		Certification:  "Gold Standard",
		Status:         status,
		OwnerID:        ownerID,
		PricePerCredit: &price,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// stubNotifier records sends and can be told to fail.
type stubNotifier struct {
	mu    sync.Mutex
	sends []string
	err   error
}

func (n *stubNotifier) Send(toEmail, toName, subject, htmlContent, attachmentURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sends = append(n.sends, toEmail+": "+subject)
	return nil
}
