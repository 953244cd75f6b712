package database

import (
	"log"

	"github.com/LuqmanKt98/hangout-app/config"
	"github.com/LuqmanKt98/hangout-app/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect() {
	var err error
	DB, err = gorm.Open(postgres.Open(config.AppConfig.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("✅ Database connected successfully")

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("✅ Database migrated successfully")
}

// Migrate is separate from Connect so tests can run it against their own DB.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Group{},
		&models.GroupMember{},
		&models.Availability{},
		&models.AvailabilityShare{},
		&models.BookableLink{},
		&models.Booking{},
		&models.HangoutRequest{},
		&models.Message{},
	)
	if err != nil {
		return err
	}

	// At most one pending request per (sender, receiver, date, slot). The
	// services check before inserting, but only this index holds under
	// concurrent commits.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_pending_request
		ON hangout_requests (sender_id, receiver_id, request_date, start_time, end_time)
		WHERE status = 'pending'`).Error
}
