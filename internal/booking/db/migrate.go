package db

import (
	"context"
	"log"

	"ms-bookings/internal/models"

	"github.com/uptrace/bun"
)

// Migrate creates the bookings table if it does not exist. Schema changes
// beyond table creation live in the SQL files under migrations/.
func Migrate(db *bun.DB) {
	ctx := context.Background()

	_, err := db.NewCreateTable().Model((*models.Booking)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		log.Fatalf("create bookings table failed: %v", err)
	}

	log.Println("bookings table ready")
}
