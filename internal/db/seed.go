package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedTags = []string{"music", "travel", "food", "books", "fitness", "film", "art", "hiking"}

// SeedTestData resets the database and populates it with demo profiles and swipes.
//
// Behavior:
//  1. Clears all engine tables.
//  2. Creates 20 profiles (10 male, 10 female) scattered within ~20km of a
//     city center, with hashed passwords and randomized attributes.
//  3. Generates a web of right swipes; every 3rd pair is made mutual, which
//     also inserts the corresponding Match row.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"matches", "last_swipes", "maybe_entries", "swipes", "profiles"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE profiles AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'profiles'")
	}

	log.Println("Cleared existing data")

	// City center: lower Manhattan-ish.
	const centerLat, centerLng = 40.0, -74.0

	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender := "male"
		if i > 10 {
			gender = "female"
		}

		// ~0.18 degrees is roughly 20km of latitude.
		lat := centerLat + (r.Float64()-0.5)*0.36
		lng := centerLng + (r.Float64()-0.5)*0.36

		tags := seedTags[r.Intn(len(seedTags))] + "," + seedTags[r.Intn(len(seedTags))]

		profile := Profile{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Gender:       gender,
			Age:          21 + r.Intn(20),
			Latitude:     lat,
			Longitude:    lng,
			Tags:         tags,
			Preference:   "relationship",
			Education:    "bachelor",
			Smoker:       r.Intn(10) == 0,
		}

		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
	}
	log.Println("Seeded 20 profiles.")

	var profiles []Profile
	if err := db.Order("id").Find(&profiles).Error; err != nil {
		return err
	}

	counter := 0
	for _, actor := range profiles {
		for j := 0; j < 8; j++ {
			target := profiles[r.Intn(len(profiles))]
			if actor.ID == target.ID || actor.Gender == target.Gender {
				continue
			}

			swipe := Swipe{ActorID: actor.ID, TargetID: target.ID}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&swipe).Error; err != nil {
				return fmt.Errorf("failed to seed swipe: %w", err)
			}

			// Guarantee a mutual pair every 3rd swipe and record its Match.
			if counter%3 == 0 {
				recip := Swipe{ActorID: target.ID, TargetID: actor.ID}
				db.Clauses(clause.OnConflict{DoNothing: true}).Create(&recip)

				a, b := actor.ID, target.ID
				if a > b {
					a, b = b, a
				}
				match := Match{ID: uuid.NewString(), UserAID: a, UserBID: b}
				db.Clauses(clause.OnConflict{DoNothing: true}).Create(&match)
			}

			counter++
		}
	}
	log.Printf("Seeded %d swipes.", counter)

	return nil
}
