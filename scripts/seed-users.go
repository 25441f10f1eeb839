// Seeds user accounts. There is no self-registration: accounts are created
// here (or by an operator) and handed out.
//
//	go run scripts/seed-users.go -users alice:password123,bob:password123 -admin admin:changeme
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/dom/daily-chat/internal/config"
	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/repository/postgres"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	users := flag.String("users", "", "comma-separated user:password pairs")
	admins := flag.String("admin", "", "comma-separated admin user:password pairs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	repos := postgres.NewRepositories(db)

	seed := func(entries string, isAdmin bool) {
		if entries == "" {
			return
		}
		for _, pair := range strings.Split(entries, ",") {
			parts := strings.SplitN(pair, ":", 2)
			if len(parts) != 2 {
				log.Fatalf("bad user entry: %q", pair)
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(parts[1]), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("failed to hash password: %v", err)
			}

			user := &domain.User{
				ID:           uuid.New(),
				Username:     parts[0],
				PasswordHash: string(hash),
				IsAdmin:      isAdmin,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := repos.User.Create(context.Background(), user); err != nil {
				log.Printf("skipping %s: %v", parts[0], err)
				continue
			}
			log.Printf("created %s (admin=%v)", parts[0], isAdmin)
		}
	}

	seed(*users, false)
	seed(*admins, true)
}
