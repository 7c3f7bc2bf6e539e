package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/config"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/database"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/utils"
)

// Bootstraps staff accounts from the command line. The first admin has to
// come from somewhere before the admin API is reachable.
func main() {
	var (
		email    = flag.String("email", "", "staff email")
		password = flag.String("password", "", "staff password")
		fullName = flag.String("name", "", "staff full name")
		role     = flag.String("role", string(models.StaffRoleFrontdesk), "role: admin, frontdesk, or security")
	)
	flag.Parse()

	req := &models.StaffCreateRequest{
		Email:    *email,
		Password: *password,
		FullName: *fullName,
		Role:     models.StaffRole(*role),
	}
	if err := req.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid staff details: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(database.Config{Path: cfg.Database.Path})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	staff, err := repositories.NewStaffRepository(db.DB).Create(&models.Staff{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         req.Role,
		IsActive:     true,
	})
	if err != nil {
		log.Fatalf("Failed to create staff: %v", err)
	}

	fmt.Printf("Created staff #%d: %s (%s, %s)\n", staff.ID, staff.FullName, staff.Email, staff.Role)
}
