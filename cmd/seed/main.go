// seed inserts development sample data for local testing: one user per role
// mix and a few catalog products. Idempotent: skips inserts when the demo
// shopper (shopper@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	catalogdomain "storefront-gateway/internal/catalog/domain"
	catalogrepo "storefront-gateway/internal/catalog/repository"
	"storefront-gateway/internal/config"
	"storefront-gateway/internal/db"
	identitydomain "storefront-gateway/internal/identity/domain"
	identityrepo "storefront-gateway/internal/identity/repository"
	rolesdomain "storefront-gateway/internal/roles/domain"
	rolesrepo "storefront-gateway/internal/roles/repository"
	"storefront-gateway/internal/security"
)

const demoPassword = "Dev!Password1234"

type demoUser struct {
	id    string
	email string
	name  string
	roles []rolesdomain.Role
}

var demoUsers = []demoUser{
	{"demo-shopper-001", "shopper@example.com", "Demo Shopper", []rolesdomain.Role{rolesdomain.RoleConsumer}},
	{"demo-seller-001", "seller@example.com", "Demo Seller", []rolesdomain.Role{rolesdomain.RoleConsumer, rolesdomain.RoleSeller}},
	{"demo-admin-001", "admin@example.com", "Demo Admin", []rolesdomain.Role{rolesdomain.RoleAdmin, rolesdomain.RoleSeller}},
}

var demoProducts = []catalogdomain.Product{
	{ID: "demo-product-001", SellerID: "demo-seller-001", Name: "Walnut standing desk", Description: "Solid walnut, hand finished.", PriceCents: 84900, Published: true},
	{ID: "demo-product-002", SellerID: "demo-seller-001", Name: "Brass desk lamp", Description: "Warm light, adjustable arm.", PriceCents: 12900, Published: true},
	{ID: "demo-product-003", SellerID: "demo-seller-001", Name: "Prototype chair", Description: "Not ready for the storefront yet.", PriceCents: 45000, Published: false},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := identityrepo.NewPostgresUserRepository(conn)
	roles := rolesrepo.NewPostgresRepository(conn)
	products := catalogrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, demoUsers[0].email)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		fmt.Println("seed: demo data already present, nothing to do")
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(demoPassword))
	if err != nil {
		log.Fatalf("hash: %v", err)
	}

	now := time.Now().UTC()
	for _, du := range demoUsers {
		u := &identitydomain.User{
			ID:           du.id,
			Email:        du.email,
			Name:         du.name,
			PasswordHash: hash,
			Status:       identitydomain.UserStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("seed user %s: %v", du.email, err)
		}
		for _, role := range du.roles {
			if err := roles.Grant(ctx, du.id, role); err != nil {
				log.Fatalf("seed role %s for %s: %v", role, du.email, err)
			}
		}
	}

	for i := range demoProducts {
		p := demoProducts[i]
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := products.Create(ctx, &p); err != nil {
			log.Fatalf("seed product %s: %v", p.ID, err)
		}
	}

	fmt.Printf("seed: created %d users and %d products (password %q)\n",
		len(demoUsers), len(demoProducts), demoPassword)
}
