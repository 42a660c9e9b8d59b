package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/izposoja/internal/config"
	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

var demoUsers = []store.UserFields{
	{Username: "sato", DisplayName: "Sato Ken", EmployeeID: "U0001", Email: "sato@example.com", Department: "Sales", Role: model.RoleUser},
	{Username: "suzuki", DisplayName: "Suzuki Ichiro", EmployeeID: "U0002", Email: "suzuki@example.com", Department: "Engineering", Role: model.RoleUser},
}

var demoItems = []store.ItemFields{
	{Name: "MacBook Pro M3", ManagementCode: "PC-001", Category: "PC", IsFixedAsset: true, Accessories: []string{"charger"}},
	{Name: "Windows Test PC", ManagementCode: "PC-002", Category: "PC", IsFixedAsset: true},
	{Name: "USB-C Monitor", ManagementCode: "MON-001", Category: "Monitor", Accessories: []string{"USB-C cable"}},
	{Name: "Design Book", ManagementCode: "BK-001", Category: "Book"},
}

// runSeed adds demo users and items and lends two of them, one overdue.
// Users and items that already exist are left alone.
func runSeed(cfg config.Config) error {
	database, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	password, err := generatePassword(12)
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	users := make(map[string]*model.User)
	var newUsers bool
	for _, f := range demoUsers {
		user, err := store.GetUserByUsername(ctx, database, f.Username)
		if err != nil {
			return err
		}
		if user == nil {
			if user, err = store.CreateUser(ctx, database, f, string(hash)); err != nil {
				return err
			}
			fmt.Printf("User %s created.\n", f.Username)
			newUsers = true
		}
		users[f.Username] = user
	}

	items := make(map[string]*model.Item)
	var created []string
	for _, f := range demoItems {
		item, err := store.GetItemByCode(ctx, database, f.ManagementCode)
		if err != nil {
			return err
		}
		if item == nil {
			if item, err = store.CreateItem(ctx, database, f); err != nil {
				return err
			}
			created = append(created, f.ManagementCode)
		}
		items[f.ManagementCode] = item
	}
	fmt.Printf("Items created: %v\n", created)

	svc := lending.NewService(&store.Lending{DB: database}, &store.Users{DB: database})
	today := model.DateOf(time.Now())
	loans := []struct {
		code, username string
		due            model.Date
	}{
		{"PC-001", "sato", today.AddDays(7)},
		{"PC-002", "suzuki", today.AddDays(-1)},
	}
	for _, l := range loans {
		item := items[l.code]
		if item.Status != model.ItemStatusAvailable {
			continue
		}
		_, err := svc.Borrow(ctx, lending.BorrowRequest{
			ItemID: item.ID, UserID: users[l.username].ID, DueDate: l.due, Reason: "demo",
		})
		if err != nil {
			return err
		}
	}

	if newUsers {
		fmt.Printf("New demo users share the password: %s\n", password)
	}
	return nil
}
