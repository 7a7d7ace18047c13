package models

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	console "crm/internal/utils/logger"
)

var log = console.New("SEEDER")

// AssignDefaultPermissions gives a newly created non-admin user read-only
// access to the four standard object types. Admins need no rows; their role
// bypasses every check.
func AssignDefaultPermissions(db *gorm.DB, user *User) error {
	if user.Role == UserRoleAdmin {
		return nil
	}

	perms := make([]UserPermission, 0, len(StandardObjectTypes()))
	for _, objectType := range StandardObjectTypes() {
		perms = append(perms, UserPermission{
			UserID:        user.ID,
			ObjectType:    objectType,
			CapabilitySet: CapabilitySet{CanView: true},
		})
	}

	if err := db.Create(&perms).Error; err != nil {
		return fmt.Errorf("failed to assign default permissions: %w", err)
	}
	return nil
}

// SeedSampleData populates an empty database with the demo dataset: an
// admin account, sample users, CRM records, the Product custom object and
// three permission sets. It is a no-op when an admin user already exists.
func SeedSampleData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&User{}).Where("role = ?", UserRoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("admin user present, skipping sample data")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedUsers(tx); err != nil {
			return err
		}
		if err := seedRecords(tx); err != nil {
			return err
		}
		if err := seedPermissionSets(tx); err != nil {
			return err
		}
		return nil
	})
}

func hash(password string) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(hashed)
}

func seedUsers(tx *gorm.DB) error {
	users := []User{
		{Username: "admin", Email: "admin@crm.com", PasswordHash: hash("admin123"), Role: UserRoleAdmin, IsActive: true},
		{Username: "manager1", Email: "manager1@crm.com", PasswordHash: hash("manager123"), Role: UserRoleManager, IsActive: true},
		{Username: "user1", Email: "user1@crm.com", PasswordHash: hash("user123"), Role: UserRoleUser, IsActive: true},
		{Username: "user2", Email: "user2@crm.com", PasswordHash: hash("user123"), Role: UserRoleUser, IsActive: true},
	}
	if err := tx.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	for i := range users {
		if err := AssignDefaultPermissions(tx, &users[i]); err != nil {
			return err
		}
	}
	log.Success("created %d users", len(users))
	return nil
}

func seedRecords(tx *gorm.DB) error {
	contacts := []Contact{
		{FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", Phone: "+1-555-0101", Company: "TechCorp", Title: "CEO"},
		{FirstName: "Jane", LastName: "Smith", Email: "jane.smith@example.com", Phone: "+1-555-0102", Company: "InnovateInc", Title: "CTO"},
		{FirstName: "Mike", LastName: "Johnson", Email: "mike.johnson@example.com", Phone: "+1-555-0103", Company: "GlobalTech", Title: "VP Sales"},
		{FirstName: "Sarah", LastName: "Williams", Email: "sarah.williams@example.com", Phone: "+1-555-0104", Company: "StartupXYZ", Title: "Marketing Director"},
		{FirstName: "David", LastName: "Brown", Email: "david.brown@example.com", Phone: "+1-555-0105", Company: "EnterpriseCo", Title: "Product Manager"},
	}
	if err := tx.Create(&contacts).Error; err != nil {
		return fmt.Errorf("failed to seed contacts: %w", err)
	}

	revenue := func(v float64) *float64 { return &v }
	headcount := func(v int) *int { return &v }

	accounts := []Account{
		{Name: "TechCorp", Industry: "Technology", Website: "https://techcorp.com", Phone: "+1-555-0201", AnnualRevenue: revenue(5000000), Employees: headcount(150)},
		{Name: "InnovateInc", Industry: "Technology", Website: "https://innovateinc.com", Phone: "+1-555-0202", AnnualRevenue: revenue(2500000), Employees: headcount(75)},
		{Name: "GlobalTech", Industry: "Technology", Website: "https://globaltech.com", Phone: "+1-555-0203", AnnualRevenue: revenue(10000000), Employees: headcount(300)},
		{Name: "StartupXYZ", Industry: "Technology", Website: "https://startupxyz.com", Phone: "+1-555-0204", AnnualRevenue: revenue(500000), Employees: headcount(25)},
		{Name: "EnterpriseCo", Industry: "Manufacturing", Website: "https://enterpriseco.com", Phone: "+1-555-0205", AnnualRevenue: revenue(20000000), Employees: headcount(500)},
	}
	if err := tx.Create(&accounts).Error; err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}

	amount := revenue
	chance := headcount

	opportunities := []Opportunity{
		{Name: "Enterprise Software License", AccountID: &accounts[0].ID, ContactID: &contacts[0].ID, Amount: amount(50000), Stage: "Proposal", Probability: chance(75), Description: "Multi-year software license for enterprise deployment"},
		{Name: "Cloud Migration Project", AccountID: &accounts[1].ID, ContactID: &contacts[1].ID, Amount: amount(150000), Stage: "Negotiation", Probability: chance(60), Description: "Complete cloud infrastructure migration"},
		{Name: "Custom Development", AccountID: &accounts[2].ID, ContactID: &contacts[2].ID, Amount: amount(75000), Stage: "Qualification", Probability: chance(40), Description: "Custom software development for sales automation"},
		{Name: "Consulting Services", AccountID: &accounts[3].ID, ContactID: &contacts[3].ID, Amount: amount(25000), Stage: "Prospecting", Probability: chance(20), Description: "Technical consulting and implementation services"},
		{Name: "System Integration", AccountID: &accounts[4].ID, ContactID: &contacts[4].ID, Amount: amount(100000), Stage: "Closed Won", Probability: chance(100), Description: "Integration of existing systems with new platform"},
	}
	if err := tx.Create(&opportunities).Error; err != nil {
		return fmt.Errorf("failed to seed opportunities: %w", err)
	}

	leads := []Lead{
		{FirstName: "Alex", LastName: "Thompson", Email: "alex.thompson@newcompany.com", Phone: "+1-555-0301", Company: "NewCompany", Status: "New", Source: "Website"},
		{FirstName: "Lisa", LastName: "Garcia", Email: "lisa.garcia@startup.com", Phone: "+1-555-0302", Company: "Startup", Status: "Contacted", Source: "Referral"},
		{FirstName: "Tom", LastName: "Wilson", Email: "tom.wilson@enterprise.com", Phone: "+1-555-0303", Company: "Enterprise", Status: "Qualified", Source: "Social Media"},
		{FirstName: "Emma", LastName: "Davis", Email: "emma.davis@tech.com", Phone: "+1-555-0304", Company: "TechCompany", Status: "Unqualified", Source: "Cold Call"},
		{FirstName: "Chris", LastName: "Miller", Email: "chris.miller@corp.com", Phone: "+1-555-0305", Company: "CorpInc", Status: "Converted", Source: "Email Campaign"},
	}
	if err := tx.Create(&leads).Error; err != nil {
		return fmt.Errorf("failed to seed leads: %w", err)
	}

	product := CustomObject{
		Name:        "Product",
		Label:       "Product",
		Description: "Product catalog for tracking inventory and sales",
		Fields: datatypes.JSON(`[
			{"name": "name", "type": "text", "label": "Product Name"},
			{"name": "sku", "type": "text", "label": "SKU"},
			{"name": "price", "type": "number", "label": "Price"},
			{"name": "category", "type": "text", "label": "Category"},
			{"name": "description", "type": "textarea", "label": "Description"}
		]`),
	}
	if err := tx.Create(&product).Error; err != nil {
		return fmt.Errorf("failed to seed custom object: %w", err)
	}

	records := []CustomRecord{
		{ObjectID: product.ID, Data: datatypes.JSON(`{"name": "Premium Software License", "sku": "PSL-001", "price": "999.99", "category": "Software", "description": "Annual premium software license with full support"}`)},
		{ObjectID: product.ID, Data: datatypes.JSON(`{"name": "Cloud Storage Package", "sku": "CSP-002", "price": "299.99", "category": "Cloud Services", "description": "1TB cloud storage with backup and sync"}`)},
		{ObjectID: product.ID, Data: datatypes.JSON(`{"name": "Consulting Hours", "sku": "CH-003", "price": "150.00", "category": "Services", "description": "Professional consulting services per hour"}`)},
	}
	if err := tx.Create(&records).Error; err != nil {
		return fmt.Errorf("failed to seed custom records: %w", err)
	}

	log.Success("created sample CRM records and the Product custom object")
	return nil
}

func seedPermissionSets(tx *gorm.DB) error {
	var product CustomObject
	if err := tx.First(&product, "name = ?", "Product").Error; err != nil {
		return err
	}

	readWrite := CapabilitySet{CanView: true, CanCreate: true, CanEdit: true}
	readCreate := CapabilitySet{CanView: true, CanCreate: true}
	readOnly := CapabilitySet{CanView: true}

	sets := []PermissionSet{
		{
			Name:        "Sales Team",
			Description: "Full access to contacts, accounts, opportunities, and leads for sales team members",
			IsActive:    true,
			Permissions: []PermissionSetPermission{
				{ObjectType: ObjectTypeContact, CapabilitySet: readWrite},
				{ObjectType: ObjectTypeAccount, CapabilitySet: readWrite},
				{ObjectType: ObjectTypeOpportunity, CapabilitySet: readWrite},
				{ObjectType: ObjectTypeLead, CapabilitySet: readWrite},
				{ObjectType: ObjectTypeCustomObject, ObjectID: &product.ID, CapabilitySet: readWrite},
			},
		},
		{
			Name:        "Marketing Team",
			Description: "Access to leads and contacts for marketing team members",
			IsActive:    true,
			Permissions: []PermissionSetPermission{
				{ObjectType: ObjectTypeContact, CapabilitySet: readCreate},
				{ObjectType: ObjectTypeLead, CapabilitySet: readWrite},
			},
		},
		{
			Name:        "Support Team",
			Description: "Read-only access to contacts and accounts for support team",
			IsActive:    true,
			Permissions: []PermissionSetPermission{
				{ObjectType: ObjectTypeContact, CapabilitySet: readOnly},
				{ObjectType: ObjectTypeAccount, CapabilitySet: readOnly},
			},
		},
	}
	if err := tx.Create(&sets).Error; err != nil {
		return fmt.Errorf("failed to seed permission sets: %w", err)
	}

	log.Success("created %d permission sets", len(sets))
	return nil
}
