package db

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/invoicing-api/internal/models"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedProducts() []models.Product {
	return []models.Product{
		{Name: "Web Development Service", Price: price("1500.00")},
		{Name: "Logo Design", Price: price("500.00")},
		{Name: "Mobile App Development", Price: price("3000.00")},
		{Name: "SEO Optimization", Price: price("750.00")},
		{Name: "Content Writing", Price: price("200.00")},
		{Name: "UI/UX Design", Price: price("1200.00")},
		{Name: "Server Maintenance", Price: price("400.00")},
		{Name: "Database Administration", Price: price("800.00")},
	}
}

func seedClients() []models.Client {
	return []models.Client{
		{Name: "Acme Corporation", Address: "123 Business Ave, Suite 100, New York, NY 10001", CompanyRegistrationNo: "REG-2024-ACME-001"},
		{Name: "TechStart Inc.", Address: "456 Innovation Blvd, San Francisco, CA 94102", CompanyRegistrationNo: "REG-2024-TECH-002"},
		{Name: "Global Solutions Ltd.", Address: "789 Enterprise Way, Chicago, IL 60601", CompanyRegistrationNo: "REG-2024-GLOB-003"},
		{Name: "Creative Media Group", Address: "321 Design Street, Los Angeles, CA 90001", CompanyRegistrationNo: "REG-2024-CREA-004"},
		{Name: "DataFlow Systems", Address: "555 Analytics Road, Seattle, WA 98101", CompanyRegistrationNo: "REG-2024-DATA-005"},
	}
}

// Seed loads the fixed reference data. Idempotent: each table is only
// populated when empty, so restarts never duplicate rows.
func Seed(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Client{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		clients := seedClients()
		if err := conn.Create(&clients).Error; err != nil {
			return err
		}
	}
	if err := conn.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		products := seedProducts()
		if err := conn.Create(&products).Error; err != nil {
			return err
		}
	}
	return nil
}
