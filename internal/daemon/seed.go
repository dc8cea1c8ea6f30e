package daemon

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/models"
)

// rolePermissions maps the default roles to the permissions they get on
// first start. The admin role gets every permission.
var rolePermissions = map[string][]string{
	"admin": auth.AllPermissions,
	"compliance-officer": {
		auth.PermDashboardView,
		auth.PermCatalogueView,
		auth.PermCatalogueManage,
		auth.PermDocumentView,
		auth.PermDocumentManage,
		auth.PermMappingView,
		auth.PermMappingManage,
		auth.PermUnitManage,
		auth.PermRegisterView,
		auth.PermRegisterManage,
		auth.PermAnalysisRun,
		auth.PermAIRun,
	},
	"viewer": {
		auth.PermDashboardView,
		auth.PermCatalogueView,
		auth.PermDocumentView,
		auth.PermMappingView,
		auth.PermRegisterView,
	},
}

var roleDescriptions = map[string]string{
	"admin":              "Full access including user and settings administration",
	"compliance-officer": "Manages the catalogue, documents, mappings and registers",
	"viewer":             "Read-only access to dashboards, catalogue and registers",
}

// seed creates the default permissions, roles and admin account when the
// database is empty. Existing rows are left untouched.
func seed(db *gorm.DB) error {
	permIDs := make(map[string]uint, len(auth.AllPermissions))

	for _, name := range auth.AllPermissions {
		resource, action, _ := strings.Cut(name, ".")

		perm := models.Permission{Name: name, Resource: resource, Action: action}
		if err := db.Where(models.Permission{Name: name}).FirstOrCreate(&perm).Error; err != nil {
			return err
		}

		permIDs[name] = perm.ID
	}

	for name, perms := range rolePermissions {
		role := models.Role{
			Name:        name,
			Description: roleDescriptions[name],
			IsSystem:    true,
		}
		if err := db.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return err
		}

		for _, permName := range perms {
			link := models.RolePermission{RoleID: role.ID, PermissionID: permIDs[permName]}
			if err := db.Where(link).FirstOrCreate(&link).Error; err != nil {
				return err
			}
		}
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	if userCount == 0 {
		var adminRole models.Role
		if err := db.Where(models.Role{Name: "admin"}).First(&adminRole).Error; err != nil {
			return err
		}

		admin := models.User{
			Username: "admin",
			Password: models.HashPassword("changeme"),
			Active:   true,
			RoleID:   adminRole.ID,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}

		log.Warn().Msg("created default admin user with password 'changeme', change it")
	}

	return nil
}

// SeedCatalogue opens the configured database, runs migrations and loads a
// starter catalogue so a fresh install has something to look at. It is a
// no-op when regulatory sources already exist.
func SeedCatalogue(cfg *config.Config) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}

	if err = migrate(db); err != nil {
		return err
	}

	if err = seed(db); err != nil {
		return err
	}

	var sourceCount int64
	if err = db.Model(&models.RegulatorySource{}).Count(&sourceCount).Error; err != nil {
		return err
	}

	if sourceCount > 0 {
		log.Info().Msg("catalogue already seeded, nothing to do")
		return nil
	}

	source := models.RegulatorySource{
		Name:         "ISO/IEC 27001:2022",
		ShortName:    "ISO 27001",
		Jurisdiction: "International",
		Category:     "Information Security",
		URL:          "https://www.iso.org/standard/27001",
	}
	if err = db.Create(&source).Error; err != nil {
		return err
	}

	requirements := []models.Requirement{
		{
			SourceID:    source.ID,
			Code:        "A.5.15",
			Title:       "Access control",
			Description: "Rules to control physical and logical access to information shall be established and implemented",
			Category:    "Organizational",
		},
		{
			SourceID:    source.ID,
			Code:        "A.8.12",
			Title:       "Data leakage prevention",
			Description: "Data leakage prevention measures shall be applied to systems that process sensitive information",
			Category:    "Technological",
		},
		{
			SourceID:    source.ID,
			Code:        "A.8.15",
			Title:       "Logging",
			Description: "Logs that record activities, exceptions, faults and other relevant events shall be produced, stored, protected and analysed",
			Category:    "Technological",
		},
	}
	if err = db.Create(&requirements).Error; err != nil {
		return err
	}

	units := []models.BusinessUnit{
		{Name: "Headquarters", Jurisdiction: "EU", Status: models.UnitActive},
		{Name: "US Subsidiary", Jurisdiction: "US", Status: models.UnitActive},
	}
	if err = db.Create(&units).Error; err != nil {
		return err
	}

	// Data leakage prevention only applies where sensitive data is processed.
	rule := models.ApplicabilityRule{
		RequirementID:  requirements[1].ID,
		BusinessUnitID: units[0].ID,
		Applicable:     true,
	}
	if err = db.Create(&rule).Error; err != nil {
		return err
	}

	review := time.Now().AddDate(1, 0, 0)
	document := models.Document{
		Title:    "Access Control Policy",
		DocType:  "Policy",
		Taxonomy: "Security/Access",
		Markdown: "# Access Control Policy\n\nRules to control logical access to information are established, implemented and reviewed annually.",
		NextReviewDate: &review,
	}
	if err = db.Create(&document).Error; err != nil {
		return err
	}

	mapping := models.RequirementMapping{
		RequirementID:  requirements[0].ID,
		DocumentID:     &document.ID,
		CoverageStatus: models.StatusCovered,
		Rationale:      "Policy directly implements the control",
	}
	if err = db.Create(&mapping).Error; err != nil {
		return err
	}

	log.Info().Msg("starter catalogue seeded")

	return nil
}
