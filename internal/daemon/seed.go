package daemon

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/block/sectionlinks"
	"github.com/GoCourseNav/GoCourseNav/internal/config"
	"github.com/GoCourseNav/GoCourseNav/internal/db/controller/blockinstance"
	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
	"github.com/GoCourseNav/GoCourseNav/internal/uniuri"
)

// seed fills an empty database with a usable minimum: the admin account,
// and in dev mode a demo course whose sections exercise every title path
// of the section links block.
func seed(cfg *config.Config, db *gorm.DB) {
	var count int64

	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	admin := models.User{
		Username:  "admin",
		Password:  models.HashPassword("changeme"),
		Email:     "admin@localhost",
		Active:    true,
		SiteAdmin: true,
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin user")
		return
	}

	log.Info().Str("username", admin.Username).Msg("seeded admin user, change the password after first login")

	if cfg.DevMode {
		seedDemoCourse(db)
	}
}

func seedDemoCourse(db *gorm.DB) {
	teacher := models.User{
		Username:  "teacher",
		Password:  models.HashPassword("teacher"),
		Email:     "teacher@localhost",
		FirstName: "Tara",
		LastName:  "Teacher",
		Active:    true,
	}

	student := models.User{
		Username:  "student",
		Password:  models.HashPassword("student"),
		Email:     "student@localhost",
		FirstName: "Sam",
		LastName:  "Student",
		Active:    true,
	}

	demo := models.Course{
		Shortname:     "DEMO101",
		Fullname:      "Go Programming Demo Course",
		Summary:       "<p>A seeded course showing off the section links block.</p>",
		SummaryFormat: "html",
		Format:        "topics",
		NumSections:   4,
		MarkedSection: 2,
		StartDate:     time.Now().AddDate(0, 0, -14),
		Visible:       true,
		EnrolmentKey:  uniuri.New(),
	}

	for _, step := range []error{
		db.Create(&teacher).Error,
		db.Create(&student).Error,
		db.Create(&demo).Error,
	} {
		if step != nil {
			log.Error().Err(step).Msg("failed to seed demo data")
			return
		}
	}

	// one section per title resolution path: explicit name, autotitle from
	// HTML, autotitle from Markdown on a hidden section, format default
	sections := []models.Section{
		{CourseID: demo.ID, Position: 0, Summary: "<p>Welcome! Course material lives in the numbered topics.</p>", SummaryFormat: "html", Visible: true},
		{CourseID: demo.ID, Position: 1, Name: "Getting started", Summary: "<p>Install the toolchain.</p>", SummaryFormat: "html", Visible: true},
		{CourseID: demo.ID, Position: 2, Summary: "<h3>Control flow</h3><p>Loops and conditionals.</p>", SummaryFormat: "html", Visible: true},
		{CourseID: demo.ID, Position: 3, Summary: "## Interfaces\n\nStill being written.", SummaryFormat: "markdown", Visible: false},
		{CourseID: demo.ID, Position: 4, SummaryFormat: "html", Visible: true},
	}

	for i := range sections {
		if err := db.Create(&sections[i]).Error; err != nil {
			log.Error().Err(err).Int("position", sections[i].Position).Msg("failed to seed demo section")
			return
		}
	}

	enrolments := []models.Enrolment{
		{UserID: teacher.ID, CourseID: demo.ID, Role: models.CourseRoleTeacher},
		{UserID: student.ID, CourseID: demo.ID, Role: models.CourseRoleStudent},
	}

	for i := range enrolments {
		if err := db.Create(&enrolments[i]).Error; err != nil {
			log.Error().Err(err).Msg("failed to seed demo enrolment")
			return
		}
	}

	if _, err := blockinstance.Create(db, demo.ID, sectionlinks.BlockType); err != nil {
		log.Error().Err(err).Msg("failed to seed demo block instance")
		return
	}

	log.Info().Str("course", demo.Shortname).Msg("seeded demo course with teacher/teacher and student/student accounts")
}
