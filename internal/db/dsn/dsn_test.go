package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoCourseNav/GoCourseNav/internal/config"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name string
		db   config.DB
		want string
	}{
		{
			name: "mysql",
			db: config.DB{
				GormEngine: EngineMySQL,
				User:       "portal",
				Password:   "secret",
				Host:       "db.local",
				Port:       3306,
				Name:       "portal",
				Extras:     "charset=utf8mb4&parseTime=True",
			},
			want: "portal:secret@tcp(db.local:3306)/portal?charset=utf8mb4&parseTime=True",
		},
		{
			name: "postgres",
			db: config.DB{
				GormEngine: EnginePostgres,
				User:       "portal",
				Password:   "secret",
				Host:       "db.local",
				Port:       5432,
				Name:       "portal",
				Extras:     "sslmode=disable",
			},
			want: "host=db.local port=5432 user=portal password=secret dbname=portal sslmode=disable",
		},
		{
			name: "postgres without extras",
			db: config.DB{
				GormEngine: EnginePostgres,
				User:       "portal",
				Password:   "secret",
				Host:       "db.local",
				Port:       5432,
				Name:       "portal",
			},
			want: "host=db.local port=5432 user=portal password=secret dbname=portal",
		},
		{
			name: "sqlite uses the name as file path",
			db: config.DB{
				GormEngine: EngineSQLite,
				Name:       "./data/portal.db",
			},
			want: "./data/portal.db",
		},
		{
			name: "unknown engine falls back to sqlite",
			db: config.DB{
				GormEngine: "",
				Name:       "portal.db",
			},
			want: "portal.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{DB: tt.db}
			assert.Equal(t, tt.want, Create(cfg))
		})
	}
}
