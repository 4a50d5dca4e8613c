package config

// DB holds the portal database connection settings. GormEngine picks the
// driver: sqlite (default), mysql or postgres.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	GormEngine string
}
