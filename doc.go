// Package main provides the entry point for the GoCourseNav course portal.
// It initializes and runs a web server using the Fiber framework that serves
// course pages with a configurable section links navigation block. The
// application uses gorm for data persistence and supports local, LDAP and
// OIDC sign-in.
package main
