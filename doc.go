// Package main provides the entry point for the GoBackOffice application.
// It starts a web server using the Fiber framework that lets administrators
// manage users, roles, permissions and application settings through a web
// interface. The application uses gorm for data persistence and enforces a
// time-bounded user suspension lifecycle on every authenticated request.
package main
