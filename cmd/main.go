package main

// @title Customer Service API
// @version 1.0
// @description CRUD API for customer records.

// @contact.name API Support
// @contact.email support@customer-service.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api
func main() {
	Execute()
}
