package repositories

import "github.com/akhaled/studenthub/internal/db"

// Repositories is the container for all repository instances
type Repositories struct {
	UserRepository    *UserRepository
	StudentRepository *StudentRepository
}

// NewRepositories creates all repositories sharing one database handle
func NewRepositories(database *db.Database) *Repositories {
	return &Repositories{
		UserRepository:    NewUserRepository(database),
		StudentRepository: NewStudentRepository(database),
	}
}
