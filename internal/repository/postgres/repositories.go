package postgres

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users    *UserRepository
	Contacts *ContactRepository
}

// NewRepositories wires all repositories backed by the provided executor.
func NewRepositories(exec pgExecutor) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(exec),
		Contacts: NewContactRepository(exec),
	}
}
