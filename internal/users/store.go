// Copyright (c) 2026 CLinCoDa. All rights reserved.

package users

// Repository is the persistence contract for user accounts. The platform
// store satisfies it; tests may substitute their own fake.
type Repository interface {
	CreateUser(u User) (User, error)
	UserByID(id int) (User, bool)
	UserByUsername(username string) (User, bool)
	Users() []User
	UpdateUser(id int, patch Patch) (User, bool, error)
	DeleteUser(id int, soft bool) (bool, error)
}
