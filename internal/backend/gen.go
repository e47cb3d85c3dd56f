package backend

//go:generate mockery --case underscore --output backendmock --outpkg backendmock --name Backend
