package store

// User is an owner identity. Sign-up and sign-in flows live outside this
// service; users are provisioned through the CLI and authenticate with
// access tokens.
type User struct {
	ID        int32
	Username  string
	CreatedTs int64
}

type FindUser struct {
	ID       *int32
	Username *string
}

// AccessToken maps a hashed bearer token to a user.
type AccessToken struct {
	UserID    int32
	TokenHash string
	CreatedTs int64
}
