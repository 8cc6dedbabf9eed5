package model

import "time"

// Identity is the marketplace account a browser session is bound to,
// exactly as persisted: the same single JSON record shape the upstream
// login endpoint returns, tagged with the role that was used to log in.
type Identity struct {
	Role     Role   `json:"role"`
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Token    string `json:"token"`
	Active   bool   `json:"active"`
	Approved bool   `json:"approved"`
}

// PortalSession is one browser's server-held session row. The identity
// record is stored serialized so the persisted shape stays a single
// JSON document.
type PortalSession struct {
	ID        string    `db:"id"`
	TokenHash string    `db:"token_hash"`
	Identity  []byte    `db:"identity"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

type CreatePortalSessionParams struct {
	TokenHash string
	Identity  []byte
	ExpiresAt time.Time
}
